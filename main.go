package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"connection-travels/internal/auth"
	intconfig "connection-travels/internal/config"
	intdb "connection-travels/internal/db"
	router "connection-travels/internal/http"
	"connection-travels/internal/http/handlers"
	"connection-travels/internal/realtime"
	"connection-travels/internal/repositories"
	"connection-travels/internal/services"
	"connection-travels/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	env := intconfig.LoadEnv()
	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}
	if err := utils.InitLogger(env.IsDevelopment()); err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer utils.SyncLogger()
	logger := utils.Logger()

	db, err := intconfig.ConnectDB(env)
	if err != nil {
		logger.Fatal("connect database", zap.Error(err))
	}
	defer intconfig.CloseDB()

	schemaCtx, cancelSchema := context.WithTimeout(context.Background(), 30*time.Second)
	err = intdb.EnsureSchema(schemaCtx, db)
	cancelSchema()
	if err != nil {
		logger.Fatal("ensure schema", zap.Error(err))
	}

	hub := realtime.NewHub()
	defer hub.Close()
	publisher := realtime.MultiPublisher{{Name: "websocket", Publisher: hub}}
	if env.AMQPURL != "" {
		bridge, err := realtime.DialAMQP(env.AMQPURL, env.AMQPExchange, 5)
		if err != nil {
			logger.Warn("amqp bridge disabled", zap.Error(err))
		} else {
			defer bridge.Close()
			publisher = append(publisher, realtime.Transport{Name: "amqp", Publisher: bridge})
		}
	}

	var (
		bookingRepo = repositories.BookingRepository{DB: db}
		busRepo     = repositories.BusRepository{DB: db}
		userRepo    = repositories.UserRepository{DB: db}
		auditRepo   = repositories.AuditRepository{DB: db}
		tokens      = auth.Issuer{
			Secret:        []byte(env.JWTSecret),
			RefreshSecret: []byte(env.JWTRefreshSecret),
			AccessTTL:     env.JWTAccessTTL,
			RefreshTTL:    env.JWTRefreshTTL,
		}
	)

	hs := handlers.Handlers{
		Bookings: services.BookingService{Bookings: bookingRepo, Buses: busRepo, Audit: auditRepo, Publisher: publisher},
		Buses:    services.BusService{Buses: busRepo, Users: userRepo, Audit: auditRepo, Publisher: publisher},
		Auth:     services.AuthService{Users: userRepo, Tokens: tokens},
		Audit:    services.AuditService{Audit: auditRepo},
		Docs:     services.DocsService{Bookings: bookingRepo, Buses: busRepo},
		Hub:      hub,
		Upgrader: realtime.NewUpgrader(env.CORSOrigins),
		Tokens:   tokens,
		PingDB:   intconfig.PingDB,
	}
	r := router.NewRouter(env, hs)

	// No WriteTimeout: it would cut long-lived websocket connections.
	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("addr", env.AppAddr), zap.String("env", env.AppEnv))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown failed", zap.Error(err))
		return
	}

	logger.Info("server stopped")
}
