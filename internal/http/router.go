package api

import (
	stdhttp "net/http"

	intconfig "connection-travels/internal/config"
	"connection-travels/internal/domain"
	h "connection-travels/internal/http/handlers"
	"connection-travels/internal/http/middleware"
	"connection-travels/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var (
	adminOnly    = middleware.RequireRoles(domain.RoleAdmin)
	ownerOnly    = middleware.RequireRoles(domain.RoleOwner)
	customerOnly = middleware.RequireRoles(domain.RoleCustomer)
	ownerOrAdmin = middleware.RequireRoles(domain.RoleOwner, domain.RoleAdmin)
	anyRole      = middleware.RequireRoles(domain.RoleAdmin, domain.RoleOwner, domain.RoleCustomer)
)

// RouteRoles is the single authorization table. Routes not listed are public.
var RouteRoles = middleware.RouteRoles{
	"GET /api/auth/me": anyRole,

	"POST /api/bookings":                     customerOnly,
	"GET /api/bookings":                      customerOnly,
	"GET /api/bookings/:id":                  customerOnly,
	"POST /api/bookings/:id/confirm":         customerOnly,
	"GET /api/bookings/:id/confirmation.pdf": customerOnly,

	"GET /api/admin/quotes":                        adminOnly,
	"PATCH /api/admin/quotes/:bookingId":           adminOnly,
	"POST /api/admin/quotes/:bookingId/lock-owner": adminOnly,
	"POST /api/admin/quotes/:bookingId/lock-user":  adminOnly,
	"POST /api/admin/quotes/:bookingId/cancel":     adminOnly,
	"POST /api/admin/quotes/:bookingId/complete":   adminOnly,
	"GET /api/admin/buses/pending":                 adminOnly,
	"POST /api/admin/buses/:busId/approve":         adminOnly,
	"POST /api/admin/buses/:busId/reject":          adminOnly,
	"POST /api/admin/owners/:ownerId/approve":      adminOnly,
	"GET /api/admin/audit":                         adminOnly,

	"GET /api/owners/:ownerId/bookings":                     ownerOrAdmin,
	"POST /api/owners/:ownerId/bookings/:bookingId/confirm": ownerOnly,
	"GET /api/owners/:ownerId/buses":                        ownerOrAdmin,
	"POST /api/owners/:ownerId/buses":                       ownerOnly,
	"PATCH /api/owners/:ownerId/buses/:busId":               ownerOnly,
}

func NewRouter(env intconfig.Env, hs h.Handlers) *gin.Engine {
	h.RegisterValidators()

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Logger(),
		middleware.Metrics(),
		gin.Recovery(),
		middleware.CORS(env.CORSOrigins),
		middleware.Authorize(hs.Tokens, RouteRoles),
	)

	if err := r.SetTrustedProxies(nil); err != nil {
		utils.Logger().Warn("failed to set trusted proxies", zap.Error(err))
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":      "route not found",
			"code":       "not_found",
			"message":    "route not found",
			"request_id": middleware.GetRequestID(c),
		})
	})

	api := r.Group("/api")
	{
		api.GET("/health", hs.Health)
		api.GET("/metrics", h.Metrics())
		api.GET("/routes", h.Routes)
		api.GET("/realtime", hs.Realtime)
		api.GET("/buses", hs.ListBuses)

		auth := api.Group("/auth")
		auth.POST("/login", hs.Login)
		auth.POST("/register", hs.Register)
		auth.POST("/register/owner", hs.RegisterOwner)
		auth.GET("/me", hs.Me)

		bookings := api.Group("/bookings")
		bookings.POST("", hs.RequestQuote)
		bookings.GET("", hs.ListMyBookings)
		bookings.GET("/:id", hs.GetMyBooking)
		bookings.POST("/:id/confirm", hs.ConfirmMyBooking)
		bookings.GET("/:id/confirmation.pdf", hs.ConfirmationPDF)

		admin := api.Group("/admin")
		quotes := admin.Group("/quotes")
		quotes.GET("", hs.ListQuoteRequests)
		quotes.PATCH("/:bookingId", hs.UpdateNegotiation)
		quotes.POST("/:bookingId/lock-owner", hs.LockOwnerPayout)
		quotes.POST("/:bookingId/lock-user", hs.LockUserPrice)
		quotes.POST("/:bookingId/cancel", hs.CancelBooking)
		quotes.POST("/:bookingId/complete", hs.CompleteBooking)

		admin.GET("/buses/pending", hs.ListPendingBuses)
		admin.POST("/buses/:busId/approve", hs.ApproveBus)
		admin.POST("/buses/:busId/reject", hs.RejectBus)
		admin.POST("/owners/:ownerId/approve", hs.ApproveOwner)
		admin.GET("/audit", hs.ListAuditLog)

		owners := api.Group("/owners/:ownerId", middleware.OwnerScope("ownerId"))
		owners.GET("/bookings", hs.ListOwnerBookings)
		owners.POST("/bookings/:bookingId/confirm", hs.ConfirmOwnerBooking)
		owners.GET("/buses", hs.ListOwnerBuses)
		owners.POST("/buses", hs.CreateBus)
		owners.PATCH("/buses/:busId", hs.UpdateBus)
	}

	h.SetRouter(r)
	return r
}
