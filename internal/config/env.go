package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Env struct {
	AppEnv  string
	AppAddr string
	GinMode string

	DBDSN string

	JWTSecret        string
	JWTRefreshSecret string
	JWTAccessTTL     time.Duration
	JWTRefreshTTL    time.Duration

	CORSOrigins []string

	AMQPURL      string
	AMQPExchange string
}

// IsDevelopment reports whether the process runs outside production.
func (e Env) IsDevelopment() bool {
	return e.AppEnv != "production"
}

// LoadEnv reads .env (when present) and the process environment.
func LoadEnv() Env {
	_ = godotenv.Load()

	env := Env{
		AppEnv:           getenv("APP_ENV", "development"),
		AppAddr:          getenv("APP_ADDR", ":8080"),
		GinMode:          strings.TrimSpace(os.Getenv("GIN_MODE")),
		DBDSN:            strings.TrimSpace(os.Getenv("DB_DSN")),
		JWTSecret:        getenv("JWT_SECRET", "change-me"),
		JWTRefreshSecret: getenv("JWT_REFRESH_SECRET", "change-me-too"),
		JWTAccessTTL:     getduration("JWT_ACCESS_TTL", 30*time.Minute),
		JWTRefreshTTL:    getduration("JWT_REFRESH_TTL", 7*24*time.Hour),
		CORSOrigins:      splitList(os.Getenv("CORS_ORIGINS")),
		AMQPURL:          strings.TrimSpace(os.Getenv("AMQP_URL")),
		AMQPExchange:     getenv("AMQP_EXCHANGE", "charter.events"),
	}

	if env.DBDSN == "" {
		env.DBDSN = fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&loc=UTC&clientFoundRows=true&charset=utf8mb4&timeout=5s&readTimeout=30s&writeTimeout=30s",
			getenv("DB_USER", "root"),
			os.Getenv("DB_PASSWORD"),
			getenv("DB_HOST", "127.0.0.1:3306"),
			getenv("DB_NAME", "connection_travels"),
		)
	}

	if len(env.CORSOrigins) == 0 {
		env.CORSOrigins = []string{
			"http://localhost:5173",
			"http://localhost:5174",
			"http://localhost:5175",
		}
	}

	return env
}

func getenv(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func getduration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func splitList(raw string) []string {
	out := []string{}
	for _, p := range strings.Split(raw, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
