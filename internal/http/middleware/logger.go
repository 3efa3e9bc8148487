package middleware

import (
	"time"

	"connection-travels/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Logger writes one access line per request, tagged with request_id.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("request_id", GetRequestID(c)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Float64("latency_ms", float64(latency.Microseconds())/1000.0),
			zap.String("ip", c.ClientIP()),
		}
		if caller, ok := CallerFrom(c); ok {
			fields = append(fields, zap.String("user_id", caller.UserID), zap.String("role", string(caller.Role)))
		}
		switch {
		case status >= 500:
			utils.Logger().Error("http", fields...)
		case status >= 400:
			utils.Logger().Warn("http", fields...)
		default:
			utils.Logger().Info("http", fields...)
		}
	}
}
