package middleware

import (
	"time"

	"eportal/internal/logger"

	"github.com/gin-gonic/gin"
)

func AccessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		log := logger.With("request_id", RequestIDFrom(c), "client_ip", c.ClientIP())
		args := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
		}
		switch {
		case status >= 500:
			log.Error("http.request", args...)
		case status >= 400:
			log.Warn("http.request", args...)
		default:
			log.Info("http.request", args...)
		}
	}
}
