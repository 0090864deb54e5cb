package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLogger logs each request without request bodies or tokens.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("client_ip", c.ClientIP()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		}
		if userId := c.GetString(ContextUserId); userId != "" {
			fields = append(fields, zap.String("user_id", userId))
		}

		if c.Writer.Status() >= 500 {
			zap.L().Error("Request failed", fields...)
		} else {
			zap.L().Info("Request handled", fields...)
		}
	}
}
