package utils

import (
	"time"

	"github.com/gin-gonic/gin"
)

// GinLogger logs each request through the global zap logger.
func GinLogger() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()
		if Sugar == nil {
			return
		}
		Sugar.Infow("request",
			"method", ctx.Request.Method,
			"path", ctx.Request.URL.Path,
			"status", ctx.Writer.Status(),
			"ip", ctx.ClientIP(),
			"latency", time.Since(start).String(),
		)
	}
}
