package middleware

import (
	"trialdash/internal/metrics"

	"github.com/gin-gonic/gin"
)

// RequestMetrics counts every request by matched route and status
func RequestMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		metrics.ObserveRequest(c.FullPath(), c.Writer.Status())
	}
}
