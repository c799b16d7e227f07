package middleware

import (
	"time"

	"app-builder-api/internal/metrics"

	"github.com/gin-gonic/gin"
)

// Metrics records the status and duration of every request. The route
// template is used as the path label to keep cardinality bounded.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.RecordHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
