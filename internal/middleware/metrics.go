package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nandaprs/designtrack/internal/service"
)

// Metrics records per-request duration and counts. Route templates are used
// as the path label so tokenized URLs do not explode label cardinality.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metricsSvc == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
