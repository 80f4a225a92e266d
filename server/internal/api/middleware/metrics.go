package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/opsx/collab/server/internal/metrics"
)

// MetricsMiddleware records Prometheus request metrics. Paths are labelled by
// route template to keep cardinality bounded.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		metrics.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method, path, strconv.Itoa(c.Writer.Status()),
		).Inc()

		metrics.HTTPRequestDuration.WithLabelValues(
			c.Request.Method, path,
		).Observe(time.Since(start).Seconds())
	}
}
