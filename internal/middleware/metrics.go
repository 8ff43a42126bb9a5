package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/classtap-api/internal/service"
)

// Metrics times every request into the HTTP histograms. The route
// template is preferred over the raw path so course IDs do not explode
// label cardinality.
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
			path = c.Request.URL.Path
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
