package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/chamada-api/internal/service"
)

// unmatchedRoute labels requests that hit no route, so raw paths with ids
// never become label values.
const unmatchedRoute = "unmatched"

// Metrics records request count, latency and concurrency per route template.
// Scrapes of metricsPath are not counted.
func Metrics(metricsSvc *service.MetricsService, metricsPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metricsSvc == nil || c.Request.URL.Path == metricsPath {
			c.Next()
			return
		}

		done := metricsSvc.TrackInFlight()
		defer done()

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
