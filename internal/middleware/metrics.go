package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/UltraCapJjang-2-11/Timetable-Generator-sub000/internal/service"
)

// Metrics records per-request duration and status on the metrics service.
// The route template is preferred over the raw path to keep label
// cardinality bounded.
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
