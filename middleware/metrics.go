package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"smart_apartment/services"
)

// RequestMetrics замеряет длительность запросов по шаблону маршрута
func RequestMetrics(metrics *services.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.ObserveHTTPRequest(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), time.Since(start).Seconds())
	}
}
