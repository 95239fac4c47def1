package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Middleware records HTTP request duration and count per matched route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := normalizeRoute(c.FullPath())
		status := strconv.Itoa(c.Writer.Status())

		httpRequestDuration.WithLabelValues(c.Request.Method, route, status).Observe(time.Since(start).Seconds())
		httpRequestsTotal.WithLabelValues(c.Request.Method, route, status).Inc()
	}
}

// normalizeRoute keeps label cardinality bounded for unmatched paths.
func normalizeRoute(route string) string {
	if route == "" {
		return "unknown"
	}
	return route
}

func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
