package middleware

import (
	"context"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/tallyapp/tally/internal/observability/metrics"
)

// OTELGin returns the contrib otelgin middleware for trace propagation.
func OTELGin(serviceName string) gin.HandlerFunc {
	return otelgin.Middleware(serviceName)
}

// RequestMetrics records HTTP request counters and durations on the global
// meter provider.
func RequestMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		statusCode := c.Writer.Status()

		m := metrics.Get()
		if m == nil {
			return
		}

		attrs := metric.WithAttributes(
			attribute.String("method", c.Request.Method),
			attribute.String("path", c.FullPath()),
			attribute.String("status", strconv.Itoa(statusCode)),
		)
		m.HTTPRequestsTotal.Add(context.Background(), 1, attrs)
		m.HTTPRequestDuration.Record(context.Background(), duration,
			metric.WithAttributes(
				attribute.String("method", c.Request.Method),
				attribute.String("path", c.FullPath()),
			))

		if c.Request.URL.Path == "/sign-in" || c.Request.URL.Path == "/sign-up" {
			m.AuthRequestsTotal.Add(context.Background(), 1,
				metric.WithAttributes(
					attribute.String("endpoint", c.Request.URL.Path),
					attribute.String("status", strconv.Itoa(statusCode)),
				))
		}
	}
}
