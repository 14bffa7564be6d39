package metrics

import (
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	HTTPRequestsTotal    metric.Int64Counter
	HTTPRequestDuration  metric.Float64Histogram
	AuthRequestsTotal    metric.Int64Counter
	CacheHitsTotal       metric.Int64Counter
	CacheMissesTotal     metric.Int64Counter
	SessionRenewalsTotal metric.Int64Counter
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics initializes the global metric instruments once, using the
// globally configured MeterProvider.
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("tally")
		var err error
		m := &AppMetrics{}

		m.HTTPRequestsTotal, err = meter.Int64Counter(
			"http_requests_total",
			metric.WithDescription("Total number of HTTP requests completed"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create http_requests_total: %v", err)
		}

		m.HTTPRequestDuration, err = meter.Float64Histogram(
			"http_request_duration_seconds",
			metric.WithDescription("Duration of HTTP requests in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create http_request_duration_seconds: %v", err)
		}

		m.AuthRequestsTotal, err = meter.Int64Counter(
			"auth_requests_total",
			metric.WithDescription("Total number of authentication requests"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create auth_requests_total: %v", err)
		}

		m.CacheHitsTotal, err = meter.Int64Counter(
			"response_cache_hits_total",
			metric.WithDescription("Total number of response cache hits"),
			metric.WithUnit("{lookup}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create response_cache_hits_total: %v", err)
		}

		m.CacheMissesTotal, err = meter.Int64Counter(
			"response_cache_misses_total",
			metric.WithDescription("Total number of response cache misses"),
			metric.WithUnit("{lookup}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create response_cache_misses_total: %v", err)
		}

		m.SessionRenewalsTotal, err = meter.Int64Counter(
			"session_renewals_total",
			metric.WithDescription("Total number of sliding-expiry session renewals"),
			metric.WithUnit("{renewal}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create session_renewals_total: %v", err)
		}

		appMetrics = m
	})
}

// Get returns the global metrics instance, or nil if InitAppMetrics has not
// run yet.
func Get() *AppMetrics {
	return appMetrics
}
