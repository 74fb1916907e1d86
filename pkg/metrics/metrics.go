// Package metrics provides Prometheus instrumentation for the Enviroscope
// service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector holds all application metrics.
type Collector struct {
	APIRequestsTotal   *prometheus.CounterVec
	APIRequestDuration *prometheus.HistogramVec
	APIErrorsTotal     *prometheus.CounterVec

	SourceRequestsTotal *prometheus.CounterVec
	SourceFailuresTotal *prometheus.CounterVec

	ScoresComputedTotal  prometheus.Counter
	ReportsComputedTotal *prometheus.CounterVec

	CacheHitsTotal   prometheus.Counter
	CacheMissesTotal prometheus.Counter
}

// NewCollector creates a metrics collector registered with the default
// Prometheus registry.
func NewCollector(namespace string) *Collector {
	return &Collector{
		APIRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "api_requests_total",
				Help:      "Total API requests by endpoint, method, and status",
			},
			[]string{"endpoint", "method", "status"},
		),

		APIRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "api_request_duration_seconds",
				Help:      "API request duration in seconds",
				Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
			},
			[]string{"endpoint"},
		),

		APIErrorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "api_errors_total",
				Help:      "Total API errors by type and endpoint",
			},
			[]string{"error_type", "endpoint"},
		),

		SourceRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "source_requests_total",
				Help:      "Total upstream data-source requests by source",
			},
			[]string{"source"},
		),

		SourceFailuresTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "source_failures_total",
				Help:      "Total upstream data-source failures by source",
			},
			[]string{"source"},
		),

		ScoresComputedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "scores_computed_total",
				Help:      "Total composite scores computed",
			},
		),

		ReportsComputedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "validation_reports_total",
				Help:      "Total validation reports computed by worst severity",
			},
			[]string{"severity"},
		),

		CacheHitsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "payload_cache_hits_total",
				Help:      "Total upstream payload cache hits",
			},
		),

		CacheMissesTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "payload_cache_misses_total",
				Help:      "Total upstream payload cache misses",
			},
		),
	}
}

// RecordAPIRequest increments the API request counter.
func (c *Collector) RecordAPIRequest(endpoint, method, status string) {
	c.APIRequestsTotal.WithLabelValues(endpoint, method, status).Inc()
}

// RecordAPIError increments the API error counter.
func (c *Collector) RecordAPIError(errorType, endpoint string) {
	c.APIErrorsTotal.WithLabelValues(errorType, endpoint).Inc()
}

// RecordSourceRequest increments the upstream request counter.
func (c *Collector) RecordSourceRequest(source string) {
	c.SourceRequestsTotal.WithLabelValues(source).Inc()
}

// RecordSourceFailure increments the upstream failure counter.
func (c *Collector) RecordSourceFailure(source string) {
	c.SourceFailuresTotal.WithLabelValues(source).Inc()
}
