// Package metrics provides Prometheus metrics for the medication identifier.
// HTTP metrics:
//   - http_request_total: Counter with method, path, and status labels
//   - http_request_duration_seconds: Histogram with method and path labels
//   - http_request_in_flight: Gauge for concurrent requests
//
// Engine metrics:
//   - medication_resolve_total: Counter with a match_type label
//   - medication_usage_record_failures_total: Counter of failed usage writes
//   - medication_aggregate_batch_size: Histogram of names per aggregation
//   - learned_mappings: Gauge with a state label, refreshed by the scheduler
//
// Collectors register with the Prometheus default registry through promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestTotals = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_request_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	HTTPRequestInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_request_in_flight",
			Help: "Current in-flight requests",
		},
	)

	RateLimiterBucketsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "rate_limiter_buckets_total",
			Help: "Client IPs currently holding a rate limiter bucket",
		},
	)

	ResolveTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "medication_resolve_total",
			Help: "Medication name resolutions by match type",
		},
		[]string{"match_type"},
	)

	UsageRecordFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "medication_usage_record_failures_total",
			Help: "Learned mapping usage writes that failed",
		},
	)

	AggregateBatchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "medication_aggregate_batch_size",
			Help:    "Number of names per aggregation request",
			Buckets: prometheus.ExponentialBuckets(1, 4, 9),
		},
	)

	LearnedMappings = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "learned_mappings",
			Help: "Learned mappings by state at the last analytics snapshot",
		},
		[]string{"state"},
	)
)
