// Package metrics provides centralized Prometheus metrics for the application.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics track HTTP request patterns and performance
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration uses buckets from 5ms to 10s; live read-through
	// requests wait on an upstream fetch and land in the upper buckets.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current number of HTTP requests being served",
		},
	)

	HTTPResponseSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "HTTP response size in bytes",
			Buckets: prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "path"},
	)
)

// Ingestion metrics track source adapters and ingestion runs
var (
	// IngestionRunsTotal counts runs by source and final status (success, failure).
	IngestionRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingestion_runs_total",
			Help: "Total number of ingestion runs by source and status",
		},
		[]string{"source", "status"},
	)

	// IngestionRunFailuresTotal counts failed runs by the stage that failed.
	IngestionRunFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingestion_run_failures_total",
			Help: "Total number of failed ingestion runs by source and stage",
		},
		[]string{"source", "stage"},
	)

	IngestionRunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ingestion_run_duration_seconds",
			Help:    "Duration of ingestion runs in seconds",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"source"},
	)

	ArticlesPersistedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "articles_persisted_total",
			Help: "Total number of articles written to the store",
		},
		[]string{"source"},
	)

	// ItemsDroppedTotal counts upstream items skipped during parse or validation.
	ItemsDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingestion_items_dropped_total",
			Help: "Total number of upstream items dropped by source and reason",
		},
		[]string{"source", "reason"},
	)

	SchedulerTicksSkippedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheduler_ticks_skipped_total",
			Help: "Total number of scheduler ticks dropped because the previous run was still in progress",
		},
		[]string{"source"},
	)

	// IngestionJobState exposes the current state of each source as a one-hot gauge.
	IngestionJobState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ingestion_job_state",
			Help: "1 for the current ingestion state of each source, 0 otherwise",
		},
		[]string{"source", "state"},
	)

	SourceBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "source_breaker_state",
			Help: "1 for the current circuit breaker state of each source, 0 otherwise",
		},
		[]string{"source", "state"},
	)

	IngestionLastSuccess = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ingestion_last_success_timestamp",
			Help: "Unix timestamp of the last successful ingestion run by source",
		},
		[]string{"source"},
	)
)
