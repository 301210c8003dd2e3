package worker

import (
	"catchup-server/internal/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// WorkerMetrics provides Prometheus metrics for the worker process.
// Ingestion outcomes are recorded by the ingest package; these cover the
// worker's own configuration and scheduling.
//
// Embedded metrics (from ConfigMetrics):
//   - worker_config_load_timestamp
//   - worker_config_fallbacks_total
//   - worker_config_fallback_active
type WorkerMetrics struct {
	*config.ConfigMetrics

	// ScheduledJobs is the number of cron entries registered by the scheduler.
	ScheduledJobs prometheus.Gauge

	// RunningJobs is 1 while a run of the source holds its guard.
	RunningJobs *prometheus.GaugeVec
}

// NewWorkerMetrics registers the worker metrics with the default registry.
func NewWorkerMetrics() *WorkerMetrics {
	return NewWorkerMetricsWithRegistry(prometheus.DefaultRegisterer)
}

// NewWorkerMetricsWithRegistry registers the worker metrics on reg.
func NewWorkerMetricsWithRegistry(reg prometheus.Registerer) *WorkerMetrics {
	factory := promauto.With(reg)
	return &WorkerMetrics{
		ConfigMetrics: config.NewConfigMetricsWithRegistry(reg, "worker"),

		ScheduledJobs: factory.NewGauge(prometheus.GaugeOpts{
			Name: "worker_scheduled_jobs",
			Help: "Number of ingestion jobs registered with the scheduler",
		}),

		RunningJobs: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "worker_running_jobs",
			Help: "1 while an ingestion run of the source is in progress",
		}, []string{"source"}),
	}
}

// SetRunning marks whether a run of source is in progress.
func (m *WorkerMetrics) SetRunning(source string, running bool) {
	v := 0.0
	if running {
		v = 1
	}
	m.RunningJobs.WithLabelValues(source).Set(v)
}
