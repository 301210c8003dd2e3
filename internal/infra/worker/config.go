package worker

import (
	"log/slog"
	"time"

	"catchup-server/internal/pkg/config"
)

// WorkerConfig holds the process-level settings of the ingestion worker.
// Per-source schedules live in the sources configuration, not here.
//
// Environment variables:
//   - WORKER_TIMEZONE: IANA timezone the cron schedules run in (default: "UTC")
//   - INGEST_RUN_TIMEOUT: upper bound of one ingestion run, 10s-1h (default: 5m)
//   - WORKER_HEALTH_PORT: port of /health, /health/ready and /metrics, 1024-65535 (default: 9091)
//   - WORKER_RUN_ON_START: run every enabled source once at startup (default: true)
type WorkerConfig struct {
	Timezone   string
	RunTimeout time.Duration
	HealthPort int
	RunOnStart bool
}

// DefaultConfig returns a WorkerConfig with the default values.
func DefaultConfig() WorkerConfig {
	return WorkerConfig{
		Timezone:   "UTC",
		RunTimeout: 5 * time.Minute,
		HealthPort: 9091,
		RunOnStart: true,
	}
}

// Location returns the configured timezone, or UTC if it cannot be loaded.
func (c *WorkerConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// LoadConfigFromEnv loads the worker configuration with a fail-open strategy:
// every invalid value is replaced by its default, logged and counted in metrics.
// The returned error is always nil.
func LoadConfigFromEnv(logger *slog.Logger, metrics *WorkerMetrics) (*WorkerConfig, error) {
	cfg := DefaultConfig()

	cm := metrics.ConfigMetrics
	cfg.Timezone = config.Resolve(
		config.LoadEnvWithFallback("WORKER_TIMEZONE", cfg.Timezone, config.ValidateTimezone),
		"timezone", logger, cm)
	cfg.RunTimeout = config.Resolve(
		config.LoadEnvDuration("INGEST_RUN_TIMEOUT", cfg.RunTimeout, func(d time.Duration) error {
			return config.ValidateDurationRange(d, 10*time.Second, time.Hour)
		}),
		"run_timeout", logger, cm)
	cfg.HealthPort = config.Resolve(
		config.LoadEnvInt("WORKER_HEALTH_PORT", cfg.HealthPort, func(v int) error {
			return config.ValidateIntRange(v, 1024, 65535)
		}),
		"health_port", logger, cm)
	cfg.RunOnStart = config.Resolve(config.LoadEnvBool("WORKER_RUN_ON_START", cfg.RunOnStart), "run_on_start", logger, cm)
	cm.MarkLoaded()

	return &cfg, nil
}
