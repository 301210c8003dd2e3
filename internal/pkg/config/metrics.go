package config

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ConfigMetrics exposes how a component's settings were resolved.
// Names carry the component prefix, e.g. sources_config_fallbacks_total.
type ConfigMetrics struct {
	LoadTimestamp  prometheus.Gauge
	FallbacksTotal *prometheus.CounterVec
	FallbackActive *prometheus.GaugeVec
}

// NewConfigMetrics registers component's metrics on the default registry.
// Registering one component twice panics.
func NewConfigMetrics(component string) *ConfigMetrics {
	return NewConfigMetricsWithRegistry(prometheus.DefaultRegisterer, component)
}

func NewConfigMetricsWithRegistry(reg prometheus.Registerer, component string) *ConfigMetrics {
	f := promauto.With(reg)
	prefix := component + "_config_"
	return &ConfigMetrics{
		LoadTimestamp: f.NewGauge(prometheus.GaugeOpts{
			Name: prefix + "load_timestamp",
			Help: "Unix time the " + component + " settings were last loaded",
		}),
		FallbacksTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "fallbacks_total",
			Help: "Invalid " + component + " settings replaced by their default",
		}, []string{"field"}),
		FallbackActive: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: prefix + "fallback_active",
			Help: "1 while the " + component + " setting runs on its default after a rejected value",
		}, []string{"field"}),
	}
}

// MarkLoaded stamps the load time. It is a no-op on a nil receiver.
func (m *ConfigMetrics) MarkLoaded() {
	if m != nil {
		m.LoadTimestamp.SetToCurrentTime()
	}
}

func (m *ConfigMetrics) observe(field string, fellBack bool) {
	if m == nil {
		return
	}
	if fellBack {
		m.FallbacksTotal.WithLabelValues(field).Inc()
		m.FallbackActive.WithLabelValues(field).Set(1)
		return
	}
	m.FallbackActive.WithLabelValues(field).Set(0)
}

// Resolve returns r.Value. A fallback is logged on logger and counted on m
// under field; either may be nil.
func Resolve[T any](r LoadResult[T], field string, logger *slog.Logger, m *ConfigMetrics) T {
	m.observe(field, r.FallbackApplied)
	if r.FallbackApplied && logger != nil {
		for _, w := range r.Warnings {
			logger.Warn("configuration fallback applied",
				slog.String("field", field),
				slog.String("warning", w))
		}
	}
	return r.Value
}
