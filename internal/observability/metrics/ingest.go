package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RecordIngestionRun records the outcome of one ingestion run.
// stage is ignored for successful runs.
func RecordIngestionRun(source string, success bool, stage string, duration time.Duration) {
	IngestionRunDuration.WithLabelValues(source).Observe(duration.Seconds())
	if success {
		IngestionRunsTotal.WithLabelValues(source, "success").Inc()
		IngestionLastSuccess.WithLabelValues(source).SetToCurrentTime()
		return
	}
	IngestionRunsTotal.WithLabelValues(source, "failure").Inc()
	IngestionRunFailuresTotal.WithLabelValues(source, stage).Inc()
}

// RecordArticlesPersisted adds count persisted articles for source.
func RecordArticlesPersisted(source string, count int) {
	ArticlesPersistedTotal.WithLabelValues(source).Add(float64(count))
}

// RecordItemDropped counts one upstream item skipped for reason
// (e.g. "missing_headline", "invalid_url", "validation").
func RecordItemDropped(source, reason string) {
	ItemsDroppedTotal.WithLabelValues(source, reason).Inc()
}

// RecordTickSkipped counts a scheduler tick dropped for source.
func RecordTickSkipped(source string) {
	SchedulerTicksSkippedTotal.WithLabelValues(source).Inc()
}

// SetJobState marks state as the current state of source and clears the others.
func SetJobState(source, state string, allStates []string) {
	setOneHot(IngestionJobState, source, state, allStates)
}

var breakerStates = []string{"closed", "half-open", "open"}

// SetBreakerState marks state ("closed", "half-open" or "open") as the
// current breaker state of source.
func SetBreakerState(source, state string) {
	setOneHot(SourceBreakerState, source, state, breakerStates)
}

func setOneHot(g *prometheus.GaugeVec, source, state string, states []string) {
	for _, s := range states {
		v := 0.0
		if s == state {
			v = 1
		}
		g.WithLabelValues(source, s).Set(v)
	}
}
