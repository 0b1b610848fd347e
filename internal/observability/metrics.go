package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	usageServedGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "litterbox_service",
		Subsystem: "persistence",
		Name:      "last_usage_served_timestamp_seconds",
		Help:      "Unix timestamp of the most recent visit returned by the usage API.",
	})
	visitPersistedGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "litterbox_service",
		Subsystem: "persistence",
		Name:      "last_visit_persisted_timestamp_seconds",
		Help:      "Unix timestamp of the most recent visit written to Postgres.",
	})
)

func init() {
	prometheus.MustRegister(usageServedGauge, visitPersistedGauge)
}

// RecordUsageServed updates the read watermark gauge.
func RecordUsageServed(ts time.Time) {
	if ts.IsZero() {
		return
	}
	usageServedGauge.Set(float64(ts.Unix()))
}

// RecordVisitPersisted updates the write watermark gauge.
func RecordVisitPersisted(ts time.Time) {
	if ts.IsZero() {
		return
	}
	visitPersistedGauge.Set(float64(ts.Unix()))
}
