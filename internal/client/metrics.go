package client

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	fetchesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "litterbox_service",
		Subsystem: "client",
		Name:      "usage_fetches_total",
		Help:      "Usage fetch attempts by outcome.",
	}, []string{"outcome"})

	fetchDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "litterbox_service",
		Subsystem: "client",
		Name:      "usage_fetch_duration_seconds",
		Help:      "Latency of usage fetch requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"outcome"})
)

func init() {
	prometheus.MustRegister(fetchesTotal, fetchDuration)
}

func recordFetch(outcome string, elapsed time.Duration) {
	fetchesTotal.WithLabelValues(outcome).Inc()
	fetchDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}
