package consumer

import "github.com/prometheus/client_golang/prometheus"

var (
	visitsProcessedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "litterbox_service",
		Subsystem: "consumer",
		Name:      "visits_processed_total",
		Help:      "Number of visit events successfully handled and committed.",
	})

	handlerErrorCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "litterbox_service",
		Subsystem: "consumer",
		Name:      "handler_errors_total",
		Help:      "Number of handler errors grouped by source device.",
	}, []string{"device_id"})

	decodeErrorCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "litterbox_service",
		Subsystem: "consumer",
		Name:      "decode_errors_total",
		Help:      "Number of visit messages discarded because they could not be decoded.",
	})

	lastVisitGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "litterbox_service",
		Subsystem: "consumer",
		Name:      "last_visit_processed_timestamp_seconds",
		Help:      "Kafka timestamp of the most recently processed visit event.",
	})
)

func init() {
	prometheus.MustRegister(visitsProcessedCounter, handlerErrorCounter, decodeErrorCounter, lastVisitGauge)
}

func recordProcessed(msg Message) {
	visitsProcessedCounter.Inc()
	if !msg.Timestamp.IsZero() {
		lastVisitGauge.Set(float64(msg.Timestamp.Unix()))
	}
}

func recordHandlerError(msg Message) {
	handlerErrorCounter.WithLabelValues(msg.Visit.DeviceID).Inc()
}

func recordDecodeError() {
	decodeErrorCounter.Inc()
}
