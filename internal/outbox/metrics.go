package outbox

import "github.com/prometheus/client_golang/prometheus"

var (
	deliveredCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "gymtrack",
		Subsystem: "outbox",
		Name:      "events_delivered_total",
		Help:      "Outbox events successfully delivered to Kafka.",
	})
	failedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "gymtrack",
		Subsystem: "outbox",
		Name:      "events_failed_total",
		Help:      "Outbox events that failed delivery.",
	})
	batchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "gymtrack",
		Subsystem: "outbox",
		Name:      "batch_duration_seconds",
		Help:      "Time spent processing one outbox batch.",
		Buckets:   prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(deliveredCounter, failedCounter, batchDuration)
}
