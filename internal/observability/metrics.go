// Package observability registers the service's prometheus collectors.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	sessionPersistGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "gymtrack",
		Subsystem: "persistence",
		Name:      "last_session_persisted_timestamp_seconds",
		Help:      "Unix timestamp of the most recent workout session persisted to Postgres.",
	})
	qualityCheckCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gymtrack",
		Subsystem: "quality",
		Name:      "checks_total",
		Help:      "Workout quality validations by verdict.",
	}, []string{"verdict"})
	reportDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "gymtrack",
		Subsystem: "reports",
		Name:      "generation_duration_seconds",
		Help:      "Time spent computing reports.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"report"})
)

func init() {
	prometheus.MustRegister(sessionPersistGauge, qualityCheckCounter, reportDuration)
}

// RecordSessionPersisted updates the persistence watermark gauge.
func RecordSessionPersisted(ts time.Time) {
	if ts.IsZero() {
		return
	}
	sessionPersistGauge.Set(float64(ts.Unix()))
}

// RecordQualityCheck counts a validation verdict.
func RecordQualityCheck(passed bool) {
	verdict := "passed"
	if !passed {
		verdict = "flagged"
	}
	qualityCheckCounter.WithLabelValues(verdict).Inc()
}

// ObserveReportDuration records how long a report took to compute.
func ObserveReportDuration(report string, d time.Duration) {
	reportDuration.WithLabelValues(report).Observe(d.Seconds())
}
