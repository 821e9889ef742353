package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// UsageWorkerMetrics records the usage-event consumer's throughput and
// derived-state outcomes.
type UsageWorkerMetrics struct {
	duration     *prometheus.HistogramVec
	consumed     *prometheus.CounterVec
	alertsOpened *prometheus.CounterVec
}

// NewUsageWorkerMetrics registers the worker metrics on the provided registerer.
func NewUsageWorkerMetrics(reg prometheus.Registerer) *UsageWorkerMetrics {
	if reg == nil {
		return &UsageWorkerMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "usage_event_process_duration_seconds",
		Help:    "Duration of usage-event re-derivation in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	consumed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "usage_events_consumed_total",
		Help: "Usage-event notifications consumed, by outcome.",
	}, []string{"outcome"})
	alertsOpened := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "usage_alerts_opened_total",
		Help: "Threshold alerts opened by the worker.",
	}, []string{"unit_type"})
	reg.MustRegister(duration, consumed, alertsOpened)
	return &UsageWorkerMetrics{
		duration:     duration,
		consumed:     consumed,
		alertsOpened: alertsOpened,
	}
}

// ObserveProcess records one consumed notification and its duration.
func (m *UsageWorkerMetrics) ObserveProcess(outcome string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	label := normalizeLabel(outcome)
	m.duration.WithLabelValues(label).Observe(duration.Seconds())
	m.consumed.WithLabelValues(label).Inc()
}

// IncAlertOpened increments the opened-alert counter for the unit type.
func (m *UsageWorkerMetrics) IncAlertOpened(unitType string) {
	if m == nil || m.alertsOpened == nil {
		return
	}
	m.alertsOpened.WithLabelValues(normalizeLabel(unitType)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
