package metrics

import "github.com/prometheus/client_golang/prometheus"

// ReminderMetrics counts per-project outcomes of the stale needs sweep.
type ReminderMetrics struct {
	sent     prometheus.Counter
	failed   prometheus.Counter
	eligible prometheus.Gauge
}

// NewReminderMetrics registers the reminder counters on the provided registerer.
func NewReminderMetrics(reg prometheus.Registerer) *ReminderMetrics {
	if reg == nil {
		return &ReminderMetrics{}
	}
	sent := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "reminders",
		Name:      "sent_total",
		Help:      "Stale needs reminders delivered.",
	})
	failed := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "reminders",
		Name:      "failed_total",
		Help:      "Stale needs reminders that failed and stay eligible.",
	})
	eligible := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "reminders",
		Name:      "eligible_projects",
		Help:      "Projects eligible during the most recent sweep.",
	})
	reg.MustRegister(sent, failed, eligible)
	return &ReminderMetrics{sent: sent, failed: failed, eligible: eligible}
}

// ObserveSweep records the totals of a completed sweep.
func (r *ReminderMetrics) ObserveSweep(eligible, sent, failed int) {
	if r == nil || r.sent == nil {
		return
	}
	r.eligible.Set(float64(eligible))
	r.sent.Add(float64(sent))
	r.failed.Add(float64(failed))
}
