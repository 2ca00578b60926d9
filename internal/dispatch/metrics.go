package dispatch

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts deferred queue activity. A nil *Metrics records nothing.
type Metrics struct {
	Enqueued prometheus.Counter
	Executed prometheus.Counter
	Drains   prometheus.Counter
	Pending  prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Enqueued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "uabridge",
			Subsystem: "deferred_queue",
			Name:      "enqueued_total",
			Help:      "Callbacks handed to the deferred event queue.",
		}),
		Executed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "uabridge",
			Subsystem: "deferred_queue",
			Name:      "executed_total",
			Help:      "Callbacks dequeued and started by the drain loop.",
		}),
		Drains: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "uabridge",
			Subsystem: "deferred_queue",
			Name:      "drains_total",
			Help:      "Transitions from idle to draining.",
		}),
		Pending: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "uabridge",
			Subsystem: "deferred_queue",
			Name:      "pending",
			Help:      "Callbacks waiting in the deferred event queue.",
		}),
	}
	reg.MustRegister(m.Enqueued, m.Executed, m.Drains, m.Pending)
	return m
}

func (m *Metrics) enqueued() {
	if m == nil {
		return
	}
	m.Enqueued.Inc()
	m.Pending.Inc()
}

func (m *Metrics) executed() {
	if m == nil {
		return
	}
	m.Executed.Inc()
	m.Pending.Dec()
}

func (m *Metrics) drainStarted() {
	if m == nil {
		return
	}
	m.Drains.Inc()
}
