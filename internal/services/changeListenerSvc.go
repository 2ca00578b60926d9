package services

import (
	"github.com/amine-amaach/simulators/ioTSensorsUaBridge/internal/model"
	"github.com/awcullen/opcua/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

// LogListener writes every structural change to the logger.
type LogListener struct {
	logger *logrus.Logger
}

func NewLogListener(logger *logrus.Logger) *LogListener {
	return &LogListener{logger: logger}
}

func (l *LogListener) OnModelChange(changes []model.ChangeStructure) {
	for i, c := range changes {
		l.logger.WithFields(logrus.Fields{
			"category": "application",
			"Seq":      i,
			"Verb":     c.Verb.String(),
			"NodeId":   c.Affected,
			"Type":     c.AffectedType,
		}).Infoln("Address space changed 🔔")
	}
}

func (l *LogListener) OnNewInstance(node server.Node) {
	l.logger.WithFields(logrus.Fields{
		"category":    "application",
		"NodeId":      node.NodeID(),
		"BrowseName":  model.QualifiedNameFromUA(node.BrowseName()).String(),
		"DisplayName": node.DisplayName().Text,
	}).Debugln("New instance 🆕")
}

var changeVerbs = []model.ChangeVerb{
	model.NodeAdded,
	model.NodeDeleted,
	model.ReferenceAdded,
	model.ReferenceDeleted,
	model.DataTypeChanged,
}

// MetricsListener counts structural changes by verb and delivered batches.
type MetricsListener struct {
	Changes   *prometheus.CounterVec
	Batches   prometheus.Counter
	Instances prometheus.Counter
}

func NewMetricsListener(reg prometheus.Registerer) *MetricsListener {
	m := &MetricsListener{
		Changes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "uabridge",
			Subsystem: "address_space",
			Name:      "changes_total",
			Help:      "Structural changes delivered to listeners, by verb.",
		}, []string{"verb"}),
		Batches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "uabridge",
			Subsystem: "address_space",
			Name:      "change_batches_total",
			Help:      "Change batches delivered to listeners.",
		}),
		Instances: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "uabridge",
			Subsystem: "address_space",
			Name:      "instances_total",
			Help:      "Objects and variables created.",
		}),
	}
	reg.MustRegister(m.Changes, m.Batches, m.Instances)
	return m
}

// OnModelChange counts a compound verb once under every bit it carries.
func (m *MetricsListener) OnModelChange(changes []model.ChangeStructure) {
	m.Batches.Inc()
	for _, c := range changes {
		for _, verb := range changeVerbs {
			if c.Verb.Has(verb) {
				m.Changes.WithLabelValues(verb.String()).Inc()
			}
		}
	}
}

func (m *MetricsListener) OnNewInstance(server.Node) {
	m.Instances.Inc()
}
