package services

import (
	"testing"

	"github.com/amine-amaach/simulators/ioTSensorsUaBridge/internal/model"
	"github.com/awcullen/opcua/server"
	"github.com/awcullen/opcua/ua"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsListener(t *testing.T) {
	m := NewMetricsListener(prometheus.NewRegistry())

	m.OnModelChange([]model.ChangeStructure{
		{Affected: "ns=2;s=A", Verb: model.NodeAdded},
		{Affected: "ns=2;s=A", Verb: model.NodeAdded | model.ReferenceAdded},
	})
	m.OnModelChange([]model.ChangeStructure{
		{Affected: "ns=2;s=A", Verb: model.NodeDeleted},
	})
	m.OnNewInstance(server.NewObjectNode(ua.NewNodeIDString(2, "A"), ua.QualifiedName{NamespaceIndex: 2, Name: "A"}, ua.LocalizedText{Text: "A"}, ua.LocalizedText{}, nil, nil, 0))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Batches))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Changes.WithLabelValues("NodeAdded")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Changes.WithLabelValues("ReferenceAdded")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Changes.WithLabelValues("NodeDeleted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Instances))
}

func TestLogListener(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	l := NewLogListener(logger)

	l.OnModelChange([]model.ChangeStructure{
		{Affected: "ns=2;s=A", AffectedType: "i=61", Verb: model.NodeAdded},
		{Affected: "ns=2;s=A", AffectedType: "i=61", Verb: model.ReferenceAdded},
	})
	require.Len(t, hook.AllEntries(), 2)
	first := hook.AllEntries()[0]
	assert.Equal(t, logrus.InfoLevel, first.Level)
	assert.Equal(t, "NodeAdded", first.Data["Verb"])
	assert.Equal(t, "application", first.Data["category"])
	assert.Equal(t, "ReferenceAdded", hook.LastEntry().Data["Verb"])

	hook.Reset()
	l.OnNewInstance(server.NewObjectNode(ua.NewNodeIDString(2, "A"), ua.QualifiedName{NamespaceIndex: 2, Name: "A"}, ua.LocalizedText{Text: "Pump"}, ua.LocalizedText{}, nil, nil, 0))
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "2:A", hook.LastEntry().Data["BrowseName"])
	assert.Equal(t, "Pump", hook.LastEntry().Data["DisplayName"])
}
