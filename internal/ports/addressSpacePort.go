package ports

import (
	"github.com/amine-amaach/simulators/ioTSensorsUaBridge/internal/model"
	"github.com/awcullen/opcua/server"
	"github.com/awcullen/opcua/ua"
)

// NodeStore holds the nodes served to clients.
// *server.NamespaceManager satisfies it.
type NodeStore interface {
	AddNode(node server.Node) error
	DeleteNode(node server.Node, deleteChildren bool) error
	FindNode(id ua.NodeID) (server.Node, bool)
}

// ChangeListener consumes structural-change notifications.
// Both methods are called from the event loop, after the mutation that
// caused them has returned.
type ChangeListener interface {
	// OnModelChange receives one batch, in order of occurrence.
	OnModelChange(changes []model.ChangeStructure)
	// OnNewInstance is called once per object or variable created.
	OnNewInstance(node server.Node)
}

// SensorPort describes a simulated sensor data source.
type SensorPort interface {
	CalculateNextValue() float64
	DecideFactor() float64
}
