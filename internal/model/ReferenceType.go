package model

import (
	"fmt"

	"github.com/awcullen/opcua/ua"
	"github.com/cespare/xxhash/v2"
)

// ReferenceType names a relationship kind by its forward and inverse names.
// Both names take part in equality, case-sensitively.
type ReferenceType struct {
	ForwardName string
	InverseName string
}

var (
	Organizes         = ReferenceType{"Organizes", "OrganizedBy"}
	HasComponent      = ReferenceType{"HasComponent", "ComponentOf"}
	HasProperty       = ReferenceType{"HasProperty", "PropertyOf"}
	HasTypeDefinition = ReferenceType{"HasTypeDefinition", "TypeDefinitionOf"}
	HasSubtype        = ReferenceType{"HasSubtype", "SubtypeOf"}
	HasNotifier       = ReferenceType{"HasNotifier", "NotifierOf"}
	HasEventSource    = ReferenceType{"HasEventSource", "EventSourceOf"}
)

// namespace 0 ids of the standard reference types
var referenceTypeIDs = map[ReferenceType]uint32{
	Organizes:         35,
	HasEventSource:    36,
	HasTypeDefinition: 40,
	HasSubtype:        45,
	HasProperty:       46,
	HasComponent:      47,
	HasNotifier:       48,
}

func NewReferenceType(forward, inverse string) ReferenceType {
	return ReferenceType{ForwardName: forward, InverseName: inverse}
}

func (r ReferenceType) Hash() uint64 {
	return xxhash.Sum64String(r.ForwardName) ^ xxhash.Sum64String(r.InverseName)
}

// NodeID returns the standard id of a well-known reference type, nil otherwise.
func (r ReferenceType) NodeID() ua.NodeID {
	if id, ok := referenceTypeIDs[r]; ok {
		return ua.NewNodeIDNumeric(0, id)
	}
	return nil
}

// ReferenceTypeFromUA resolves a standard reference type id.
func ReferenceTypeFromUA(id ua.NodeID) (ReferenceType, bool) {
	n, ok := id.(ua.NodeIDNumeric)
	if !ok || n.NamespaceIndex != 0 {
		return ReferenceType{}, false
	}
	for ref, v := range referenceTypeIDs {
		if v == n.ID {
			return ref, true
		}
	}
	return ReferenceType{}, false
}

func (r ReferenceType) String() string {
	return fmt.Sprintf("ReferenceType(%s, %s)", r.ForwardName, r.InverseName)
}

// ForwardReference points from a node to a target of a given type.
type ForwardReference struct {
	TargetNodeID string
	TargetType   string
	RefType      ReferenceType
}

// Equal compares target id and reference type. TargetType is descriptive only.
func (f ForwardReference) Equal(other ForwardReference) bool {
	return f.TargetNodeID == other.TargetNodeID && f.RefType == other.RefType
}
