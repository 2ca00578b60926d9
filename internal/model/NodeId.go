package model

import (
	"encoding/binary"
	"fmt"

	"github.com/awcullen/opcua/ua"
	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// IdentifierKind tags the payload carried by a NodeID.
type IdentifierKind uint8

const (
	IdentifierNumeric IdentifierKind = iota
	IdentifierString
	IdentifierGuid
	IdentifierByteString
)

func (k IdentifierKind) String() string {
	switch k {
	case IdentifierNumeric:
		return "Numeric"
	case IdentifierString:
		return "String"
	case IdentifierGuid:
		return "Guid"
	case IdentifierByteString:
		return "ByteString"
	default:
		return "Invalid"
	}
}

// NodeID is a namespaced, kind-tagged node identifier.
//
// Only the field selected by Kind is populated, so NodeID values are
// comparable with == and usable as map keys. Byte-string payloads are
// held as an immutable string.
type NodeID struct {
	namespace uint16
	kind      IdentifierKind
	numeric   uint32
	text      string
	guid      uuid.UUID
}

// NullNodeID is the numeric identifier ns=0;i=0.
var NullNodeID = NodeID{}

func NewNumericNodeID(ns uint16, id uint32) NodeID {
	return NodeID{namespace: ns, kind: IdentifierNumeric, numeric: id}
}

func NewStringNodeID(ns uint16, id string) NodeID {
	return NodeID{namespace: ns, kind: IdentifierString, text: id}
}

func NewGuidNodeID(ns uint16, id uuid.UUID) NodeID {
	return NodeID{namespace: ns, kind: IdentifierGuid, guid: id}
}

// NewByteStringNodeID copies id, later changes to the slice do not leak in.
func NewByteStringNodeID(ns uint16, id []byte) NodeID {
	return NodeID{namespace: ns, kind: IdentifierByteString, text: string(id)}
}

func (n NodeID) Namespace() uint16 { return n.namespace }

func (n NodeID) Kind() IdentifierKind { return n.kind }

func (n NodeID) Numeric() (uint32, bool) {
	return n.numeric, n.kind == IdentifierNumeric
}

func (n NodeID) StringID() (string, bool) {
	if n.kind != IdentifierString {
		return "", false
	}
	return n.text, true
}

func (n NodeID) Guid() (uuid.UUID, bool) {
	if n.kind != IdentifierGuid {
		return uuid.Nil, false
	}
	return n.guid, true
}

// ByteString returns a fresh copy of the opaque payload.
func (n NodeID) ByteString() ([]byte, bool) {
	if n.kind != IdentifierByteString {
		return nil, false
	}
	return []byte(n.text), true
}

// IsNull reports whether n is ns=0;i=0.
func (n NodeID) IsNull() bool {
	return n == NullNodeID
}

// Equal is the same as ==, kept for callers holding NodeID behind an interface.
func (n NodeID) Equal(other NodeID) bool {
	return n == other
}

// Hash combines the namespace, the kind tag and the payload hash.
// Numeric payloads hash as themselves, the others by xxhash content digest.
func (n NodeID) Hash() uint64 {
	var payload uint64
	switch n.kind {
	case IdentifierNumeric:
		payload = uint64(n.numeric)
	case IdentifierString, IdentifierByteString:
		payload = xxhash.Sum64String(n.text)
	case IdentifierGuid:
		payload = xxhash.Sum64(n.guid[:])
	}
	var buf [11]byte
	binary.LittleEndian.PutUint16(buf[0:2], n.namespace)
	buf[2] = byte(n.kind)
	binary.LittleEndian.PutUint64(buf[3:], payload)
	return xxhash.Sum64(buf[:])
}

// ToUA converts to the awcullen wire representation.
func (n NodeID) ToUA() ua.NodeID {
	switch n.kind {
	case IdentifierString:
		return ua.NewNodeIDString(n.namespace, n.text)
	case IdentifierGuid:
		return ua.NewNodeIDGUID(n.namespace, n.guid)
	case IdentifierByteString:
		return ua.NewNodeIDOpaque(n.namespace, ua.ByteString(n.text))
	default:
		return ua.NewNodeIDNumeric(n.namespace, n.numeric)
	}
}

// NodeIDFromUA converts an awcullen NodeID. A nil id maps to NullNodeID.
func NodeIDFromUA(id ua.NodeID) NodeID {
	switch v := id.(type) {
	case ua.NodeIDNumeric:
		return NewNumericNodeID(v.NamespaceIndex, v.ID)
	case ua.NodeIDString:
		return NewStringNodeID(v.NamespaceIndex, v.ID)
	case ua.NodeIDGUID:
		return NewGuidNodeID(v.NamespaceIndex, v.ID)
	case ua.NodeIDOpaque:
		return NodeID{namespace: v.NamespaceIndex, kind: IdentifierByteString, text: string(v.ID)}
	default:
		return NullNodeID
	}
}

// ParseNodeID accepts the text forms "i=85", "ns=2;s=Demo", "ns=2;g=<uuid>", "ns=2;b=<base64>".
func ParseNodeID(s string) (NodeID, error) {
	id := ua.ParseNodeID(s)
	if id == nil {
		return NullNodeID, errors.Errorf("invalid node id %q", s)
	}
	return NodeIDFromUA(id), nil
}

// String renders the standard text form, e.g. "ns=2;s=Temperature".
func (n NodeID) String() string {
	return fmt.Sprint(n.ToUA())
}
