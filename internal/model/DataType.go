package model

import (
	"bytes"

	"github.com/awcullen/opcua/ua"
)

// DataType is the closed set of value kinds the bridge understands.
// DataTypeUnknown is a regular outcome, never an error.
type DataType uint8

const (
	DataTypeUnknown DataType = iota
	DataTypeBoolean
	DataTypeSByte
	DataTypeByte
	DataTypeInt16
	DataTypeUInt16
	DataTypeInt32
	DataTypeUInt32
	DataTypeInt64
	DataTypeUInt64
	DataTypeFloat
	DataTypeDouble
	DataTypeString
	DataTypeDateTime
	DataTypeGuid
	DataTypeByteString
	DataTypeLocalizedText
	DataTypeTimeZone
	DataTypeNodeId
	DataTypeChangeStructure
	DataTypeImage
	DataTypeStatusCode
	DataTypeQualifiedName

	dataTypeCount
)

type dataTypeInfo struct {
	name        string
	variantType byte
	nodeID      uint32
}

// names follow the published protocol type names
var dataTypes = [dataTypeCount]dataTypeInfo{
	DataTypeUnknown:         {"Unknown", ua.VariantTypeNull, 24}, // BaseDataType
	DataTypeBoolean:         {"Boolean", ua.VariantTypeBoolean, 1},
	DataTypeSByte:           {"SByte", ua.VariantTypeSByte, 2},
	DataTypeByte:            {"Byte", ua.VariantTypeByte, 3},
	DataTypeInt16:           {"Int16", ua.VariantTypeInt16, 4},
	DataTypeUInt16:          {"UInt16", ua.VariantTypeUInt16, 5},
	DataTypeInt32:           {"Int32", ua.VariantTypeInt32, 6},
	DataTypeUInt32:          {"UInt32", ua.VariantTypeUInt32, 7},
	DataTypeInt64:           {"Int64", ua.VariantTypeInt64, 8},
	DataTypeUInt64:          {"UInt64", ua.VariantTypeUInt64, 9},
	DataTypeFloat:           {"Float", ua.VariantTypeFloat, 10},
	DataTypeDouble:          {"Double", ua.VariantTypeDouble, 11},
	DataTypeString:          {"String", ua.VariantTypeString, 12},
	DataTypeDateTime:        {"DateTime", ua.VariantTypeDateTime, 13},
	DataTypeGuid:            {"Guid", ua.VariantTypeGUID, 14},
	DataTypeByteString:      {"ByteString", ua.VariantTypeByteString, 15},
	DataTypeLocalizedText:   {"LocalizedText", ua.VariantTypeLocalizedText, 21},
	DataTypeTimeZone:        {"TimeZoneDataType", ua.VariantTypeExtensionObject, 8912},
	DataTypeNodeId:          {"NodeId", ua.VariantTypeNodeID, 17},
	DataTypeChangeStructure: {"ModelChangeStructureDataType", ua.VariantTypeExtensionObject, 877},
	DataTypeImage:           {"Image", ua.VariantTypeByteString, 30},
	DataTypeStatusCode:      {"StatusCode", ua.VariantTypeStatusCode, 19},
	DataTypeQualifiedName:   {"QualifiedName", ua.VariantTypeQualifiedName, 20},
}

var (
	dataTypesByName   = make(map[string]DataType, dataTypeCount)
	dataTypesByNodeID = make(map[uint32]DataType, dataTypeCount)
)

func init() {
	for k := DataTypeUnknown; k < dataTypeCount; k++ {
		dataTypesByName[dataTypes[k].name] = k
		dataTypesByNodeID[dataTypes[k].nodeID] = k
	}
}

func (k DataType) valid() bool {
	return k < dataTypeCount
}

// String returns the canonical name. Out-of-range values render as "Unknown".
func (k DataType) String() string {
	if !k.valid() {
		return dataTypes[DataTypeUnknown].name
	}
	return dataTypes[k].name
}

// ParseDataType resolves a canonical, case-sensitive name.
func ParseDataType(name string) DataType {
	if k, ok := dataTypesByName[name]; ok {
		return k
	}
	return DataTypeUnknown
}

// ParseDataTypeBytes resolves a name read from an encoded buffer,
// tolerating surrounding whitespace and a trailing NUL.
func ParseDataTypeBytes(raw []byte) DataType {
	raw = bytes.TrimRight(raw, "\x00")
	return ParseDataType(string(bytes.TrimSpace(raw)))
}

// VariantType returns the awcullen variant type tag used on the wire.
func (k DataType) VariantType() byte {
	if !k.valid() {
		return ua.VariantTypeNull
	}
	return dataTypes[k].variantType
}

// NodeID returns the namespace 0 DataType node of the kind.
func (k DataType) NodeID() ua.NodeID {
	if !k.valid() {
		k = DataTypeUnknown
	}
	return ua.NewNodeIDNumeric(0, dataTypes[k].nodeID)
}

// DataTypeFromNodeID maps a standard DataType node back to its kind.
func DataTypeFromNodeID(id ua.NodeID) DataType {
	n, ok := id.(ua.NodeIDNumeric)
	if !ok || n.NamespaceIndex != 0 {
		return DataTypeUnknown
	}
	if k, ok := dataTypesByNodeID[n.ID]; ok {
		return k
	}
	return DataTypeUnknown
}

func (k DataType) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *DataType) UnmarshalText(text []byte) error {
	*k = ParseDataTypeBytes(text)
	return nil
}
