package model

import (
	"reflect"
	"time"

	"github.com/awcullen/opcua/ua"
	"github.com/google/uuid"
)

// KindOf classifies a dynamic application value. Slices classify by their
// element kind ([]byte is a ByteString scalar); a slice of slices other
// than [][]byte is Unknown. Anything else is Unknown.
func KindOf(v any) DataType {
	if k := scalarKindOf(v); k != DataTypeUnknown || v == nil {
		return k
	}
	rt := reflect.TypeOf(v)
	if rt.Kind() == reflect.Slice {
		return scalarKindOf(reflect.Zero(rt.Elem()).Interface())
	}
	return DataTypeUnknown
}

func scalarKindOf(v any) DataType {
	switch v.(type) {
	case bool:
		return DataTypeBoolean
	case int8:
		return DataTypeSByte
	case uint8:
		return DataTypeByte
	case int16:
		return DataTypeInt16
	case uint16:
		return DataTypeUInt16
	case int32:
		return DataTypeInt32
	case uint32:
		return DataTypeUInt32
	case int64, int:
		return DataTypeInt64
	case uint64, uint:
		return DataTypeUInt64
	case float32:
		return DataTypeFloat
	case float64:
		return DataTypeDouble
	case string:
		return DataTypeString
	case time.Time:
		return DataTypeDateTime
	case uuid.UUID:
		return DataTypeGuid
	case []byte, ua.ByteString:
		return DataTypeByteString
	case LocalizedText, ua.LocalizedText:
		return DataTypeLocalizedText
	case TimeZone, ua.TimeZoneDataType:
		return DataTypeTimeZone
	case NodeID, ua.NodeIDNumeric, ua.NodeIDString, ua.NodeIDGUID, ua.NodeIDOpaque:
		return DataTypeNodeId
	case ChangeStructure, ua.ModelChangeStructureDataType:
		return DataTypeChangeStructure
	case Image:
		return DataTypeImage
	case StatusCode, ua.StatusCode:
		return DataTypeStatusCode
	case QualifiedName, ua.QualifiedName:
		return DataTypeQualifiedName
	}
	return DataTypeUnknown
}

// IsArray reports whether v is carried as an array of its kind.
func IsArray(v any) bool {
	switch v.(type) {
	case nil, []byte, Image, ua.ByteString:
		return false
	}
	return reflect.TypeOf(v).Kind() == reflect.Slice && KindOf(v) != DataTypeUnknown
}

// IsArrayVariant reports whether a wire value carries an array.
func IsArrayVariant(v ua.Variant) bool {
	return v != nil && reflect.TypeOf(v).Kind() == reflect.Slice
}

// ToVariant converts a dynamic application value into the awcullen wire
// representation. Unknown values convert to (nil, DataTypeUnknown).
func ToVariant(v any) (ua.Variant, DataType) {
	kind := KindOf(v)
	if kind == DataTypeUnknown {
		return nil, DataTypeUnknown
	}
	if !IsArray(v) {
		return scalarToVariant(v), kind
	}
	switch a := v.(type) {
	case []bool, []int8, []int16, []uint16, []int32, []uint32, []int64, []uint64,
		[]float32, []float64, []string, []time.Time, []uuid.UUID:
		return a, kind
	case []int:
		return mapSlice(a, func(e int) int64 { return int64(e) }), kind
	case []uint:
		return mapSlice(a, func(e uint) uint64 { return uint64(e) }), kind
	case [][]byte:
		return mapSlice(a, func(e []byte) ua.ByteString { return ua.ByteString(e) }), kind
	case []Image:
		return mapSlice(a, func(e Image) ua.ByteString { return ua.ByteString(e) }), kind
	case []TimeZone:
		return mapSlice(a, func(e TimeZone) ua.ExtensionObject { return e.ToUA() }), kind
	case []ChangeStructure:
		return mapSlice(a, func(e ChangeStructure) ua.ExtensionObject { return e.ToUA() }), kind
	case []LocalizedText:
		return mapSlice(a, LocalizedText.ToUA), kind
	case []QualifiedName:
		return mapSlice(a, QualifiedName.ToUA), kind
	case []NodeID:
		return mapSlice(a, NodeID.ToUA), kind
	case []StatusCode:
		return mapSlice(a, StatusCode.ToUA), kind
	}
	// remaining slices of a known kind travel as an array of variants
	rv := reflect.ValueOf(v)
	out := make([]ua.Variant, rv.Len())
	for i := range out {
		out[i] = scalarToVariant(rv.Index(i).Interface())
	}
	return out, kind
}

func scalarToVariant(v any) ua.Variant {
	switch s := v.(type) {
	case int:
		return int64(s)
	case uint:
		return uint64(s)
	case []byte:
		return ua.ByteString(s)
	case Image:
		return ua.ByteString(s)
	case LocalizedText:
		return s.ToUA()
	case NodeID:
		return s.ToUA()
	case StatusCode:
		return s.ToUA()
	case QualifiedName:
		return s.ToUA()
	case TimeZone:
		return s.ToUA()
	case ChangeStructure:
		return s.ToUA()
	default:
		return v
	}
}

// FromVariant converts a wire value into the application representation.
// Image payloads arrive as ByteString; DataType.Accepts lets an Image node take them.
func FromVariant(v ua.Variant) (any, DataType) {
	switch a := v.(type) {
	case []ua.LocalizedText:
		return mapSlice(a, LocalizedTextFromUA), DataTypeLocalizedText
	case []ua.QualifiedName:
		return mapSlice(a, QualifiedNameFromUA), DataTypeQualifiedName
	case []ua.NodeID:
		return mapSlice(a, NodeIDFromUA), DataTypeNodeId
	case []ua.StatusCode:
		return mapSlice(a, StatusCodeFromUA), DataTypeStatusCode
	case []ua.ByteString:
		return mapSlice(a, func(e ua.ByteString) []byte { return []byte(e) }), DataTypeByteString
	case []ua.ExtensionObject:
		return extensionObjectsFromUA(a)
	case []ua.Variant:
		out := make([]any, len(a))
		kind := DataTypeUnknown
		for i, e := range a {
			out[i], kind = FromVariant(e)
		}
		return out, kind
	}
	out := scalarFromVariant(v)
	return out, KindOf(out)
}

func scalarFromVariant(v ua.Variant) any {
	switch s := v.(type) {
	case ua.ByteString:
		return []byte(s)
	case ua.LocalizedText:
		return LocalizedTextFromUA(s)
	case ua.QualifiedName:
		return QualifiedNameFromUA(s)
	case ua.StatusCode:
		return StatusCodeFromUA(s)
	case ua.NodeIDNumeric, ua.NodeIDString, ua.NodeIDGUID, ua.NodeIDOpaque:
		return NodeIDFromUA(s.(ua.NodeID))
	case ua.TimeZoneDataType:
		return TimeZoneFromUA(s)
	case *ua.TimeZoneDataType:
		return TimeZoneFromUA(*s)
	case ua.ModelChangeStructureDataType:
		return ChangeStructureFromUA(s)
	case *ua.ModelChangeStructureDataType:
		return ChangeStructureFromUA(*s)
	default:
		return v
	}
}

// extensionObjectsFromUA returns a typed slice when every element decodes to
// the same known structure, and []any of Unknown kind otherwise.
func extensionObjectsFromUA(objs []ua.ExtensionObject) (any, DataType) {
	out := make([]any, len(objs))
	kind := DataTypeUnknown
	for i, o := range objs {
		out[i] = scalarFromVariant(o)
		k := KindOf(out[i])
		if i > 0 && k != kind {
			return out, DataTypeUnknown
		}
		kind = k
	}
	switch kind {
	case DataTypeTimeZone:
		return mapSlice(out, func(e any) TimeZone { return e.(TimeZone) }), kind
	case DataTypeChangeStructure:
		return mapSlice(out, func(e any) ChangeStructure { return e.(ChangeStructure) }), kind
	}
	return out, DataTypeUnknown
}

// Accepts reports whether a node of kind k can hold a value of kind v.
// Unknown (BaseDataType) holds anything and an Image node takes raw ByteStrings.
func (k DataType) Accepts(v DataType) bool {
	switch {
	case k == DataTypeUnknown:
		return true
	case k == v:
		return true
	case k == DataTypeImage && v == DataTypeByteString:
		return true
	}
	return false
}

func mapSlice[T, U any](in []T, f func(T) U) []U {
	out := make([]U, len(in))
	for i, e := range in {
		out[i] = f(e)
	}
	return out
}
