package model

import (
	"bytes"
	"reflect"
	"testing"
	"time"

	"github.com/awcullen/opcua/ua"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataTypeNameRoundTrip(t *testing.T) {
	for k := DataTypeUnknown; k < dataTypeCount; k++ {
		assert.Equal(t, k, ParseDataType(k.String()), k.String())
		assert.Equal(t, k, DataTypeFromNodeID(k.NodeID()), k.String())
	}
}

func TestParseDataTypeUnknown(t *testing.T) {
	assert.Equal(t, DataTypeUnknown, ParseDataType("Quaternion"))
	assert.Equal(t, DataTypeUnknown, ParseDataType("localizedtext"))
	assert.Equal(t, DataTypeUnknown, ParseDataType(""))
	assert.Equal(t, DataTypeUnknown, DataTypeFromNodeID(ua.NewNodeIDString(2, "Double")))
	assert.Equal(t, "Unknown", DataType(200).String())
}

func TestParseDataTypeBytes(t *testing.T) {
	assert.Equal(t, DataTypeLocalizedText, ParseDataTypeBytes([]byte("LocalizedText\x00")))
	assert.Equal(t, DataTypeStatusCode, ParseDataTypeBytes([]byte("  StatusCode\n")))
	assert.Equal(t, DataTypeUnknown, ParseDataTypeBytes(nil))

	var k DataType
	require.NoError(t, k.UnmarshalText([]byte("NodeId")))
	assert.Equal(t, DataTypeNodeId, k)
}

func TestDataTypeWireIDs(t *testing.T) {
	assert.Equal(t, ua.VariantTypeDouble, DataTypeDouble.VariantType())
	assert.Equal(t, ua.VariantTypeLocalizedText, DataTypeLocalizedText.VariantType())
	assert.Equal(t, ua.VariantTypeByteString, DataTypeImage.VariantType())
	assert.Equal(t, ua.VariantTypeExtensionObject, DataTypeTimeZone.VariantType())
	assert.Equal(t, ua.VariantTypeNull, DataTypeUnknown.VariantType())
	assert.Equal(t, ua.NewNodeIDNumeric(0, 11), DataTypeDouble.NodeID())
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		value any
		want  DataType
		array bool
	}{
		{true, DataTypeBoolean, false},
		{int8(1), DataTypeSByte, false},
		{uint8(1), DataTypeByte, false},
		{int16(1), DataTypeInt16, false},
		{uint16(1), DataTypeUInt16, false},
		{int32(1), DataTypeInt32, false},
		{uint32(1), DataTypeUInt32, false},
		{42, DataTypeInt64, false},
		{uint(42), DataTypeUInt64, false},
		{float32(1.5), DataTypeFloat, false},
		{2.5, DataTypeDouble, false},
		{"text", DataTypeString, false},
		{time.Now(), DataTypeDateTime, false},
		{uuid.New(), DataTypeGuid, false},
		{[]byte("raw"), DataTypeByteString, false},
		{NewLocalizedText("Hallo", "de"), DataTypeLocalizedText, false},
		{TimeZone{Offset: 60}, DataTypeTimeZone, false},
		{NewNumericNodeID(0, 85), DataTypeNodeId, false},
		{ChangeStructure{Verb: NodeAdded}, DataTypeChangeStructure, false},
		{Image{0x89, 'P', 'N', 'G'}, DataTypeImage, false},
		{BadTypeMismatch, DataTypeStatusCode, false},
		{NewQualifiedName(1, "q"), DataTypeQualifiedName, false},
		{[]float64{1, 2}, DataTypeDouble, true},
		{[]string{"a"}, DataTypeString, true},
		{[][]byte{{1}}, DataTypeByteString, true},
		{[]LocalizedText{}, DataTypeLocalizedText, true},
		{ua.TimeZoneDataType{Offset: 60}, DataTypeTimeZone, false},
		{ua.ModelChangeStructureDataType{Verb: 1}, DataTypeChangeStructure, false},
		{[][]int{{1, 2}}, DataTypeUnknown, false},
		{[][]float64{}, DataTypeUnknown, false},
		{struct{}{}, DataTypeUnknown, false},
		{nil, DataTypeUnknown, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, KindOf(tt.value), "%T", tt.value)
		assert.Equal(t, tt.array, IsArray(tt.value), "%T", tt.value)
	}
}

func TestVariantRoundTrip(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	values := []any{
		true,
		int32(-7),
		uint64(9),
		3.25,
		"hello",
		now,
		uuid.MustParse("5ce9dbce-5d79-434c-9ac3-1cfba9a6e92c"),
		[]byte{1, 2, 3},
		NewLocalizedText("Temperature", "en"),
		NewStringNodeID(2, "Pump"),
		NewQualifiedName(2, "Pump"),
		UncertainSensorNotAccurate,
		[]float64{1.5, 2.5},
		[]LocalizedText{NewLocalizedText("a", "en")},
		[]NodeID{NewNumericNodeID(0, 85)},
	}
	for _, v := range values {
		variant, kind := ToVariant(v)
		require.NotNil(t, variant, "%T", v)
		back, backKind := FromVariant(variant)
		assert.Equal(t, kind, backKind, "%T", v)
		assert.Equal(t, v, back, "%T", v)
	}
}

func TestToVariantWireTypes(t *testing.T) {
	v, kind := ToVariant(42)
	assert.Equal(t, int64(42), v)
	assert.Equal(t, DataTypeInt64, kind)

	v, kind = ToVariant([]int{1, 2})
	assert.Equal(t, []int64{1, 2}, v)
	assert.Equal(t, DataTypeInt64, kind)

	v, kind = ToVariant(Image{1})
	assert.Equal(t, ua.ByteString([]byte{1}), v)
	assert.Equal(t, DataTypeImage, kind)

	v, kind = ToVariant(NewLocalizedText("Hi", "en"))
	assert.Equal(t, ua.LocalizedText{Text: "Hi", Locale: "en"}, v)
	assert.Equal(t, DataTypeLocalizedText, kind)

	v, kind = ToVariant(make(chan int))
	assert.Nil(t, v)
	assert.Equal(t, DataTypeUnknown, kind)
}

func TestToVariantNestedSlicesAreUnknown(t *testing.T) {
	v, kind := ToVariant([][]int{{1, 2}, {3}})
	assert.Nil(t, v)
	assert.Equal(t, DataTypeUnknown, kind)

	v, kind = ToVariant([][]string{{"a"}})
	assert.Nil(t, v)
	assert.Equal(t, DataTypeUnknown, kind)
}

func TestExtensionObjectKinds(t *testing.T) {
	tz := TimeZone{Offset: 60, DaylightSavingInOffset: true}
	v, kind := ToVariant(tz)
	assert.Equal(t, DataTypeTimeZone, kind)
	assert.Equal(t, ua.TimeZoneDataType{Offset: 60, DaylightSavingInOffset: true}, v)

	change := NewChangeStructure(NewStringNodeID(2, "Pump"), NewNumericNodeID(0, 61), NodeAdded|ReferenceAdded)
	v, kind = ToVariant(change)
	assert.Equal(t, DataTypeChangeStructure, kind)
	assert.Equal(t, ua.ModelChangeStructureDataType{
		Affected:     ua.NewNodeIDString(2, "Pump"),
		AffectedType: ua.NewNodeIDNumeric(0, 61),
		Verb:         5,
	}, v)

	back, backKind := FromVariant(ua.TimeZoneDataType{Offset: -120})
	assert.Equal(t, DataTypeTimeZone, backKind)
	assert.Equal(t, TimeZone{Offset: -120}, back)

	back, backKind = FromVariant(v)
	assert.Equal(t, DataTypeChangeStructure, backKind)
	assert.Equal(t, change, back)

	v, kind = ToVariant([]TimeZone{{Offset: 60}, {Offset: -120}})
	assert.Equal(t, DataTypeTimeZone, kind)
	assert.Equal(t, []ua.ExtensionObject{ua.TimeZoneDataType{Offset: 60}, ua.TimeZoneDataType{Offset: -120}}, v)

	back, backKind = FromVariant(v)
	assert.Equal(t, DataTypeTimeZone, backKind)
	assert.Equal(t, []TimeZone{{Offset: 60}, {Offset: -120}}, back)

	// mixed structures have no single kind
	_, backKind = FromVariant([]ua.ExtensionObject{ua.TimeZoneDataType{}, change.ToUA()})
	assert.Equal(t, DataTypeUnknown, backKind)
}

func TestChangeStructureUnparsableIDsTravelAsNull(t *testing.T) {
	got := ChangeStructure{Affected: "garbage", Verb: NodeDeleted}.ToUA()
	assert.Equal(t, ua.NewNodeIDNumeric(0, 0), got.Affected)
	assert.Equal(t, ua.NewNodeIDNumeric(0, 0), got.AffectedType)
	assert.Equal(t, uint8(2), got.Verb)
}

func TestEveryKindEncodes(t *testing.T) {
	values := []any{
		true,
		int8(-1),
		uint8(1),
		int16(-2),
		uint16(2),
		int32(-3),
		uint32(3),
		int64(-4),
		uint64(4),
		float32(1.5),
		2.5,
		"text",
		time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		uuid.MustParse("5ce9dbce-5d79-434c-9ac3-1cfba9a6e92c"),
		[]byte{1, 2},
		NewLocalizedText("Hallo", "de"),
		TimeZone{Offset: 60},
		NewStringNodeID(2, "Pump"),
		NewChangeStructure(NewStringNodeID(2, "Pump"), NewNumericNodeID(0, 61), NodeAdded),
		Image{0x89, 'P', 'N', 'G'},
		UncertainSensorNotAccurate,
		NewQualifiedName(2, "Pump"),
	}
	seen := map[DataType]bool{}
	for _, value := range values {
		for _, v := range []any{value, arrayOf(value)} {
			variant, kind := ToVariant(v)
			require.NotEqual(t, DataTypeUnknown, kind, "%T", v)
			seen[kind] = true

			var buf bytes.Buffer
			err := ua.NewBinaryEncoder(&buf, ua.NewEncodingContext()).WriteVariant(variant)
			assert.NoError(t, err, "%T", v)
		}
	}
	assert.Len(t, seen, int(dataTypeCount)-1, "every known kind is covered")
}

func TestExtensionObjectsSurviveTheWire(t *testing.T) {
	values := []any{
		TimeZone{Offset: 60, DaylightSavingInOffset: true},
		NewChangeStructure(NewStringNodeID(2, "Pump"), NewNumericNodeID(0, 61), NodeDeleted),
		[]TimeZone{{Offset: 60}, {Offset: -30}},
	}
	ec := ua.NewEncodingContext()
	for _, v := range values {
		variant, kind := ToVariant(v)

		var buf bytes.Buffer
		require.NoError(t, ua.NewBinaryEncoder(&buf, ec).WriteVariant(variant), "%T", v)
		var decoded ua.Variant
		require.NoError(t, ua.NewBinaryDecoder(&buf, ec).ReadVariant(&decoded), "%T", v)

		back, backKind := FromVariant(decoded)
		assert.Equal(t, kind, backKind, "%T", v)
		assert.Equal(t, v, back, "%T", v)
	}
}

// arrayOf wraps a scalar in a one-element slice of its own type.
func arrayOf(v any) any {
	rv := reflect.MakeSlice(reflect.SliceOf(reflect.TypeOf(v)), 1, 1)
	rv.Index(0).Set(reflect.ValueOf(v))
	return rv.Interface()
}

func TestDataTypeAccepts(t *testing.T) {
	assert.True(t, DataTypeDouble.Accepts(DataTypeDouble))
	assert.False(t, DataTypeDouble.Accepts(DataTypeFloat))
	assert.True(t, DataTypeUnknown.Accepts(DataTypeString))
	assert.True(t, DataTypeImage.Accepts(DataTypeByteString))
	assert.False(t, DataTypeByteString.Accepts(DataTypeImage))
}

func TestTimeZone(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	tz := TimeZoneAt(loc, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, int16(60), tz.Offset)
	assert.False(t, tz.DaylightSavingInOffset)

	_, offset := time.Date(2024, 1, 1, 0, 0, 0, 0, tz.Location()).Zone()
	assert.Equal(t, 3600, offset)
}
