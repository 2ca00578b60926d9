package model

import (
	"testing"

	"github.com/awcullen/opcua/ua"
	"github.com/stretchr/testify/assert"
)

func TestEnumMap(t *testing.T) {
	m := EnumMap{
		2: {DisplayName: "Running", Description: "Pump is running"},
		0: {DisplayName: "Stopped"},
		1: {DisplayName: "Starting"},
	}

	values := m.EnumValues()
	assert.Equal(t, []ua.ExtensionObject{
		ua.EnumValueType{Value: 0, DisplayName: ua.LocalizedText{Text: "Stopped"}},
		ua.EnumValueType{Value: 1, DisplayName: ua.LocalizedText{Text: "Starting"}},
		ua.EnumValueType{Value: 2, DisplayName: ua.LocalizedText{Text: "Running"}, Description: ua.LocalizedText{Text: "Pump is running"}},
	}, values)

	assert.Equal(t, m, EnumMapFromUA(values))
	assert.Equal(t, EnumMap{}, EnumMapFromUA([]ua.ExtensionObject{ua.TimeZoneDataType{}}))
}

func TestTimeZoneUA(t *testing.T) {
	tz := TimeZone{Offset: -300, DaylightSavingInOffset: true}
	assert.Equal(t, tz, TimeZoneFromUA(tz.ToUA()))
}
