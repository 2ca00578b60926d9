package model

import (
	"sort"
	"time"

	"github.com/awcullen/opcua/ua"
)

// LocalizedText is human readable text with an optional locale, e.g. "en".
type LocalizedText struct {
	Locale string
	Text   string
}

func NewLocalizedText(text, locale string) LocalizedText {
	return LocalizedText{Locale: locale, Text: text}
}

func (l LocalizedText) ToUA() ua.LocalizedText {
	return ua.NewLocalizedText(l.Text, l.Locale)
}

func LocalizedTextFromUA(l ua.LocalizedText) LocalizedText {
	return LocalizedText{Locale: l.Locale, Text: l.Text}
}

func (l LocalizedText) String() string {
	return l.ToUA().String()
}

// TimeZone mirrors TimeZoneDataType: offset from UTC in minutes.
type TimeZone struct {
	Offset                 int16
	DaylightSavingInOffset bool
}

// TimeZoneAt describes loc as observed at instant at.
func TimeZoneAt(loc *time.Location, at time.Time) TimeZone {
	local := at.In(loc)
	_, offset := local.Zone()
	return TimeZone{
		Offset:                 int16(offset / 60),
		DaylightSavingInOffset: local.IsDST(),
	}
}

func (tz TimeZone) ToUA() ua.TimeZoneDataType {
	return ua.TimeZoneDataType{Offset: tz.Offset, DaylightSavingInOffset: tz.DaylightSavingInOffset}
}

func TimeZoneFromUA(tz ua.TimeZoneDataType) TimeZone {
	return TimeZone{Offset: tz.Offset, DaylightSavingInOffset: tz.DaylightSavingInOffset}
}

// Location returns a fixed zone for the offset.
func (tz TimeZone) Location() *time.Location {
	return time.FixedZone("", int(tz.Offset)*60)
}

// Image is an encoded picture (bmp, gif, jpg or png) carried as a ByteString.
type Image []byte

// EnumEntry names one value of an enumeration.
type EnumEntry struct {
	DisplayName string
	Description string
}

// EnumMap maps enumeration values to their entries.
type EnumMap map[int64]EnumEntry

// EnumValues renders the map as the EnumValues property content, ordered by value.
func (m EnumMap) EnumValues() []ua.ExtensionObject {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	out := make([]ua.ExtensionObject, len(keys))
	for i, k := range keys {
		out[i] = ua.EnumValueType{
			Value:       k,
			DisplayName: ua.LocalizedText{Text: m[k].DisplayName},
			Description: ua.LocalizedText{Text: m[k].Description},
		}
	}
	return out
}

// EnumMapFromUA reads an EnumValues property. Elements of other types are skipped.
func EnumMapFromUA(values []ua.ExtensionObject) EnumMap {
	m := make(EnumMap, len(values))
	for _, v := range values {
		ev, ok := v.(ua.EnumValueType)
		if !ok {
			continue
		}
		m[ev.Value] = EnumEntry{DisplayName: ev.DisplayName.Text, Description: ev.Description.Text}
	}
	return m
}
