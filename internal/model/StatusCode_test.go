package model

import (
	"testing"

	"github.com/awcullen/opcua/ua"
	"github.com/stretchr/testify/assert"
)

func TestStatusCodeSeverity(t *testing.T) {
	tests := []struct {
		code StatusCode
		want Severity
	}{
		{0x00000000, SeverityGood},
		{0x40000000, SeverityUncertain},
		{0x80000000, SeverityBad},
		{0xC0000000, SeverityReserved},
		{GoodLocalOverride, SeverityGood},
		{UncertainSubNormal, SeverityUncertain},
		{BadDeviceFailure, SeverityBad},
		// unnamed sub-codes classify by their top bits alone
		{0x00AA0000, SeverityGood},
		{0x40FF0000, SeverityUncertain},
		{0x80FF0000, SeverityBad},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.code.Severity(), tt.code.String())
	}

	assert.True(t, Good.IsGood())
	assert.True(t, Uncertain.IsUncertain())
	assert.True(t, Bad.IsBad())
	assert.False(t, StatusCode(0xC0000000).IsBad())
}

func TestStatusCodeNames(t *testing.T) {
	assert.Equal(t, "BadSensorFailure", BadSensorFailure.String())
	assert.Equal(t, "0x80FF0000", StatusCode(0x80FF0000).String())

	_, ok := StatusCode(0x80FF0000).Name()
	assert.False(t, ok)

	for code, name := range statusNames {
		got, ok := ParseStatusCode(name)
		assert.True(t, ok)
		assert.Equal(t, code, got)
	}

	got, ok := ParseStatusCode("0x80FF0000")
	assert.True(t, ok)
	assert.Equal(t, StatusCode(0x80FF0000), got)

	got, ok = ParseStatusCode("BadSomethingElse")
	assert.False(t, ok)
	assert.Equal(t, Bad, got)
	assert.Equal(t, Bad, StatusCodeFromName("nonsense"))
}

func TestStatusCodeAsKeyAndError(t *testing.T) {
	counts := map[StatusCode]int{}
	counts[BadTypeMismatch]++
	counts[StatusCodeFromUA(ua.StatusCode(0x80740000))]++
	assert.Equal(t, 2, counts[BadTypeMismatch])

	var err error = BadNotWritable
	assert.EqualError(t, err, "BadNotWritable")
	assert.Equal(t, ua.StatusCode(0x803B0000), BadNotWritable.ToUA())
}

func TestStatusTable(t *testing.T) {
	table := NewStatusTable()
	assert.Equal(t, 17, table.Len())
	assert.Equal(t, "The source of the data is not operational.", table.LongDescription(BadOutOfService))
	assert.Equal(t, "", table.LongDescription(StatusCode(0x80FF0000)))
	assert.Equal(t, "", table.LongDescription(BadNodeIdUnknown))

	name, desc := table.Describe(UncertainInitialValue)
	assert.Equal(t, "UncertainInitialValue", name)
	assert.NotEmpty(t, desc)

	var nilTable *StatusTable
	assert.Equal(t, "", nilTable.LongDescription(Good))
}

func TestStatusCodeText(t *testing.T) {
	text, err := BadDeadbandFilterInvalid.MarshalText()
	assert.NoError(t, err)
	var back StatusCode
	assert.NoError(t, back.UnmarshalText(text))
	assert.Equal(t, BadDeadbandFilterInvalid, back)
}
