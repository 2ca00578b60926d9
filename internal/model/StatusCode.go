package model

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/awcullen/opcua/ua"
)

// StatusCode is a 32-bit protocol result. The two most significant bits
// select the severity, the rest is the sub-code. Equality is on all 32 bits.
type StatusCode uint32

// Part 8 - 6.3.2 operation level result codes, plus the codes the
// address space returns to clients.
const (
	Good                                    StatusCode = 0x00000000
	GoodLocalOverride                       StatusCode = 0x00960000
	Uncertain                               StatusCode = 0x40000000
	UncertainNoCommunicationLastUsableValue StatusCode = 0x408F0000
	UncertainLastUsableValue                StatusCode = 0x40900000
	UncertainSubstituteValue                StatusCode = 0x40910000
	UncertainInitialValue                   StatusCode = 0x40920000
	UncertainSensorNotAccurate              StatusCode = 0x40930000
	UncertainEngineeringUnitsExceeded       StatusCode = 0x40940000
	UncertainSubNormal                      StatusCode = 0x40950000
	Bad                                     StatusCode = 0x80000000
	BadConfigurationError                   StatusCode = 0x80890000
	BadNotConnected                         StatusCode = 0x808A0000
	BadDeviceFailure                        StatusCode = 0x808B0000
	BadSensorFailure                        StatusCode = 0x808C0000
	BadOutOfService                         StatusCode = 0x808D0000
	BadDeadbandFilterInvalid                StatusCode = 0x808E0000

	BadTimeout             StatusCode = 0x800A0000
	BadUserAccessDenied    StatusCode = 0x801F0000
	BadNodeIdUnknown       StatusCode = 0x80340000
	BadIndexRangeInvalid   StatusCode = 0x80360000
	BadNotWritable         StatusCode = 0x803B0000
	BadParentNodeIdInvalid StatusCode = 0x805B0000
	BadNodeIdExists        StatusCode = 0x805E0000
	BadTypeMismatch        StatusCode = 0x80740000
)

var statusNames = map[StatusCode]string{
	Good:                                    "Good",
	GoodLocalOverride:                       "GoodLocalOverride",
	Uncertain:                               "Uncertain",
	UncertainNoCommunicationLastUsableValue: "UncertainNoCommunicationLastUsableValue",
	UncertainLastUsableValue:                "UncertainLastUsableValue",
	UncertainSubstituteValue:                "UncertainSubstituteValue",
	UncertainInitialValue:                   "UncertainInitialValue",
	UncertainSensorNotAccurate:              "UncertainSensorNotAccurate",
	UncertainEngineeringUnitsExceeded:       "UncertainEngineeringUnitsExceeded",
	UncertainSubNormal:                      "UncertainSubNormal",
	Bad:                                     "Bad",
	BadConfigurationError:                   "BadConfigurationError",
	BadNotConnected:                         "BadNotConnected",
	BadDeviceFailure:                        "BadDeviceFailure",
	BadSensorFailure:                        "BadSensorFailure",
	BadOutOfService:                         "BadOutOfService",
	BadDeadbandFilterInvalid:                "BadDeadbandFilterInvalid",
	BadTimeout:                              "BadTimeout",
	BadUserAccessDenied:                     "BadUserAccessDenied",
	BadIndexRangeInvalid:                    "BadIndexRangeInvalid",
	BadNodeIdUnknown:                        "BadNodeIdUnknown",
	BadNotWritable:                          "BadNotWritable",
	BadParentNodeIdInvalid:                  "BadParentNodeIdInvalid",
	BadNodeIdExists:                         "BadNodeIdExists",
	BadTypeMismatch:                         "BadTypeMismatch",
}

var statusByName = func() map[string]StatusCode {
	m := make(map[string]StatusCode, len(statusNames))
	for code, name := range statusNames {
		m[name] = code
	}
	return m
}()

// Severity is the band selected by the two most significant bits.
type Severity uint8

const (
	SeverityGood Severity = iota
	SeverityUncertain
	SeverityBad
	// top bits 11 are reserved by the protocol
	SeverityReserved
)

func (s Severity) String() string {
	switch s {
	case SeverityGood:
		return "Good"
	case SeverityUncertain:
		return "Uncertain"
	case SeverityBad:
		return "Bad"
	default:
		return "Reserved"
	}
}

// Severity never consults the name or description tables.
func (c StatusCode) Severity() Severity {
	return Severity(uint32(c) >> 30)
}

func (c StatusCode) IsGood() bool      { return c.Severity() == SeverityGood }
func (c StatusCode) IsUncertain() bool { return c.Severity() == SeverityUncertain }
func (c StatusCode) IsBad() bool       { return c.Severity() == SeverityBad }

func (c StatusCode) Raw() uint32 { return uint32(c) }

// Name returns the enumerated name, ok is false for unrecognized codes.
func (c StatusCode) Name() (string, bool) {
	name, ok := statusNames[c]
	return name, ok
}

// String returns the name, or "0x%08X" for codes without one.
func (c StatusCode) String() string {
	if name, ok := statusNames[c]; ok {
		return name
	}
	return fmt.Sprintf("0x%08X", uint32(c))
}

// Error lets a StatusCode travel as an error value.
func (c StatusCode) Error() string {
	return c.String()
}

func (c StatusCode) ToUA() ua.StatusCode {
	return ua.StatusCode(c)
}

func StatusCodeFromUA(c ua.StatusCode) StatusCode {
	return StatusCode(c)
}

// ParseStatusCode accepts an enumerated name or the "0x%08X" form produced by String.
func ParseStatusCode(s string) (StatusCode, bool) {
	if code, ok := statusByName[s]; ok {
		return code, true
	}
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		raw, err := strconv.ParseUint(s[2:], 16, 32)
		if err == nil {
			return StatusCode(raw), true
		}
	}
	return Bad, false
}

// StatusCodeFromName is the lenient form of ParseStatusCode: anything it
// cannot read becomes the generic Bad code.
func StatusCodeFromName(s string) StatusCode {
	code, _ := ParseStatusCode(s)
	return code
}

func (c StatusCode) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *StatusCode) UnmarshalText(text []byte) error {
	*c = StatusCodeFromName(string(text))
	return nil
}
