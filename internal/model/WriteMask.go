package model

import "strings"

// WriteMask selects which node attributes clients may write.
// Bit positions are fixed by the protocol, bit 0 is AccessLevel.
type WriteMask uint32

const (
	WriteMaskAccessLevel WriteMask = 1 << iota
	WriteMaskArrayDimensions
	WriteMaskBrowseName
	WriteMaskContainsNoLoops
	WriteMaskDataType
	WriteMaskDescription
	WriteMaskDisplayName
	WriteMaskEventNotifier
	WriteMaskExecutable
	WriteMaskHistorizing
	WriteMaskInverseName
	WriteMaskIsAbstract
	WriteMaskMinimumSamplingInterval
	WriteMaskNodeClass
	WriteMaskNodeId
	WriteMaskSymmetric
	WriteMaskUserAccessLevel
	WriteMaskUserExecutable
	WriteMaskUserWriteMask
	WriteMaskValueRank
	WriteMaskWriteMask
	WriteMaskValueForVariableType
)

// DefaultWriteMask leaves every attribute writable.
const DefaultWriteMask WriteMask = 0xFFFFFFFF

var writeMaskNames = [...]string{
	"AccessLevel",
	"ArrayDimensions",
	"BrowseName",
	"ContainsNoLoops",
	"DataType",
	"Description",
	"DisplayName",
	"EventNotifier",
	"Executable",
	"Historizing",
	"InverseName",
	"IsAbstract",
	"MinimumSamplingInterval",
	"NodeClass",
	"NodeId",
	"Symmetric",
	"UserAccessLevel",
	"UserExecutable",
	"UserWriteMask",
	"ValueRank",
	"WriteMask",
	"ValueForVariableType",
}

func WriteMaskFromRaw(raw uint32) WriteMask { return WriteMask(raw) }

func (m WriteMask) Raw() uint32 { return uint32(m) }

// Has reports whether every bit of bits is set.
func (m WriteMask) Has(bits WriteMask) bool { return m&bits == bits }

func (m WriteMask) With(bits WriteMask) WriteMask { return m | bits }

func (m WriteMask) Without(bits WriteMask) WriteMask { return m &^ bits }

func (m WriteMask) Set(bits WriteMask, on bool) WriteMask {
	if on {
		return m.With(bits)
	}
	return m.Without(bits)
}

// Names lists the named bits that are set, in bit order.
func (m WriteMask) Names() []string {
	var names []string
	for i, name := range writeMaskNames {
		if m&(1<<i) != 0 {
			names = append(names, name)
		}
	}
	return names
}

func (m WriteMask) String() string {
	names := m.Names()
	if len(names) == 0 {
		return "None"
	}
	return strings.Join(names, "|")
}
