package model

import "strings"

// AccessLevel gates reads, writes and history access on a variable value.
// The layout is identical to the AccessLevel attribute byte on the wire.
type AccessLevel uint8

const (
	AccessLevelRead AccessLevel = 1 << iota
	AccessLevelWrite
	AccessLevelHistoryRead
	AccessLevelHistoryWrite
	AccessLevelSemanticChange
	AccessLevelStatusWrite
	AccessLevelTimestampWrite
)

// DefaultAccessLevel is read only.
const DefaultAccessLevel = AccessLevelRead

var accessLevelNames = [...]string{
	"Read",
	"Write",
	"HistoryRead",
	"HistoryWrite",
	"SemanticChange",
	"StatusWrite",
	"TimestampWrite",
}

func AccessLevelFromRaw(raw uint8) AccessLevel { return AccessLevel(raw) }

func (a AccessLevel) Raw() uint8 { return uint8(a) }

// ToUA returns the attribute byte, see ua.AccessLevelsCurrentRead and friends.
func (a AccessLevel) ToUA() byte { return byte(a) }

func (a AccessLevel) Has(bits AccessLevel) bool { return a&bits == bits }

func (a AccessLevel) With(bits AccessLevel) AccessLevel { return a | bits }

func (a AccessLevel) Without(bits AccessLevel) AccessLevel { return a &^ bits }

func (a AccessLevel) Set(bits AccessLevel, on bool) AccessLevel {
	if on {
		return a.With(bits)
	}
	return a.Without(bits)
}

func (a AccessLevel) CanRead() bool  { return a.Has(AccessLevelRead) }
func (a AccessLevel) CanWrite() bool { return a.Has(AccessLevelWrite) }

func (a AccessLevel) Names() []string {
	var names []string
	for i, name := range accessLevelNames {
		if a&(1<<i) != 0 {
			names = append(names, name)
		}
	}
	return names
}

func (a AccessLevel) String() string {
	names := a.Names()
	if len(names) == 0 {
		return "None"
	}
	return strings.Join(names, "|")
}
