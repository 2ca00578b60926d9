package model

import (
	"fmt"
	"strings"

	"github.com/awcullen/opcua/ua"
)

// ChangeVerb describes what happened to the affected node. Verbs combine with |.
type ChangeVerb uint8

const (
	NodeAdded        ChangeVerb = 1
	NodeDeleted      ChangeVerb = 2
	ReferenceAdded   ChangeVerb = 4
	ReferenceDeleted ChangeVerb = 8
	DataTypeChanged  ChangeVerb = 16
)

var changeVerbNames = [...]string{"NodeAdded", "NodeDeleted", "ReferenceAdded", "ReferenceDeleted", "DataTypeChanged"}

func (v ChangeVerb) Has(bits ChangeVerb) bool { return v&bits == bits }

func (v ChangeVerb) String() string {
	var names []string
	for i, name := range changeVerbNames {
		if v&(1<<i) != 0 {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return fmt.Sprintf("ChangeVerb(%d)", uint8(v))
	}
	return strings.Join(names, "|")
}

// ChangeStructure records one structural mutation of the address space.
type ChangeStructure struct {
	Affected     string
	AffectedType string
	Verb         ChangeVerb
}

func NewChangeStructure(affected, affectedType NodeID, verb ChangeVerb) ChangeStructure {
	return ChangeStructure{
		Affected:     affected.String(),
		AffectedType: affectedType.String(),
		Verb:         verb,
	}
}

// Equal compares the identifiers case-insensitively and the verb mask exactly.
func (c ChangeStructure) Equal(other ChangeStructure) bool {
	return strings.EqualFold(c.Affected, other.Affected) &&
		strings.EqualFold(c.AffectedType, other.AffectedType) &&
		c.Verb == other.Verb
}

// ToUA converts to ModelChangeStructureDataType. Identifiers that do not
// parse travel as the null node id.
func (c ChangeStructure) ToUA() ua.ModelChangeStructureDataType {
	return ua.ModelChangeStructureDataType{
		Affected:     parseOrNull(c.Affected),
		AffectedType: parseOrNull(c.AffectedType),
		Verb:         uint8(c.Verb),
	}
}

func ChangeStructureFromUA(c ua.ModelChangeStructureDataType) ChangeStructure {
	return ChangeStructure{
		Affected:     NodeIDFromUA(c.Affected).String(),
		AffectedType: NodeIDFromUA(c.AffectedType).String(),
		Verb:         ChangeVerb(c.Verb),
	}
}

func parseOrNull(s string) ua.NodeID {
	if id := ua.ParseNodeID(s); id != nil {
		return id
	}
	return NullNodeID.ToUA()
}

func (c ChangeStructure) String() string {
	return fmt.Sprintf("%s %s (%s)", c.Verb, c.Affected, c.AffectedType)
}

// ChangeBatch accumulates notifications in order of occurrence.
// Identical entries are kept: each one is a separate protocol event.
type ChangeBatch struct {
	changes []ChangeStructure
}

func (b *ChangeBatch) Add(c ChangeStructure) {
	b.changes = append(b.changes, c)
}

func (b *ChangeBatch) Len() int {
	return len(b.changes)
}

// Changes returns a copy of the accumulated notifications.
func (b *ChangeBatch) Changes() []ChangeStructure {
	out := make([]ChangeStructure, len(b.changes))
	copy(out, b.changes)
	return out
}

// Take hands over the accumulated notifications and empties the batch.
func (b *ChangeBatch) Take() []ChangeStructure {
	out := b.changes
	b.changes = nil
	return out
}
