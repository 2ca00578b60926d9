package model

import (
	"strconv"
	"strings"

	"github.com/awcullen/opcua/ua"
	"github.com/cespare/xxhash/v2"
)

// QualifiedName is a browse name: a name qualified by a namespace index.
type QualifiedName struct {
	NamespaceIndex uint16
	Name           string
}

func NewQualifiedName(ns uint16, name string) QualifiedName {
	return QualifiedName{NamespaceIndex: ns, Name: name}
}

// ParseQualifiedName splits s on the first ':'. A missing or non-numeric
// prefix never fails: the whole string becomes the name in namespace 0.
func ParseQualifiedName(s string) QualifiedName {
	pos := strings.IndexByte(s, ':')
	if pos == -1 {
		return QualifiedName{Name: s}
	}
	ns, ok := parseNamespace(s[:pos])
	if !ok {
		return QualifiedName{Name: s}
	}
	return QualifiedName{NamespaceIndex: ns, Name: s[pos+1:]}
}

func parseNamespace(prefix string) (uint16, bool) {
	ns, err := strconv.ParseUint(prefix, 10, 16)
	if err != nil {
		return 0, false
	}
	return uint16(ns), true
}

// String renders "<ns>:<name>", or the bare name in namespace 0.
// A namespace-0 name that would itself parse as qualified keeps an
// explicit "0:" prefix so that parsing returns the same value.
func (q QualifiedName) String() string {
	if q.NamespaceIndex > 0 || q.ambiguous() {
		return strconv.FormatUint(uint64(q.NamespaceIndex), 10) + ":" + q.Name
	}
	return q.Name
}

func (q QualifiedName) ambiguous() bool {
	pos := strings.IndexByte(q.Name, ':')
	if pos == -1 {
		return false
	}
	_, ok := parseNamespace(q.Name[:pos])
	return ok
}

func (q QualifiedName) MarshalText() ([]byte, error) {
	return []byte(q.String()), nil
}

func (q *QualifiedName) UnmarshalText(text []byte) error {
	*q = ParseQualifiedName(string(text))
	return nil
}

func (q QualifiedName) Hash() uint64 {
	return xxhash.Sum64String(q.Name) ^ uint64(q.NamespaceIndex)
}

func (q QualifiedName) ToUA() ua.QualifiedName {
	return ua.NewQualifiedName(q.NamespaceIndex, q.Name)
}

func QualifiedNameFromUA(q ua.QualifiedName) QualifiedName {
	return QualifiedName{NamespaceIndex: q.NamespaceIndex, Name: q.Name}
}

// ReduceBrowsePath concatenates each element's canonical form followed by "/".
func ReduceBrowsePath(path []QualifiedName) string {
	var sb strings.Builder
	for _, name := range path {
		sb.WriteString(name.String())
		sb.WriteByte('/')
	}
	return sb.String()
}
