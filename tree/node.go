package tree

import (
	"strconv"
	"strings"
)

//go:generate go tool stringer -type=Kind,ScalarKind -output=kind_string.go

// Kind is the structural kind of a Node.
type Kind int

const (
	KindNull Kind = iota
	KindScalar
	KindSequence
	KindMapping
)

// ScalarKind tells which Go value a Scalar carries.
type ScalarKind int

const (
	ScalarText  ScalarKind = iota // string
	ScalarBool                    // bool
	ScalarInt                     // int64
	ScalarFloat                   // float64
)

// Node is an immutable element of the tree. The concrete types are Null,
// Scalar, Sequence and Mapping.
type Node interface {
	Kind() Kind
	// Interface returns the plain Go value of the node: nil, bool, int64,
	// float64, string, []any or map[string]any.
	Interface() any
	String() string
}

// OrNull replaces a nil node with Null.
func OrNull(n Node) Node {
	if n == nil {
		return Null{}
	}

	return n
}

// IsNull reports whether n is nil or Null.
func IsNull(n Node) bool {
	return n == nil || n.Kind() == KindNull
}

type Null struct{}

func (Null) Kind() Kind     { return KindNull }
func (Null) Interface() any { return nil }
func (Null) String() string { return "null" }

type Scalar struct {
	kind  ScalarKind
	value any
}

func Bool(b bool) Scalar     { return Scalar{kind: ScalarBool, value: b} }
func Int(i int64) Scalar     { return Scalar{kind: ScalarInt, value: i} }
func Float(f float64) Scalar { return Scalar{kind: ScalarFloat, value: f} }
func Text(s string) Scalar   { return Scalar{kind: ScalarText, value: s} }

func (s Scalar) Kind() Kind     { return KindScalar }
func (s Scalar) Interface() any { return s.Value() }

// ScalarKind returns the kind of the carried value.
func (s Scalar) ScalarKind() ScalarKind { return s.kind }

// Value returns the carried bool, int64, float64 or string. The zero Scalar
// carries an empty text.
func (s Scalar) Value() any {
	if s.value == nil {
		return ""
	}

	return s.value
}

// Text renders the scalar as text: decimal numbers, true/false for booleans.
func (s Scalar) Text() string {
	switch v := s.value.(type) {
	case bool:
		return strconv.FormatBool(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case string:
		return v
	default:
		return ""
	}
}

func (s Scalar) String() string {
	if s.kind == ScalarText {
		return strconv.Quote(s.Text())
	}

	return s.Text()
}

type Sequence struct {
	items []Node
}

// Seq builds a sequence; nil items become Null.
func Seq(items ...Node) Sequence {
	out := make([]Node, len(items))
	for i, item := range items {
		out[i] = OrNull(item)
	}

	return Sequence{items: out}
}

func (s Sequence) Kind() Kind { return KindSequence }
func (s Sequence) Len() int   { return len(s.items) }

// At returns the i-th item.
func (s Sequence) At(i int) Node { return s.items[i] }

// Items returns a copy of the items.
func (s Sequence) Items() []Node {
	return append([]Node(nil), s.items...)
}

func (s Sequence) Interface() any {
	out := make([]any, len(s.items))
	for i, item := range s.items {
		out[i] = item.Interface()
	}

	return out
}

func (s Sequence) String() string {
	parts := make([]string, len(s.items))
	for i, item := range s.items {
		parts[i] = item.String()
	}

	return "[" + strings.Join(parts, ", ") + "]"
}

// Entry is a key/value pair of a Mapping.
type Entry struct {
	Key   string
	Value Node
}

// Pair builds an Entry; a nil value becomes Null.
func Pair(key string, value Node) Entry {
	return Entry{Key: key, Value: OrNull(value)}
}

type Mapping struct {
	entries []Entry
	index   map[string]int
}

// Map builds a mapping preserving the order of entries. A repeated key keeps
// its first position and takes the last value.
func Map(entries ...Entry) Mapping {
	m := Mapping{
		entries: make([]Entry, 0, len(entries)),
		index:   make(map[string]int, len(entries)),
	}

	for _, e := range entries {
		e.Value = OrNull(e.Value)

		if i, ok := m.index[e.Key]; ok {
			m.entries[i].Value = e.Value
			continue
		}

		m.index[e.Key] = len(m.entries)
		m.entries = append(m.entries, e)
	}

	return m
}

func (m Mapping) Kind() Kind { return KindMapping }
func (m Mapping) Len() int   { return len(m.entries) }

// Get returns the value stored under key.
func (m Mapping) Get(key string) (Node, bool) {
	i, ok := m.index[key]
	if !ok {
		return nil, false
	}

	return m.entries[i].Value, true
}

// Entries returns a copy of the entries in order.
func (m Mapping) Entries() []Entry {
	return append([]Entry(nil), m.entries...)
}

// Keys returns the keys in order.
func (m Mapping) Keys() []string {
	keys := make([]string, len(m.entries))
	for i, e := range m.entries {
		keys[i] = e.Key
	}

	return keys
}

// With returns a copy of m with key set to value.
func (m Mapping) With(key string, value Node) Mapping {
	return Map(append(m.Entries(), Pair(key, value))...)
}

// Interface returns a map[string]any; the order of the entries is lost.
func (m Mapping) Interface() any {
	out := make(map[string]any, len(m.entries))
	for _, e := range m.entries {
		out[e.Key] = e.Value.Interface()
	}

	return out
}

func (m Mapping) String() string {
	parts := make([]string, len(m.entries))
	for i, e := range m.entries {
		parts[i] = strconv.Quote(e.Key) + ": " + e.Value.String()
	}

	return "{" + strings.Join(parts, ", ") + "}"
}
