package value

import "strings"

// MapEntry is one key/value pair of a MapVal, preserving insertion order.
type MapEntry struct {
	Key   Value
	Value Value
}

// MapVal is Ven's insertion-ordered map. Any Value may be a key (spec.md
// §3.2); equality and lookup use StableKey, resolving the Map-key-hashing
// Open Question in spec.md §9 toward structural hashing.
type MapVal struct {
	Entries []MapEntry
	index   map[string]int
}

func NewMap() *MapVal {
	return &MapVal{index: make(map[string]int)}
}

func (m *MapVal) Kind() Kind { return KindMap }

func (m *MapVal) String() string {
	var b strings.Builder
	b.WriteString("%[")
	for i, e := range m.Entries {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(e.Key.String())
		b.WriteString(": ")
		b.WriteString(e.Value.String())
	}
	b.WriteString("]")
	return b.String()
}

func (m *MapVal) Truthy() bool { return true }

func (m *MapVal) Eqv(o Value) bool {
	om, ok := o.(*MapVal)
	if !ok || len(om.Entries) != len(m.Entries) {
		return false
	}
	for _, e := range m.Entries {
		ov, ok := om.Get(e.Key)
		if !ok || !ov.Eqv(e.Value) {
			return false
		}
	}
	return true
}

// Set inserts or updates key, preserving original insertion position on
// update (map merge `%` right-biases the value but not position — spec.md
// §4.8).
func (m *MapVal) Set(key, val Value) {
	if m.index == nil {
		m.index = make(map[string]int)
	}
	k := StableKey(key)
	if i, ok := m.index[k]; ok {
		m.Entries[i].Value = val
		return
	}
	m.index[k] = len(m.Entries)
	m.Entries = append(m.Entries, MapEntry{Key: key, Value: val})
}

func (m *MapVal) Get(key Value) (Value, bool) {
	if m.index == nil {
		return nil, false
	}
	i, ok := m.index[StableKey(key)]
	if !ok {
		return nil, false
	}
	return m.Entries[i].Value, true
}

func (m *MapVal) Len() int { return len(m.Entries) }

// Merge returns a new map with other's entries applied on top of m's
// (right-biased), per `%` binary semantics (spec.md §4.8).
func (m *MapVal) Merge(other *MapVal) *MapVal {
	out := NewMap()
	for _, e := range m.Entries {
		out.Set(e.Key, e.Value)
	}
	for _, e := range other.Entries {
		out.Set(e.Key, e.Value)
	}
	return out
}
