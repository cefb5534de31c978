package state

import (
	"encoding/json"
	"slices"

	"gopkg.in/yaml.v3"
)

// Flags is a partial key → bool map. Transition tests, change sets and
// description predicates are all Flags; an empty Flags matches anything.
type Flags[K Keyed] map[K]bool

// ItemMap is a partial map over items.
type ItemMap = Flags[ItemKey]

// StateMap is a partial map over world-state flags.
type StateMap = Flags[StateKey]

// Keys returns the keys of f in ascending order.
func (f Flags[K]) Keys() []K {
	keys := make([]K, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Clone returns a copy of f. A nil map clones to an empty one.
func (f Flags[K]) Clone() Flags[K] {
	out := make(Flags[K], len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// UnmarshalJSON decodes a JSON object keyed by decimal keys. A key given
// twice, under any spelling, is an ErrDuplicateKey.
func (f *Flags[K]) UnmarshalJSON(data []byte) error {
	m, err := decodeJSONObject[K, bool](data)
	if err != nil {
		return err
	}
	*f = m
	return nil
}

// UnmarshalYAML decodes a YAML mapping keyed by decimal keys.
func (f *Flags[K]) UnmarshalYAML(node *yaml.Node) error {
	m, err := decodeYAMLMapping[K, bool](node)
	if err != nil {
		return err
	}
	*f = m
	return nil
}

// layout maps a key to its slot in a Table. It is built once and shared by
// every clone of the table, so it must never be mutated.
type layout[K Keyed] struct {
	keys  []K
	index map[K]int
}

func newLayout[K Keyed](keys []K) *layout[K] {
	l := &layout[K]{
		keys:  keys,
		index: make(map[K]int, len(keys)),
	}
	for i, k := range keys {
		l.index[k] = i
	}
	return l
}

// Table is a closed-world map: its key set is fixed when it is created and
// every later read or write must name one of those keys. Values live in a
// dense slice indexed through a shared layout.
type Table[K Keyed] struct {
	layout *layout[K]
	vals   []bool
}

// NewTable creates a table holding exactly the keys of initial.
func NewTable[K Keyed](initial Flags[K]) Table[K] {
	keys := initial.Keys()
	t := Table[K]{
		layout: newLayout(keys),
		vals:   make([]bool, len(keys)),
	}
	for i, k := range keys {
		t.vals[i] = initial[k]
	}
	return t
}

func (t Table[K]) slot(k K) (int, bool) {
	if t.layout == nil {
		return 0, false
	}
	i, ok := t.layout.index[k]
	return i, ok
}

// Len returns the number of keys in the table.
func (t Table[K]) Len() int {
	return len(t.vals)
}

// Has reports whether k belongs to the table's key set.
func (t Table[K]) Has(k K) bool {
	_, ok := t.slot(k)
	return ok
}

// Keys returns the table's keys in ascending order.
func (t Table[K]) Keys() []K {
	if t.layout == nil {
		return nil
	}
	return slices.Clone(t.layout.keys)
}

// Get returns the value stored for k.
func (t Table[K]) Get(k K) (bool, error) {
	i, ok := t.slot(k)
	if !ok {
		return false, unknownKey(k)
	}
	return t.vals[i], nil
}

// Covers returns an UnknownKeyError for the lowest key of partial that is
// not part of the table.
func (t Table[K]) Covers(partial Flags[K]) error {
	for _, k := range partial.Keys() {
		if !t.Has(k) {
			return unknownKey(k)
		}
	}
	return nil
}

// Check reports whether every entry of subset agrees with the table. An
// empty subset is always satisfied.
func (t Table[K]) Check(subset Flags[K]) (bool, error) {
	if err := t.Covers(subset); err != nil {
		return false, err
	}
	for k, want := range subset {
		i, _ := t.slot(k)
		if t.vals[i] != want {
			return false, nil
		}
	}
	return true, nil
}

// Merge overwrites the entries named by changes. Keys not in changes are
// left alone. If any key is unknown nothing is written.
func (t Table[K]) Merge(changes Flags[K]) error {
	if err := t.Covers(changes); err != nil {
		return err
	}
	for k, v := range changes {
		i, _ := t.slot(k)
		t.vals[i] = v
	}
	return nil
}

// Each calls fn for every entry in ascending key order.
func (t Table[K]) Each(fn func(k K, v bool)) {
	if t.layout == nil {
		return
	}
	for i, k := range t.layout.keys {
		fn(k, t.vals[i])
	}
}

// Snapshot copies the table into a plain map.
func (t Table[K]) Snapshot() Flags[K] {
	out := make(Flags[K], t.Len())
	t.Each(func(k K, v bool) {
		out[k] = v
	})
	return out
}

// Clone returns an independent copy of the values that shares the layout.
func (t Table[K]) Clone() Table[K] {
	return Table[K]{
		layout: t.layout,
		vals:   slices.Clone(t.vals),
	}
}

// SameKeys reports whether both tables have the same key set.
func (t Table[K]) SameKeys(other Table[K]) bool {
	if t.layout == other.layout {
		return true
	}
	return slices.Equal(t.Keys(), other.Keys())
}

// Equal reports whether both tables hold the same keys and values.
func (t Table[K]) Equal(other Table[K]) bool {
	return t.SameKeys(other) && slices.Equal(t.vals, other.vals)
}

// MarshalJSON encodes the table as a plain key → bool object.
func (t Table[K]) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Snapshot())
}

// UnmarshalJSON replaces the table with one holding exactly the decoded keys.
func (t *Table[K]) UnmarshalJSON(data []byte) error {
	var f Flags[K]
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*t = NewTable(f)
	return nil
}
