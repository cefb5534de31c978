package state

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const (
	hasLight  StateKey = 1
	doorOpen  StateKey = 2
	trollDead StateKey = 3
)

func newWorld() Table[StateKey] {
	return NewTable(StateMap{hasLight: false, doorOpen: true, trollDead: false})
}

func TestTable_Check(t *testing.T) {
	tests := []struct {
		name     string
		subset   StateMap
		expected bool
	}{
		{name: "empty subset matches", subset: StateMap{}, expected: true},
		{name: "nil subset matches", subset: nil, expected: true},
		{name: "single matching entry", subset: StateMap{doorOpen: true}, expected: true},
		{name: "single mismatching entry", subset: StateMap{doorOpen: false}, expected: false},
		{name: "all entries match", subset: StateMap{hasLight: false, doorOpen: true, trollDead: false}, expected: true},
		{name: "one of several mismatches", subset: StateMap{hasLight: false, trollDead: true}, expected: false},
	}

	world := newWorld()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := world.Check(tt.subset)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ok)
		})
	}
}

func TestTable_UnknownKey(t *testing.T) {
	world := newWorld()

	_, err := world.Get(99)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownKey))

	var uk *UnknownKeyError
	require.True(t, errors.As(err, &uk))
	assert.Equal(t, "state", uk.Domain)
	assert.Equal(t, Key(99), uk.Key)

	_, err = world.Check(StateMap{doorOpen: true, 99: true})
	assert.ErrorIs(t, err, ErrUnknownKey)
}

func TestTable_UnknownKeyIsReportedBeforeMismatch(t *testing.T) {
	world := newWorld()
	// doorOpen mismatches, but the unknown key must still be reported.
	for i := 0; i < 20; i++ {
		ok, err := world.Check(StateMap{doorOpen: false, 42: true})
		assert.False(t, ok)
		assert.ErrorIs(t, err, ErrUnknownKey)
	}
}

func TestTable_Merge(t *testing.T) {
	world := newWorld()

	require.NoError(t, world.Merge(StateMap{hasLight: true}))

	v, err := world.Get(hasLight)
	require.NoError(t, err)
	assert.True(t, v)

	// untouched keys keep their values
	v, _ = world.Get(doorOpen)
	assert.True(t, v)
	v, _ = world.Get(trollDead)
	assert.False(t, v)
}

func TestTable_MergeIsIdempotent(t *testing.T) {
	changes := StateMap{hasLight: true, doorOpen: false}

	once := newWorld()
	require.NoError(t, once.Merge(changes))

	twice := newWorld()
	require.NoError(t, twice.Merge(changes))
	require.NoError(t, twice.Merge(changes))

	assert.True(t, once.Equal(twice))
}

func TestTable_MergeUnknownKeyWritesNothing(t *testing.T) {
	world := newWorld()
	before := world.Clone()

	err := world.Merge(StateMap{hasLight: true, doorOpen: false, 7: true})
	assert.ErrorIs(t, err, ErrUnknownKey)
	assert.True(t, world.Equal(before), "a failed merge must leave the table unchanged")
}

func TestTable_KeySetIsFixed(t *testing.T) {
	world := newWorld()
	require.NoError(t, world.Merge(StateMap{trollDead: true}))
	assert.Equal(t, 3, world.Len())
	assert.Equal(t, []StateKey{hasLight, doorOpen, trollDead}, world.Keys())
	assert.False(t, world.Has(4))
}

func TestTable_CloneIsIndependent(t *testing.T) {
	world := newWorld()
	clone := world.Clone()

	require.NoError(t, clone.Merge(StateMap{hasLight: true}))

	v, _ := world.Get(hasLight)
	assert.False(t, v, "original must not see writes to the clone")
	assert.True(t, world.SameKeys(clone))
	assert.False(t, world.Equal(clone))
}

func TestTable_EachIsOrdered(t *testing.T) {
	table := NewTable(StateMap{30: true, 10: false, 20: true})

	var keys []StateKey
	table.Each(func(k StateKey, _ bool) {
		keys = append(keys, k)
	})
	assert.Equal(t, []StateKey{10, 20, 30}, keys)
}

func TestTable_ZeroValue(t *testing.T) {
	var table Table[ItemKey]
	assert.Equal(t, 0, table.Len())
	assert.False(t, table.Has(1))

	ok, err := table.Check(nil)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = table.Check(ItemMap{1: true})
	var uk *UnknownKeyError
	require.ErrorAs(t, err, &uk)
	assert.Equal(t, "item", uk.Domain)
}

func TestTable_JSON(t *testing.T) {
	world := newWorld()

	data, err := json.Marshal(world)
	require.NoError(t, err)
	assert.JSONEq(t, `{"1":false,"2":true,"3":false}`, string(data))

	var decoded Table[StateKey]
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, world.Equal(decoded))
}

func TestFlags_KeysAndClone(t *testing.T) {
	f := ItemMap{5: true, 1: false, 3: true}
	assert.Equal(t, []ItemKey{1, 3, 5}, f.Keys())

	c := f.Clone()
	c[1] = true
	assert.False(t, f[1])

	var empty ItemMap
	assert.NotNil(t, empty.Clone())
	assert.Empty(t, empty.Keys())
}

func TestFlags_Decode(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		var f StateMap
		require.NoError(t, json.Unmarshal([]byte(`{"1": true, "02": false}`), &f))
		assert.Equal(t, StateMap{hasLight: true, doorOpen: false}, f)
	})

	t.Run("yaml", func(t *testing.T) {
		var f StateMap
		require.NoError(t, yaml.Unmarshal([]byte("1: true\n02: false\n"), &f))
		assert.Equal(t, StateMap{hasLight: true, doorOpen: false}, f)
	})

	t.Run("null", func(t *testing.T) {
		var f StateMap
		require.NoError(t, json.Unmarshal([]byte(`null`), &f))
		assert.Nil(t, f)
	})
}

func TestFlags_DecodeRejectsDuplicateKeys(t *testing.T) {
	tests := []struct {
		name   string
		decode func(*ItemMap) error
	}{
		{
			name:   "json spellings",
			decode: func(f *ItemMap) error { return json.Unmarshal([]byte(`{"1": true, "01": false}`), f) },
		},
		{
			name:   "json repeated",
			decode: func(f *ItemMap) error { return json.Unmarshal([]byte(`{"4": true, "4": true}`), f) },
		},
		{
			name:   "yaml spellings",
			decode: func(f *ItemMap) error { return yaml.Unmarshal([]byte("1: true\n\"001\": false\n"), f) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f ItemMap
			err := tt.decode(&f)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrDuplicateKey)
			assert.Contains(t, err.Error(), "item key")
		})
	}
}

func TestFlags_DecodeRejectsBadKeys(t *testing.T) {
	for _, doc := range []string{`{"-1": true}`, `{"light": true}`, `{"4294967296": true}`, `[1, 2]`} {
		var f StateMap
		assert.Error(t, json.Unmarshal([]byte(doc), &f), doc)
	}
}

func TestCatalog_Decode(t *testing.T) {
	var c Catalog[LocationKey, string]
	require.NoError(t, json.Unmarshal([]byte(`{"1": "hall", "2": "yard"}`), &c))
	assert.Equal(t, Catalog[LocationKey, string]{1: "hall", 2: "yard"}, c)

	err := yaml.Unmarshal([]byte("1: hall\n01: yard\n"), &c)
	assert.ErrorIs(t, err, ErrDuplicateKey)
	assert.Contains(t, err.Error(), "location key 1")
}
