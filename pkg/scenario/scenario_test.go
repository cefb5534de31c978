package scenario

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/adventure-engine/pkg/state"
)

func loadCellar(t *testing.T) *Scenario {
	t.Helper()
	s, err := LoadFile(filepath.Join("testdata", "cellar.yaml"))
	require.NoError(t, err)
	return s
}

func TestLoadFile_YAMLAndJSONAgree(t *testing.T) {
	fromYAML, err := LoadFile(filepath.Join("testdata", "cellar.yaml"))
	require.NoError(t, err)
	fromJSON, err := LoadFile(filepath.Join("testdata", "cellar.json"))
	require.NoError(t, err)

	assert.Equal(t, "cellar.yaml", fromYAML.FileName)
	assert.Equal(t, "cellar.json", fromJSON.FileName)

	fromJSON.FileName = fromYAML.FileName
	assert.Equal(t, fromYAML, fromJSON)
}

func TestLoadFile_Contents(t *testing.T) {
	s := loadCellar(t)

	assert.Equal(t, "The Cellar", s.Name)
	assert.Equal(t, state.LocationKey(1), s.Start.Location)
	assert.Equal(t, state.ItemMap{1: false, 2: false}, s.Start.Inventory)
	assert.Equal(t, state.StateMap{1: false, 2: false}, s.Start.WorldState)

	name, ok := s.ItemName(1)
	require.True(t, ok)
	assert.Equal(t, "iron key", name)
	_, ok = s.ItemName(3)
	assert.False(t, ok)

	require.Len(t, s.Transitions, 6)
	open := s.Transitions[3]
	assert.Equal(t, "open door", open.Cmd)
	to, moves := open.MovesTo()
	require.True(t, moves)
	assert.Equal(t, state.LocationKey(2), to)

	_, moves = s.Transitions[0].MovesTo()
	assert.False(t, moves)

	cellar, ok := s.Location(1)
	require.True(t, ok)
	require.Len(t, cellar.Descriptions, 2)
	assert.True(t, cellar.Descriptions[1].IsCatchAll())
}

func TestLoad_RejectsUnknownFields(t *testing.T) {
	_, err := LoadFile(filepath.Join("testdata", "unknown_field.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bogus")

	_, err = Load(strings.NewReader(`{"name": "x", "surprise": 1}`), FormatJSON)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "surprise")
}

func TestLoad_RejectsDuplicateKeys(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		doc    string
	}{
		{
			name:   "json items",
			format: FormatJSON,
			doc:    `{"name": "x", "items": {"1": {"name": "a"}, "01": {"name": "b"}}}`,
		},
		{
			name:   "json world state",
			format: FormatJSON,
			doc:    `{"name": "x", "start": {"location": 1, "world_state": {"2": true, "002": false}}}`,
		},
		{
			name:   "yaml items",
			format: FormatYAML,
			doc:    "name: x\nitems:\n  \"1\": {name: a}\n  \"01\": {name: b}\n",
		},
		{
			name:   "yaml locations",
			format: FormatYAML,
			doc:    "name: x\nlocations:\n  1: {name: a}\n  01: {name: b}\n",
		},
		{
			name:   "yaml start inventory",
			format: FormatYAML,
			doc:    "name: x\nstart:\n  location: 1\n  inventory: {1: true, 01: false}\n",
		},
		{
			name:   "yaml description state",
			format: FormatYAML,
			doc:    "name: x\nlocations:\n  1:\n    name: a\n    descriptions:\n      - state: {3: true, 3: false}\n        short: s\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.doc), tt.format)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidScenario)
			assert.ErrorIs(t, err, state.ErrDuplicateKey)
		})
	}
}

func TestLoad_KeyedMaps(t *testing.T) {
	t.Run("leading zeros name the same key", func(t *testing.T) {
		s, err := Load(strings.NewReader("name: x\nitems:\n  007: {name: bond}\n"), FormatYAML)
		require.NoError(t, err)
		item, ok := s.Item(7)
		require.True(t, ok)
		assert.Equal(t, "bond", item.Name)
	})

	t.Run("unknown fields inside items", func(t *testing.T) {
		_, err := Load(strings.NewReader("name: x\nitems:\n  1: {name: a, colour: red}\n"), FormatYAML)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "colour")

		_, err = Load(strings.NewReader(`{"items": {"1": {"name": "a", "colour": "red"}}}`), FormatJSON)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "colour")
	})

	t.Run("keys must be numbers", func(t *testing.T) {
		_, err := Load(strings.NewReader(`{"items": {"key": {"name": "a"}}}`), FormatJSON)
		require.Error(t, err)
		assert.Contains(t, err.Error(), `invalid item key "key"`)
	})
}

func TestLoad_UnsupportedFormat(t *testing.T) {
	_, err := Load(strings.NewReader(""), Format("toml"))
	assert.Error(t, err)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scenario not found")
}

func TestLoadFile_KeepsDeclaredFileName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tiny.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"name": "tiny", "file_name": "custom.json"}`), 0o644))

	s, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "custom.json", s.FileName)
}

func TestFormatFor(t *testing.T) {
	tests := []struct {
		path     string
		expected Format
		wantErr  bool
	}{
		{path: "a.json", expected: FormatJSON},
		{path: "a.YAML", expected: FormatYAML},
		{path: "dir/a.yml", expected: FormatYAML},
		{path: "a.txt", wantErr: true},
		{path: "noext", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			f, err := FormatFor(tt.path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, f)
		})
	}
}

func TestScenario_NewGameState(t *testing.T) {
	s := loadCellar(t)
	gs := s.NewGameState()

	assert.Equal(t, state.LocationKey(1), gs.CurrentLocation)
	assert.Empty(t, gs.Inventory.Held())
	assert.Equal(t, 2, gs.WorldState.Len())

	// each call yields an independent state
	other := s.NewGameState()
	require.NoError(t, other.Inventory.MergeChanges(state.ItemMap{1: true}))
	assert.Empty(t, gs.Inventory.Held())
}

func TestNormalizeCommand(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{in: "take key", expected: "take key"},
		{in: "  Take   KEY ", expected: "take key"},
		{in: "OPEN\tdoor", expected: "open door"},
		{in: "STRASSE", expected: "strasse"},
		{in: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeCommand(tt.in))
		})
	}
}
