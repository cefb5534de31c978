package runner

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/adventure-engine/internal/handlers"
	"github.com/jwebster45206/adventure-engine/internal/storage"
	"github.com/jwebster45206/adventure-engine/pkg/scenario"
	"github.com/jwebster45206/adventure-engine/pkg/state"
)

const casesDir = "../cases"

func newTestServer(t *testing.T) (*httptest.Server, *storage.MemoryStore) {
	t.Helper()
	sc, err := scenario.LoadFile("../../pkg/scenario/testdata/cellar.yaml")
	require.NoError(t, err)

	store := storage.NewMemoryStore()
	srv := httptest.NewServer(handlers.NewRouter(sc, store, slog.New(slog.NewTextHandler(io.Discard, nil))))
	t.Cleanup(srv.Close)
	return srv, store
}

func TestRunner_Cases(t *testing.T) {
	srv, store := newTestServer(t)
	r := NewRunner(srv.URL + "/")

	jobs, err := LoadTestSuiteWithExpansion(filepath.Join(casesDir, "all.yaml"), casesDir)
	require.NoError(t, err)
	require.Len(t, jobs, 2)

	for _, job := range jobs {
		t.Run(job.Name, func(t *testing.T) {
			result, err := r.RunSuite(context.Background(), job.Suite)
			require.NoError(t, err)
			assert.Len(t, result.Results, len(job.Suite.Steps))
			for _, step := range result.Results {
				assert.True(t, step.Success, step.StepName)
			}
		})
	}

	ids, err := store.ListGames(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ids, "games are deleted after each suite")
}

func TestRunner_FailingStep(t *testing.T) {
	srv, _ := newTestServer(t)
	r := NewRunner(srv.URL)
	r.ErrorHandlingMode = ErrorHandlingExit

	wrong := state.LocationKey(2)
	suite := TestSuite{
		Name: "wrong location",
		Steps: []TestStep{
			{Name: "take key", Input: "take key", Expectations: Expectations{Location: &wrong}},
			{Name: "never runs", Input: "look"},
		},
	}

	result, err := r.RunSuite(context.Background(), suite)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected location 2, got 1")
	assert.Len(t, result.Results, 1)
}

func TestRunner_BadSeed(t *testing.T) {
	srv, _ := newTestServer(t)
	r := NewRunner(srv.URL)

	_, err := r.RunSuite(context.Background(), TestSuite{
		Name: "bad seed",
		Seed: &SeedState{Location: 1, Inventory: []state.ItemKey{7}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown item key 7")
}

func TestLoadTestSuite_UnknownField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: x\nstepz: []\n"), 0o644))

	_, err := LoadTestSuite(path)
	assert.Error(t, err)
}

func TestCheckExpectations(t *testing.T) {
	gs := state.NewGameState(1, state.ItemMap{1: true, 2: false}, state.StateMap{1: true})
	resp := &handlers.GameResponse{Text: "Done.", State: gs}

	yes := true
	done := "Done."
	tests := []struct {
		name string
		exp  Expectations
		ok   bool
	}{
		{name: "empty", exp: Expectations{}, ok: true},
		{name: "inventory", exp: Expectations{Inventory: []state.ItemKey{1}}, ok: true},
		{name: "inventory mismatch", exp: Expectations{Inventory: []state.ItemKey{}}},
		{name: "world", exp: Expectations{WorldState: state.StateMap{1: true}}, ok: true},
		{name: "unknown flag", exp: Expectations{WorldState: state.StateMap{5: true}}},
		{name: "moved", exp: Expectations{Moved: &yes}},
		{name: "exact text", exp: Expectations{Response: &done}, ok: true},
		{name: "contains", exp: Expectations{ResponseContains: []string{"DONE"}}, ok: true},
		{name: "not contains", exp: Expectations{ResponseNotContains: []string{"done"}}},
		{name: "regex", exp: Expectations{ResponseRegex: `^Do`}, ok: true},
		{name: "bad regex", exp: Expectations{ResponseRegex: `(`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkExpectations(tt.exp, resp)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
