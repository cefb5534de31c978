package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/adventure-engine/internal/storage"
	"github.com/jwebster45206/adventure-engine/pkg/state"
)

func runConsoleCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func seedSave(t *testing.T, addr string) uuid.UUID {
	t.Helper()
	store, err := storage.NewRedisStore(addr, time.Hour, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	id := uuid.New()
	require.NoError(t, store.SaveGame(context.Background(), &storage.SavedGame{
		ID:       id,
		Scenario: "cellar.yaml",
		State:    state.NewGameState(1, state.ItemMap{1: false}, state.StateMap{1: false}),
	}))
	return id
}

func TestSaves_ListAndDelete(t *testing.T) {
	mr := miniredis.RunT(t)
	t.Setenv("REDIS_URL", mr.Addr())

	out, err := runConsoleCmd(t, "saves", "list")
	require.NoError(t, err)
	assert.Equal(t, "No saved games.\n", out)

	id := seedSave(t, mr.Addr())

	out, err = runConsoleCmd(t, "saves", "list")
	require.NoError(t, err)
	assert.Equal(t, id.String()+"\n", out)

	out, err = runConsoleCmd(t, "saves", "delete", id.String())
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted "+id.String())

	out, err = runConsoleCmd(t, "saves", "list")
	require.NoError(t, err)
	assert.Equal(t, "No saved games.\n", out)
}

func TestSaves_RedisFlagOverridesEnv(t *testing.T) {
	mr := miniredis.RunT(t)
	t.Setenv("REDIS_URL", "")
	id := seedSave(t, mr.Addr())

	out, err := runConsoleCmd(t, "saves", "list", "--redis", "redis://"+mr.Addr())
	require.NoError(t, err)
	assert.Contains(t, out, id.String())
}

func TestSaves_Errors(t *testing.T) {
	t.Setenv("REDIS_URL", "")

	_, err := runConsoleCmd(t, "saves", "list")
	assert.ErrorIs(t, err, ErrNoSaveStore)

	_, err = runConsoleCmd(t, "saves", "delete", "not-a-uuid")
	assert.ErrorContains(t, err, "invalid save ID")
}

func TestStartSession(t *testing.T) {
	ctx := context.Background()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := storage.NewMemoryStore()

	ui := newTestUI(t)
	sc := ui.session.Game().Scenario()

	fresh, err := startSession(ctx, sc, store, "", log)
	require.NoError(t, err)
	require.NoError(t, fresh.Save(ctx))

	resumed, err := startSession(ctx, sc, store, fresh.ID.String(), log)
	require.NoError(t, err)
	assert.Equal(t, fresh.ID, resumed.ID)

	_, err = startSession(ctx, sc, store, "bogus", log)
	assert.ErrorContains(t, err, "invalid save ID")

	_, err = startSession(ctx, sc, store, uuid.NewString(), log)
	assert.ErrorIs(t, err, storage.ErrSaveNotFound)
}
