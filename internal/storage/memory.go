package storage

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps saved games in process memory. It is used when no
// Redis URL is configured, and in tests.
type MemoryStore struct {
	mu        sync.RWMutex
	games     map[uuid.UUID]*SavedGame
	pingError error
}

// Ensure MemoryStore implements Store interface
var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		games: make(map[uuid.UUID]*SavedGame),
	}
}

// SetPingError configures ping to fail with the given error
func (m *MemoryStore) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = err
}

func (m *MemoryStore) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pingError
}

func (m *MemoryStore) Close() error {
	return nil
}

func (m *MemoryStore) SaveGame(ctx context.Context, game *SavedGame) error {
	if game == nil || game.State == nil {
		return errors.New("saved game and its state cannot be nil")
	}
	game.UpdatedAt = time.Now()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.games[game.ID] = copySave(game)
	return nil
}

func (m *MemoryStore) LoadGame(ctx context.Context, id uuid.UUID) (*SavedGame, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	game, exists := m.games[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrSaveNotFound, id)
	}
	return copySave(game), nil
}

func (m *MemoryStore) DeleteGame(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.games, id)
	return nil
}

func (m *MemoryStore) ListGames(ctx context.Context) ([]uuid.UUID, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]uuid.UUID, 0, len(m.games))
	for id := range m.games {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, compareIDs)
	return ids, nil
}

func copySave(game *SavedGame) *SavedGame {
	out := *game
	out.State = game.State.Clone()
	return &out
}
