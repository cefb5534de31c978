package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/adventure-engine/pkg/state"
)

// ErrSaveNotFound is returned when no saved game exists for an ID.
var ErrSaveNotFound = errors.New("saved game not found")

// SavedGame is a game state plus what is needed to resume it.
type SavedGame struct {
	ID        uuid.UUID        `json:"id"`
	Scenario  string           `json:"scenario"` // scenario file name
	State     *state.GameState `json:"state"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// Store persists saved games.
type Store interface {
	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error

	SaveGame(ctx context.Context, game *SavedGame) error
	LoadGame(ctx context.Context, id uuid.UUID) (*SavedGame, error)
	DeleteGame(ctx context.Context, id uuid.UUID) error
	ListGames(ctx context.Context) ([]uuid.UUID, error)
}
