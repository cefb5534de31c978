package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const saveKeyPrefix = "savegame:"

func saveKey(id uuid.UUID) string {
	return saveKeyPrefix + id.String()
}

// Saved game operations (Redis-backed)

func (r *RedisStore) SaveGame(ctx context.Context, game *SavedGame) error {
	if game == nil || game.State == nil {
		return errors.New("saved game and its state cannot be nil")
	}
	game.UpdatedAt = time.Now()

	data, err := json.Marshal(game)
	if err != nil {
		r.logger.Error("Failed to marshal saved game", "uuid", game.ID, "error", err)
		return fmt.Errorf("failed to marshal saved game: %w", err)
	}

	if err := r.client.Set(ctx, saveKey(game.ID), data, r.ttl).Err(); err != nil {
		r.logger.Error("Failed to save game", "uuid", game.ID, "error", err)
		return fmt.Errorf("failed to save game: %w", err)
	}

	r.logger.Debug("Game saved", "uuid", game.ID, "bytes", len(data))
	return nil
}

func (r *RedisStore) LoadGame(ctx context.Context, id uuid.UUID) (*SavedGame, error) {
	data, err := r.client.Get(ctx, saveKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			r.logger.Warn("Saved game not found", "uuid", id)
			return nil, fmt.Errorf("%w: %s", ErrSaveNotFound, id)
		}
		r.logger.Error("Failed to load game", "uuid", id, "error", err)
		return nil, fmt.Errorf("failed to load game: %w", err)
	}

	var game SavedGame
	if err := json.Unmarshal(data, &game); err != nil {
		r.logger.Error("Failed to unmarshal saved game", "uuid", id, "error", err)
		return nil, fmt.Errorf("failed to unmarshal saved game: %w", err)
	}
	if game.State == nil {
		return nil, fmt.Errorf("saved game %s has no state", id)
	}

	return &game, nil
}

func (r *RedisStore) DeleteGame(ctx context.Context, id uuid.UUID) error {
	if err := r.client.Del(ctx, saveKey(id)).Err(); err != nil {
		r.logger.Error("Failed to delete saved game", "uuid", id, "error", err)
		return fmt.Errorf("failed to delete saved game: %w", err)
	}
	return nil
}

// ListGames returns the IDs of all saved games, sorted.
func (r *RedisStore) ListGames(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	iter := r.client.Scan(ctx, 0, saveKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		id, err := uuid.Parse(strings.TrimPrefix(iter.Val(), saveKeyPrefix))
		if err != nil {
			r.logger.Warn("Skipping malformed save key", "key", iter.Val())
			continue
		}
		ids = append(ids, id)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to list saved games: %w", err)
	}

	slices.SortFunc(ids, compareIDs)
	return ids, nil
}

func compareIDs(a, b uuid.UUID) int {
	return strings.Compare(a.String(), b.String())
}
