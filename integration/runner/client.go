package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/jwebster45206/adventure-engine/internal/handlers"
	"github.com/jwebster45206/adventure-engine/pkg/state"
)

// CreateGame starts a new game via POST /v1/games
func CreateGame(ctx context.Context, client *http.Client, baseURL string) (*handlers.GameResponse, error) {
	return doGame(ctx, client, http.MethodPost, baseURL+"/v1/games", nil, http.StatusCreated)
}

// GetGame retrieves the current game via GET /v1/games/{id}
func GetGame(ctx context.Context, client *http.Client, baseURL string, id uuid.UUID) (*handlers.GameResponse, error) {
	return doGame(ctx, client, http.MethodGet, fmt.Sprintf("%s/v1/games/%s", baseURL, id), nil, http.StatusOK)
}

// PostCommand runs one line of input via POST /v1/games/{id}/commands
func PostCommand(ctx context.Context, client *http.Client, baseURL string, id uuid.UUID, input string) (*handlers.GameResponse, error) {
	return doGame(ctx, client, http.MethodPost, fmt.Sprintf("%s/v1/games/%s/commands", baseURL, id),
		handlers.CommandRequest{Input: input}, http.StatusOK)
}

// PutState replaces the saved state via PUT /v1/games/{id}/state
func PutState(ctx context.Context, client *http.Client, baseURL string, id uuid.UUID, gs *state.GameState) (*handlers.GameResponse, error) {
	return doGame(ctx, client, http.MethodPut, fmt.Sprintf("%s/v1/games/%s/state", baseURL, id), gs, http.StatusOK)
}

// DeleteGame removes a game via DELETE /v1/games/{id}
func DeleteGame(ctx context.Context, client *http.Client, baseURL string, id uuid.UUID) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, fmt.Sprintf("%s/v1/games/%s", baseURL, id), nil)
	if err != nil {
		return fmt.Errorf("failed to create delete request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("delete game returned %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

func doGame(ctx context.Context, client *http.Client, method, url string, payload any, want int) (*handlers.GameResponse, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send %s request: %w", method, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != want {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%s %s returned %d (expected %d): %s", method, url, resp.StatusCode, want, string(respBody))
	}

	var game handlers.GameResponse
	if err := json.NewDecoder(resp.Body).Decode(&game); err != nil {
		return nil, fmt.Errorf("failed to parse game response: %w", err)
	}
	return &game, nil
}
