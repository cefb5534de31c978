package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/jwebster45206/adventure-engine/internal/play"
	"github.com/jwebster45206/adventure-engine/internal/storage"
	"github.com/jwebster45206/adventure-engine/pkg/game"
	"github.com/jwebster45206/adventure-engine/pkg/scenario"
	"github.com/jwebster45206/adventure-engine/pkg/state"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// GameResponse is returned by every game endpoint.
type GameResponse struct {
	ID       uuid.UUID        `json:"id"`
	Scenario string           `json:"scenario"`
	Text     string           `json:"text"`
	Moved    bool             `json:"moved,omitempty"`
	Quit     bool             `json:"quit,omitempty"`
	State    *state.GameState `json:"state"`
}

// CommandRequest is one line of player input.
type CommandRequest struct {
	Input string `json:"input"`
}

type GameHandler struct {
	scenario *scenario.Scenario
	store    storage.Store
	logger   *slog.Logger
	locks    gameLocks
}

// gameLocks serialises requests per game. An entry lives only while a
// request holds or waits for it.
type gameLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*gameLock
}

type gameLock struct {
	mu   sync.Mutex
	refs int
}

func (l *gameLocks) lock(id uuid.UUID) func() {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[uuid.UUID]*gameLock)
	}
	gl, ok := l.locks[id]
	if !ok {
		gl = &gameLock{}
		l.locks[id] = gl
	}
	gl.refs++
	l.mu.Unlock()

	gl.mu.Lock()
	return func() {
		gl.mu.Unlock()

		l.mu.Lock()
		gl.refs--
		if gl.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}

func (l *gameLocks) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}

func NewGameHandler(sc *scenario.Scenario, store storage.Store, logger *slog.Logger) *GameHandler {
	return &GameHandler{
		scenario: sc,
		store:    store,
		logger:   logger,
	}
}

// ServeHTTP handles HTTP requests for games
// Routes:
// POST /v1/games                - Start a new game
// GET /v1/games/{id}            - Current state and location description
// DELETE /v1/games/{id}         - Delete a game
// POST /v1/games/{id}/commands  - Run one line of player input
// PUT /v1/games/{id}/state      - Replace the saved state
func (h *GameHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/games"), "/")
	if rest == "" {
		if r.Method != http.MethodPost {
			h.writeError(w, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: POST")
			return
		}
		h.handleCreate(w, r)
		return
	}

	idStr, action, _ := strings.Cut(rest, "/")
	id, err := uuid.Parse(idStr)
	if err != nil {
		h.logger.Warn("Invalid game ID", "id", idStr, "error", err)
		h.writeError(w, http.StatusBadRequest, "Invalid game ID format")
		return
	}

	switch action {
	case "":
		switch r.Method {
		case http.MethodGet:
			h.handleRead(w, r, id)
		case http.MethodDelete:
			h.handleDelete(w, r, id)
		default:
			h.writeError(w, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: GET, DELETE")
		}
	case "commands":
		if r.Method != http.MethodPost {
			h.writeError(w, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: POST")
			return
		}
		h.handleCommand(w, r, id)
	case "state":
		if r.Method != http.MethodPut {
			h.writeError(w, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: PUT")
			return
		}
		h.handlePutState(w, r, id)
	default:
		h.writeError(w, http.StatusNotFound, "Not found")
	}
}

func (h *GameHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	s, err := play.NewSession(h.scenario, h.store, h.logger)
	if err != nil {
		h.logger.Error("Failed to start game", "error", err)
		h.writeError(w, http.StatusInternalServerError, "Failed to start game")
		return
	}

	intro, err := s.Intro()
	if err != nil {
		h.logger.Error("Failed to describe opening location", "error", err, "game_id", s.ID)
		h.writeError(w, http.StatusInternalServerError, "Failed to start game")
		return
	}

	if err := s.Save(r.Context()); err != nil {
		h.logger.Error("Failed to save new game", "error", err, "game_id", s.ID)
		h.writeError(w, http.StatusInternalServerError, "Failed to save game")
		return
	}

	h.writeJSON(w, http.StatusCreated, h.response(s, play.Reply{Text: intro}))
}

func (h *GameHandler) handleRead(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	unlock := h.lock(id)
	defer unlock()

	s, ok := h.resume(r.Context(), w, id)
	if !ok {
		return
	}

	reply, err := s.Handle(r.Context(), "look")
	if err != nil {
		h.logger.Error("Failed to describe location", "error", err, "game_id", id)
		h.writeError(w, http.StatusInternalServerError, "Failed to describe location")
		return
	}

	h.writeJSON(w, http.StatusOK, h.response(s, reply))
}

func (h *GameHandler) handleDelete(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	unlock := h.lock(id)
	defer unlock()

	if err := h.store.DeleteGame(r.Context(), id); err != nil {
		h.logger.Error("Failed to delete game", "error", err, "game_id", id)
		h.writeError(w, http.StatusInternalServerError, "Failed to delete game")
		return
	}
	h.logger.Info("Game deleted", "game_id", id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *GameHandler) handleCommand(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var req CommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid command request", "error", err)
		h.writeError(w, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}
	if strings.TrimSpace(req.Input) == "" {
		h.writeError(w, http.StatusBadRequest, "Input is required")
		return
	}

	unlock := h.lock(id)
	defer unlock()

	s, ok := h.resume(r.Context(), w, id)
	if !ok {
		return
	}

	reply, err := s.Handle(r.Context(), req.Input)
	if err != nil {
		h.logger.Error("Failed to run command", "error", err, "game_id", id, "input", req.Input)
		h.writeError(w, http.StatusInternalServerError, "Failed to run command")
		return
	}

	if err := s.Save(r.Context()); err != nil {
		h.logger.Error("Failed to save game", "error", err, "game_id", id)
		h.writeError(w, http.StatusInternalServerError, "Failed to save game")
		return
	}

	h.writeJSON(w, http.StatusOK, h.response(s, reply))
}

func (h *GameHandler) handlePutState(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var gs state.GameState
	if err := json.NewDecoder(r.Body).Decode(&gs); err != nil {
		h.logger.Warn("Invalid game state", "error", err)
		if errors.Is(err, state.ErrDuplicateKey) {
			h.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.writeError(w, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}

	unlock := h.lock(id)
	defer unlock()

	if _, ok := h.resume(r.Context(), w, id); !ok {
		return
	}
	if _, err := game.Resume(h.scenario, &gs, game.WithLogger(h.logger)); err != nil {
		h.logger.Warn("Rejected game state", "error", err, "game_id", id)
		h.writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	err := h.store.SaveGame(r.Context(), &storage.SavedGame{ID: id, Scenario: h.scenario.FileName, State: &gs})
	if err != nil {
		h.logger.Error("Failed to save game", "error", err, "game_id", id)
		h.writeError(w, http.StatusInternalServerError, "Failed to save game")
		return
	}

	s, ok := h.resume(r.Context(), w, id)
	if !ok {
		return
	}
	reply, err := s.Handle(r.Context(), "look")
	if err != nil {
		h.logger.Error("Failed to describe location", "error", err, "game_id", id)
		h.writeError(w, http.StatusInternalServerError, "Failed to describe location")
		return
	}
	h.writeJSON(w, http.StatusOK, h.response(s, reply))
}

// resume loads a session, writing the error response when it cannot.
func (h *GameHandler) resume(ctx context.Context, w http.ResponseWriter, id uuid.UUID) (*play.Session, bool) {
	s, err := play.ResumeSession(ctx, h.scenario, h.store, id, h.logger)
	switch {
	case err == nil:
		return s, true
	case errors.Is(err, storage.ErrSaveNotFound):
		h.writeError(w, http.StatusNotFound, "Game not found")
	case errors.Is(err, play.ErrScenarioMismatch):
		h.writeError(w, http.StatusConflict, "Game belongs to a different scenario")
	case errors.Is(err, game.ErrStateMismatch):
		h.writeError(w, http.StatusConflict, "Saved game no longer matches the scenario")
	default:
		h.logger.Error("Failed to load game", "error", err, "game_id", id)
		h.writeError(w, http.StatusInternalServerError, "Failed to load game")
	}
	return nil, false
}

// lock serialises requests for one game so commands are not lost.
func (h *GameHandler) lock(id uuid.UUID) func() {
	return h.locks.lock(id)
}

func (h *GameHandler) response(s *play.Session, reply play.Reply) GameResponse {
	return GameResponse{
		ID:       s.ID,
		Scenario: h.scenario.FileName,
		Text:     reply.Text,
		Moved:    reply.Moved,
		Quit:     reply.Quit,
		State:    s.Game().State(),
	}
}

func (h *GameHandler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("Failed to encode response", "error", err)
	}
}

func (h *GameHandler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, ErrorResponse{Error: msg})
}
