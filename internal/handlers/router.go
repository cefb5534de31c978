package handlers

import (
	"log/slog"
	"net/http"

	"github.com/jwebster45206/adventure-engine/internal/middleware"
	"github.com/jwebster45206/adventure-engine/internal/storage"
	"github.com/jwebster45206/adventure-engine/pkg/scenario"
)

// NewRouter wires every endpoint for one scenario behind the request
// logging middleware.
func NewRouter(sc *scenario.Scenario, store storage.Store, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.Handle("/health", NewHealthHandler(store, sc.Name, logger))

	scenarioHandler := NewScenarioHandler(logger, sc)
	mux.Handle("/v1/scenario", scenarioHandler)

	gameHandler := NewGameHandler(sc, store, logger)
	mux.Handle("/v1/games", gameHandler)
	mux.Handle("/v1/games/", gameHandler)

	return middleware.Chain(mux, middleware.RequestID(), middleware.Logger(logger))
}
