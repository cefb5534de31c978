package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/jwebster45206/adventure-engine/pkg/scenario"
)

// ScenarioHandler serves the loaded scenario as JSON, e.g. for content
// tooling that needs item and location names.
type ScenarioHandler struct {
	log      *slog.Logger
	scenario *scenario.Scenario
}

func NewScenarioHandler(log *slog.Logger, sc *scenario.Scenario) *ScenarioHandler {
	return &ScenarioHandler{
		log:      log,
		scenario: sc,
	}
}

func (h *ScenarioHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleGet(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *ScenarioHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	data, err := json.Marshal(h.scenario)
	if err != nil {
		h.log.Error("Failed to marshal scenario", "error", err, "filename", h.scenario.FileName)
		http.Error(w, "Failed to process scenario", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.log.Error("Failed to write scenario response", "error", err, "path", r.URL.Path)
	}
}
