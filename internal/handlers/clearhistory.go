package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/novaterra/npc-engine/internal/dialogue"
	"github.com/novaterra/npc-engine/pkg/chat"
)

// ClearHistoryHandler clears the active character's stored memory.
// The endpoint always answers 200; failures are reported in the body.
type ClearHistoryHandler struct {
	orchestrator *dialogue.Orchestrator
	logger       *slog.Logger
}

// NewClearHistoryHandler creates a new clear-history handler.
func NewClearHistoryHandler(orchestrator *dialogue.Orchestrator, logger *slog.Logger) *ClearHistoryHandler {
	return &ClearHistoryHandler{
		orchestrator: orchestrator,
		logger:       logger,
	}
}

// ServeHTTP handles POST /clear-history.
func (h *ClearHistoryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodPost {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only POST is supported.")
		return
	}

	response, err := h.orchestrator.ClearHistory(r.Context())
	if err != nil {
		h.logger.Warn("Clear history failed", "error", err)
		response = &chat.ClearHistoryResponse{
			Message: fmt.Sprintf("Error clearing history: %v", err),
			Success: false,
		}
	}

	writeJSON(w, h.logger, http.StatusOK, response)
}
