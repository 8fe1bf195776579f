package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/novaterra/npc-engine/internal/dialogue"
	"github.com/novaterra/npc-engine/pkg/chat"
)

// chatTimeout bounds a full dialogue turn including the provider call.
const chatTimeout = 90 * time.Second

// ChatHandler handles dialogue turn requests.
type ChatHandler struct {
	orchestrator *dialogue.Orchestrator
	logger       *slog.Logger
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(orchestrator *dialogue.Orchestrator, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{
		orchestrator: orchestrator,
		logger:       logger,
	}
}

// ServeHTTP handles POST /chat.
func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodPost {
		h.logger.Warn("Method not allowed for chat endpoint",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr)
		writeJSON(w, h.logger, http.StatusMethodNotAllowed, chat.ChatResponse{
			Error: "Method not allowed. Only POST is supported.",
		})
		return
	}

	var request chat.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.logger.Warn("Invalid chat request body", "error", err)
		writeJSON(w, h.logger, http.StatusBadRequest, chat.ChatResponse{
			Error: "Invalid request body. Expected JSON with 'message' field.",
		})
		return
	}

	if err := request.Validate(); err != nil {
		h.logger.Warn("Invalid chat request", "error", err)
		writeJSON(w, h.logger, http.StatusBadRequest, chat.ChatResponse{
			Error: err.Error(),
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), chatTimeout)
	defer cancel()

	response, err := h.orchestrator.Chat(ctx, &request)
	if err != nil {
		h.logger.Error("Chat turn failed", "error", err)
		writeJSON(w, h.logger, http.StatusInternalServerError, chat.ChatResponse{
			Error: err.Error(),
		})
		return
	}

	writeJSON(w, h.logger, http.StatusOK, response)
}
