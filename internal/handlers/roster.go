package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/novaterra/npc-engine/internal/roster"
	"github.com/novaterra/npc-engine/internal/storage"
	"github.com/novaterra/npc-engine/pkg/npc"
)

// rosterTimeout bounds a full roster generation run, which fans out
// many provider calls.
const rosterTimeout = 5 * time.Minute

// defaultRosterCount is used when the request omits a count.
const defaultRosterCount = 10

// maxRosterCount caps one generation run.
const maxRosterCount = 25

// BatchStore persists and retrieves roster batches.
type BatchStore interface {
	SaveBatch(ctx context.Context, batch *roster.Batch) error
	LoadBatch(ctx context.Context, id string) (*roster.Batch, error)
}

var _ BatchStore = (*storage.RosterStore)(nil)

// GenerateRosterRequest asks for a batch of characters fitting an
// environment, given inline or loaded from the data directory.
type GenerateRosterRequest struct {
	Filename    string          `json:"filename,omitempty"`
	Environment json.RawMessage `json:"environment,omitempty"`
	Count       int             `json:"count,omitempty"`
}

// RosterHandler serves roster generation and retrieval.
type RosterHandler struct {
	generator *roster.Generator
	store     BatchStore
	files     *storage.FileStore
	logger    *slog.Logger
}

// NewRosterHandler creates a new roster handler.
func NewRosterHandler(generator *roster.Generator, store BatchStore, files *storage.FileStore, logger *slog.Logger) *RosterHandler {
	return &RosterHandler{
		generator: generator,
		store:     store,
		files:     files,
		logger:    logger,
	}
}

// ServeHTTP dispatches POST /roster/generate and GET /roster/{id}.
func (h *RosterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/generate"):
		h.generate(w, r)
	case r.Method == http.MethodGet:
		h.get(w, r)
	default:
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed.")
	}
}

func (h *RosterHandler) resolveEnvironment(req *GenerateRosterRequest) (*npc.EnvironmentContext, error) {
	if len(req.Environment) > 0 {
		return npc.ParseEnvironment(req.Environment)
	}
	return h.files.LoadEnvironment(req.Filename)
}

func (h *RosterHandler) generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRosterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body.")
		return
	}

	environment, err := h.resolveEnvironment(&req)
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}

	count := req.Count
	if count <= 0 {
		count = defaultRosterCount
	}
	if count > maxRosterCount {
		writeError(w, h.logger, http.StatusBadRequest, "Count is too large.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), rosterTimeout)
	defer cancel()

	h.logger.Info("Roster generation started", "count", count, "era", environment.Era)
	batch, err := h.generator.Generate(ctx, environment, count)
	if err != nil {
		h.logger.Error("Roster generation failed", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, err.Error())
		return
	}

	if h.store != nil {
		if err := h.store.SaveBatch(ctx, batch); err != nil {
			// The batch is still returned; only retrieval by ID is lost.
			h.logger.Warn("Failed to persist roster batch", "id", batch.ID, "error", err)
		}
	}

	h.logger.Info("Roster generation finished",
		"id", batch.ID,
		"characters", len(batch.Characters),
		"failed", batch.Failed)
	writeJSON(w, h.logger, http.StatusOK, batch)
}

func (h *RosterHandler) get(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/roster/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, h.logger, http.StatusBadRequest, "Batch ID is required.")
		return
	}

	if h.store == nil {
		writeError(w, h.logger, http.StatusServiceUnavailable, "Roster store is not configured.")
		return
	}

	batch, err := h.store.LoadBatch(r.Context(), id)
	if err != nil {
		h.logger.Error("Failed to load roster batch", "id", id, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load roster batch.")
		return
	}
	if batch == nil {
		writeError(w, h.logger, http.StatusNotFound, "Roster batch not found.")
		return
	}

	writeJSON(w, h.logger, http.StatusOK, batch)
}
