package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/novaterra/npc-engine/internal/dialogue"
	"github.com/novaterra/npc-engine/internal/storage"
	"github.com/novaterra/npc-engine/pkg/npc"
)

// LoadEnvironmentRequest selects the active environment, from a file
// or an inline object.
type LoadEnvironmentRequest struct {
	Filename    string          `json:"filename,omitempty"`
	Environment json.RawMessage `json:"environment,omitempty"`
}

// SaveEnvironmentRequest persists an environment JSON into the data
// directory.
type SaveEnvironmentRequest struct {
	Filename    string          `json:"filename"`
	Environment json.RawMessage `json:"environment"`
}

// LoadEnvironmentResponse confirms the active environment swap.
type LoadEnvironmentResponse struct {
	OK          bool                    `json:"ok"`
	Current     string                  `json:"current,omitempty"`
	Environment *npc.EnvironmentContext `json:"environment"`
}

// EnvironmentHandler serves the environment config surface.
type EnvironmentHandler struct {
	files  *storage.FileStore
	active *dialogue.Active
	logger *slog.Logger
}

// NewEnvironmentHandler creates a new environment config handler.
func NewEnvironmentHandler(files *storage.FileStore, active *dialogue.Active, logger *slog.Logger) *EnvironmentHandler {
	return &EnvironmentHandler{
		files:  files,
		active: active,
		logger: logger,
	}
}

// ServeHTTP dispatches GET /config/environments,
// POST /config/environment/load and POST /config/environment/save.
func (h *EnvironmentHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/environments"):
		h.list(w)
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/load"):
		h.load(w, r)
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/save"):
		h.save(w, r)
	default:
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed.")
	}
}

func (h *EnvironmentHandler) list(w http.ResponseWriter) {
	files, err := h.files.ListEnvironments()
	if err != nil {
		h.logger.Error("Failed to list environment files", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to list environment files.")
		return
	}

	current := ""
	if snap := h.active.Load(); snap != nil {
		current = snap.EnvironmentFile
	}
	writeJSON(w, h.logger, http.StatusOK, ConfigFilesResponse{Files: files, Current: current})
}

func (h *EnvironmentHandler) load(w http.ResponseWriter, r *http.Request) {
	var req LoadEnvironmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body.")
		return
	}

	if len(req.Environment) > 0 {
		environment, err := npc.ParseEnvironment(req.Environment)
		if err != nil {
			writeError(w, h.logger, http.StatusBadRequest, err.Error())
			return
		}
		h.active.SetEnvironment(environment, "")
		h.logger.Info("Active environment set from inline object", "era", environment.Era)
		writeJSON(w, h.logger, http.StatusOK, LoadEnvironmentResponse{OK: true, Environment: environment})
		return
	}

	if req.Filename == "" {
		writeError(w, h.logger, http.StatusBadRequest, "Provide either filename or environment.")
		return
	}

	environment, err := h.files.LoadEnvironment(req.Filename)
	if err != nil {
		status := http.StatusBadRequest
		if strings.Contains(err.Error(), "not found") {
			status = http.StatusNotFound
		}
		writeError(w, h.logger, status, err.Error())
		return
	}

	h.active.SetEnvironment(environment, req.Filename)
	h.logger.Info("Active environment loaded", "era", environment.Era, "file", req.Filename)
	writeJSON(w, h.logger, http.StatusOK, LoadEnvironmentResponse{OK: true, Current: req.Filename, Environment: environment})
}

func (h *EnvironmentHandler) save(w http.ResponseWriter, r *http.Request) {
	var req SaveEnvironmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body.")
		return
	}

	environment, err := npc.ParseEnvironment(req.Environment)
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.files.SaveEnvironment(req.Filename, environment); err != nil {
		h.logger.Error("Failed to save environment", "file", req.Filename, "error", err)
		writeError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, h.logger, http.StatusOK, map[string]any{
		"ok":       true,
		"filename": withJSONExt(req.Filename),
	})
}
