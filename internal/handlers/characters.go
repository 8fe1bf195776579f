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

// ConfigFilesResponse lists config filenames plus the currently active
// one, when the active config was loaded from a file.
type ConfigFilesResponse struct {
	Files   []string `json:"files"`
	Current string   `json:"current,omitempty"`
}

// LoadCharacterRequest selects the active character, from a file or an
// inline object.
type LoadCharacterRequest struct {
	Filename  string          `json:"filename,omitempty"`
	Character json.RawMessage `json:"character,omitempty"`
}

// SaveCharacterRequest persists a character JSON into the data
// directory.
type SaveCharacterRequest struct {
	Filename  string          `json:"filename"`
	Character json.RawMessage `json:"character"`
}

// LoadCharacterResponse confirms the active character swap.
type LoadCharacterResponse struct {
	OK        bool                  `json:"ok"`
	Current   string                `json:"current,omitempty"`
	Character *npc.CharacterProfile `json:"character"`
}

// CharacterHandler serves the character config surface: listing,
// loading (activating) and saving character profiles.
type CharacterHandler struct {
	files  *storage.FileStore
	active *dialogue.Active
	logger *slog.Logger
}

// NewCharacterHandler creates a new character config handler.
func NewCharacterHandler(files *storage.FileStore, active *dialogue.Active, logger *slog.Logger) *CharacterHandler {
	return &CharacterHandler{
		files:  files,
		active: active,
		logger: logger,
	}
}

// ServeHTTP dispatches GET /config/characters,
// POST /config/character/load and POST /config/character/save.
func (h *CharacterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/characters"):
		h.list(w)
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/load"):
		h.load(w, r)
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/save"):
		h.save(w, r)
	default:
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed.")
	}
}

func (h *CharacterHandler) list(w http.ResponseWriter) {
	files, err := h.files.ListCharacters()
	if err != nil {
		h.logger.Error("Failed to list character files", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to list character files.")
		return
	}

	current := ""
	if snap := h.active.Load(); snap != nil {
		current = snap.CharacterFile
	}
	writeJSON(w, h.logger, http.StatusOK, ConfigFilesResponse{Files: files, Current: current})
}

func (h *CharacterHandler) load(w http.ResponseWriter, r *http.Request) {
	var req LoadCharacterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body.")
		return
	}

	if len(req.Character) > 0 {
		character, err := npc.ParseCharacter(req.Character)
		if err != nil {
			writeError(w, h.logger, http.StatusBadRequest, err.Error())
			return
		}
		h.active.SetCharacter(character, "")
		h.logger.Info("Active character set from inline object", "name", character.Name)
		writeJSON(w, h.logger, http.StatusOK, LoadCharacterResponse{OK: true, Character: character})
		return
	}

	if req.Filename == "" {
		writeError(w, h.logger, http.StatusBadRequest, "Provide either filename or character.")
		return
	}

	character, err := h.files.LoadCharacter(req.Filename)
	if err != nil {
		status := http.StatusBadRequest
		if strings.Contains(err.Error(), "not found") {
			status = http.StatusNotFound
		}
		writeError(w, h.logger, status, err.Error())
		return
	}

	h.active.SetCharacter(character, req.Filename)
	h.logger.Info("Active character loaded", "name", character.Name, "file", req.Filename)
	writeJSON(w, h.logger, http.StatusOK, LoadCharacterResponse{OK: true, Current: req.Filename, Character: character})
}

func (h *CharacterHandler) save(w http.ResponseWriter, r *http.Request) {
	var req SaveCharacterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body.")
		return
	}

	character, err := npc.ParseCharacter(req.Character)
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.files.SaveCharacter(req.Filename, character); err != nil {
		h.logger.Error("Failed to save character", "file", req.Filename, "error", err)
		writeError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, h.logger, http.StatusOK, map[string]any{
		"ok":       true,
		"filename": withJSONExt(req.Filename),
	})
}

func withJSONExt(name string) string {
	if !strings.HasSuffix(name, ".json") {
		return name + ".json"
	}
	return name
}
