package storage

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/novaterra/npc-engine/pkg/npc"
)

// FileStore manages character and environment JSON files in a single
// data directory. Files are classified by their key sets rather than
// by naming convention.
type FileStore struct {
	dataDir string
	logger  *slog.Logger
}

// NewFileStore creates a new file-backed config store.
func NewFileStore(dataDir string, logger *slog.Logger) *FileStore {
	if dataDir == "" {
		dataDir = "./JSONData"
	}
	return &FileStore{
		dataDir: dataDir,
		logger:  logger,
	}
}

// safeFilename rejects path separators and traversal, and appends the
// .json extension when missing.
func safeFilename(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("filename is required")
	}
	if strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return "", fmt.Errorf("invalid filename: %s", name)
	}
	if !strings.HasSuffix(name, ".json") {
		name += ".json"
	}
	return name, nil
}

// listByKind returns the filenames in the data directory whose
// top-level keys match the given predicate.
func (f *FileStore) listByKind(match func([]byte) bool) ([]string, error) {
	entries, err := os.ReadDir(f.dataDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to read data directory: %w", err)
	}

	files := []string{}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(f.dataDir, entry.Name()))
		if err != nil {
			f.logger.Warn("Failed to read config file", "file", entry.Name(), "error", err)
			continue
		}
		if match(data) {
			files = append(files, entry.Name())
		}
	}
	return files, nil
}

// ListCharacters returns the filenames of all character profiles.
func (f *FileStore) ListCharacters() ([]string, error) {
	return f.listByKind(npc.LooksLikeCharacter)
}

// ListEnvironments returns the filenames of all environment contexts.
func (f *FileStore) ListEnvironments() ([]string, error) {
	return f.listByKind(npc.LooksLikeEnvironment)
}

// LoadCharacter reads and parses a character profile by filename.
func (f *FileStore) LoadCharacter(filename string) (*npc.CharacterProfile, error) {
	name, err := safeFilename(filename)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(f.dataDir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("character not found: %s", name)
		}
		return nil, fmt.Errorf("failed to read character file: %w", err)
	}

	character, err := npc.ParseCharacter(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse character file %s: %w", name, err)
	}
	return character, nil
}

// LoadEnvironment reads and parses an environment context by filename.
func (f *FileStore) LoadEnvironment(filename string) (*npc.EnvironmentContext, error) {
	name, err := safeFilename(filename)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(f.dataDir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("environment not found: %s", name)
		}
		return nil, fmt.Errorf("failed to read environment file: %w", err)
	}

	environment, err := npc.ParseEnvironment(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse environment file %s: %w", name, err)
	}
	return environment, nil
}

// SaveCharacter writes a character profile to the data directory.
func (f *FileStore) SaveCharacter(filename string, character *npc.CharacterProfile) error {
	name, err := safeFilename(filename)
	if err != nil {
		return err
	}
	return f.writeJSON(name, character)
}

// SaveEnvironment writes an environment context to the data directory.
func (f *FileStore) SaveEnvironment(filename string, environment *npc.EnvironmentContext) error {
	name, err := safeFilename(filename)
	if err != nil {
		return err
	}
	return f.writeJSON(name, environment)
}

func (f *FileStore) writeJSON(name string, v any) error {
	if err := os.MkdirAll(f.dataDir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	path := filepath.Join(f.dataDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	f.logger.Debug("Saved config file", "file", name)
	return nil
}
