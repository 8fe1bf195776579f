package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novaterra/npc-engine/internal/roster"
	"github.com/novaterra/npc-engine/internal/services"
)

// memBatchStore is an in-memory BatchStore for handler tests.
type memBatchStore struct {
	mu      sync.Mutex
	batches map[string]*roster.Batch
	saveErr error
}

func newMemBatchStore() *memBatchStore {
	return &memBatchStore{batches: make(map[string]*roster.Batch)}
}

func (s *memBatchStore) SaveBatch(ctx context.Context, batch *roster.Batch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.batches[batch.ID] = batch
	return nil
}

func (s *memBatchStore) LoadBatch(ctx context.Context, id string) (*roster.Batch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.batches[id], nil
}

func rosterCharacterJSON(name string) string {
	return fmt.Sprintf(`{
		"name": %q,
		"age": 30,
		"gender": "female",
		"personalities": ["curious"],
		"appearance": {"description": "weathered"},
		"background": {"hometown": "The Drift"},
		"skills": ["salvage"],
		"secrets": []
	}`, name)
}

func rosterMockService(names ...string) *services.MockChatCompletionService {
	nameList, _ := json.Marshal(map[string][]string{"names": names})
	return &services.MockChatCompletionService{
		CompleteJSONFunc: func(ctx context.Context, system string, user string) (string, error) {
			switch {
			case strings.Contains(user, "unique names"):
				return string(nameList), nil
			case strings.Contains(user, "relationships"):
				return `{"relationships": []}`, nil
			default:
				for _, name := range names {
					if strings.Contains(user, fmt.Sprintf("%q", name)) {
						return rosterCharacterJSON(name), nil
					}
				}
				return "", fmt.Errorf("unexpected prompt")
			}
		},
	}
}

func TestRosterHandler_GenerateAndGet(t *testing.T) {
	files, _, _ := newConfigFixture(t)
	store := newMemBatchStore()
	generator := roster.NewGenerator(rosterMockService("Kaiya", "Dax"), testLogger())
	handler := NewRosterHandler(generator, store, files, testLogger())

	body := []byte(`{"filename": "environment.json", "count": 2}`)
	req := httptest.NewRequest(http.MethodPost, "/roster/generate", bytes.NewReader(body))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var batch roster.Batch
	require.NoError(t, json.NewDecoder(w.Body).Decode(&batch))
	assert.NotEmpty(t, batch.ID)
	assert.Len(t, batch.Characters, 2)

	req = httptest.NewRequest(http.MethodGet, "/roster/"+batch.ID, nil)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var loaded roster.Batch
	require.NoError(t, json.NewDecoder(w.Body).Decode(&loaded))
	assert.Equal(t, batch.ID, loaded.ID)
}

func TestRosterHandler_GenerateInlineEnvironment(t *testing.T) {
	files, _, _ := newConfigFixture(t)
	generator := roster.NewGenerator(rosterMockService("Kaiya"), testLogger())
	handler := NewRosterHandler(generator, newMemBatchStore(), files, testLogger())

	body := []byte(`{"environment": ` + environmentJSON + `, "count": 1}`)
	req := httptest.NewRequest(http.MethodPost, "/roster/generate", bytes.NewReader(body))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestRosterHandler_GenerateBadEnvironment(t *testing.T) {
	files, _, _ := newConfigFixture(t)
	generator := roster.NewGenerator(rosterMockService("Kaiya"), testLogger())
	handler := NewRosterHandler(generator, newMemBatchStore(), files, testLogger())

	body := []byte(`{"environment": {"era": "x"}}`)
	req := httptest.NewRequest(http.MethodPost, "/roster/generate", bytes.NewReader(body))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRosterHandler_GenerateCountTooLarge(t *testing.T) {
	files, _, _ := newConfigFixture(t)
	generator := roster.NewGenerator(rosterMockService("Kaiya"), testLogger())
	handler := NewRosterHandler(generator, newMemBatchStore(), files, testLogger())

	body := []byte(`{"filename": "environment.json", "count": 100}`)
	req := httptest.NewRequest(http.MethodPost, "/roster/generate", bytes.NewReader(body))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRosterHandler_SaveFailureStillReturnsBatch(t *testing.T) {
	files, _, _ := newConfigFixture(t)
	store := newMemBatchStore()
	store.saveErr = fmt.Errorf("redis down")
	generator := roster.NewGenerator(rosterMockService("Kaiya"), testLogger())
	handler := NewRosterHandler(generator, store, files, testLogger())

	body := []byte(`{"filename": "environment.json", "count": 1}`)
	req := httptest.NewRequest(http.MethodPost, "/roster/generate", bytes.NewReader(body))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRosterHandler_GetMissing(t *testing.T) {
	files, _, _ := newConfigFixture(t)
	generator := roster.NewGenerator(rosterMockService("Kaiya"), testLogger())
	handler := NewRosterHandler(generator, newMemBatchStore(), files, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/roster/nope", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
