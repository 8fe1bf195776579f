package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novaterra/npc-engine/internal/dialogue"
	"github.com/novaterra/npc-engine/internal/services"
	"github.com/novaterra/npc-engine/pkg/chat"
	"github.com/novaterra/npc-engine/pkg/npc"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func kaiya() *npc.CharacterProfile {
	return &npc.CharacterProfile{
		Name:          "Kaiya Starling",
		Age:           npc.LooseString("27"),
		Gender:        "female",
		Personalities: []string{"curious", "warm"},
		Appearance:    map[string]string{"description": "tall"},
		Background:    map[string]string{"hometown": "Nova Terra"},
		Skills:        []string{"piloting"},
		Secrets:       []string{},
	}
}

func novaTerra() *npc.EnvironmentContext {
	return &npc.EnvironmentContext{
		Era:        "Nova Terra",
		TimePeriod: "year 2412",
		Detail:     map[string]string{"Environment": "orbital station"},
		Guardrails: map[string]string{},
	}
}

func testOrchestrator(provider services.CompletionService, memory services.MemoryStore) *dialogue.Orchestrator {
	active := &dialogue.Active{}
	active.SetCharacter(kaiya(), "KaiyaStarling.json")
	active.SetEnvironment(novaTerra(), "environment.json")
	return dialogue.NewOrchestrator(active, provider, memory, testLogger())
}

func TestChatHandler_EndToEnd(t *testing.T) {
	provider := &services.MockCompletionService{
		Response: "<response>I'm Kaiya, nice to meet you.</response>",
	}
	memory := &services.MockMemoryStore{}
	handler := NewChatHandler(testOrchestrator(provider, memory), testLogger())

	body, err := json.Marshal(chat.ChatRequest{Message: "Hello, who are you?"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewReader(body))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp chat.ChatResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "I'm Kaiya, nice to meet you.", resp.Response)
	assert.GreaterOrEqual(t, resp.TimeTaken, 0.0)
	assert.Empty(t, resp.Error)

	require.Len(t, memory.AddCalls, 1)
	require.Len(t, memory.AddCalls[0], 1)
	assert.Equal(t, "I'm Kaiya, nice to meet you.", memory.AddCalls[0][0].Text)
}

func TestChatHandler_MethodNotAllowed(t *testing.T) {
	handler := NewChatHandler(testOrchestrator(&services.MockCompletionService{}, nil), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/chat", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestChatHandler_InvalidBody(t *testing.T) {
	handler := NewChatHandler(testOrchestrator(&services.MockCompletionService{}, nil), testLogger())

	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewReader([]byte("{not json")))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChatHandler_EmptyMessage(t *testing.T) {
	handler := NewChatHandler(testOrchestrator(&services.MockCompletionService{}, nil), testLogger())

	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewReader([]byte(`{"message": ""}`)))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChatHandler_NoActiveCharacter(t *testing.T) {
	orchestrator := dialogue.NewOrchestrator(&dialogue.Active{}, &services.MockCompletionService{}, nil, testLogger())
	handler := NewChatHandler(orchestrator, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewReader([]byte(`{"message": "hi"}`)))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var resp chat.ChatResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Contains(t, resp.Error, "not loaded")
}

func TestChatHandler_ProviderFailure(t *testing.T) {
	provider := &services.MockCompletionService{
		CompleteFunc: func(ctx context.Context, req services.CompletionRequest) (string, error) {
			return "", assert.AnError
		},
	}
	handler := NewChatHandler(testOrchestrator(provider, nil), testLogger())

	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewReader([]byte(`{"message": "hi"}`)))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
