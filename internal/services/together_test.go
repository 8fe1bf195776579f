package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTogetherService_Complete(t *testing.T) {
	var gotReq TogetherCompletionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		_, _ = w.Write([]byte(`{"id": "cmpl-1", "choices": [{"text": "<response>Hello.</response>", "finish_reason": "stop"}]}`))
	}))
	defer server.Close()

	svc := NewTogetherService("test-key", "test-model", 10*time.Second)
	svc.baseURL = server.URL

	out, err := svc.Complete(context.Background(), CompletionRequest{
		Prompt: "Player: hi\n\nKaiya:",
		Stop:   []string{"\n\nPlayer:", "\n\nKaiya:"},
	})
	require.NoError(t, err)
	assert.Equal(t, "<response>Hello.</response>", out)

	assert.Equal(t, "test-model", gotReq.Model)
	assert.Equal(t, DefaultTogetherMaxTokens, gotReq.MaxTokens)
	assert.Equal(t, DefaultTogetherTemperature, gotReq.Temperature)
	assert.Equal(t, []string{"\n\nPlayer:", "\n\nKaiya:"}, gotReq.Stop)
}

func TestTogetherService_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream broke"))
	}))
	defer server.Close()

	svc := NewTogetherService("test-key", "test-model", 10*time.Second)
	svc.baseURL = server.URL

	_, err := svc.Complete(context.Background(), CompletionRequest{Prompt: "hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
}

func TestTogetherService_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error": {"message": "model overloaded", "type": "overloaded"}}`))
	}))
	defer server.Close()

	svc := NewTogetherService("test-key", "test-model", 10*time.Second)
	svc.baseURL = server.URL

	_, err := svc.Complete(context.Background(), CompletionRequest{Prompt: "hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model overloaded")
}

func TestTogetherService_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id": "x", "choices": []}`))
	}))
	defer server.Close()

	svc := NewTogetherService("test-key", "test-model", 10*time.Second)
	svc.baseURL = server.URL

	_, err := svc.Complete(context.Background(), CompletionRequest{Prompt: "hi"})
	assert.Error(t, err)
}
