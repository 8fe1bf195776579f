package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func healthy() pingFunc   { return func(ctx context.Context) error { return nil } }
func unhealthy() pingFunc { return func(ctx context.Context) error { return assert.AnError } }

func TestHealthHandler_AllHealthy(t *testing.T) {
	handler := NewHealthHandler(healthy(), healthy(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp HealthResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "npc-engine", resp.Service)
	assert.Equal(t, "healthy", resp.Components["memory"])
	assert.Equal(t, "healthy", resp.Components["roster"])
}

func TestHealthHandler_DegradedMemory(t *testing.T) {
	handler := NewHealthHandler(unhealthy(), healthy(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var resp HealthResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "degraded", resp.Status)
	assert.Equal(t, "unhealthy", resp.Components["memory"])
}

func TestHealthHandler_NotConfigured(t *testing.T) {
	handler := NewHealthHandler(nil, nil, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp HealthResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "not configured", resp.Components["memory"])
}
