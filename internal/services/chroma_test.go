package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newChromaTestServer(t *testing.T) (*httptest.Server, *[]string) {
	t.Helper()
	var paths []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		switch {
		case r.URL.Path == "/api/v2/tenants/default_tenant/databases/default_database/collections":
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, true, body["get_or_create"])
			_, _ = w.Write([]byte(`{"id": "col-123", "name": "` + body["name"].(string) + `"}`))
		case r.URL.Path == "/api/v2/tenants/default_tenant/databases/default_database/collections/col-123/query":
			_, _ = w.Write([]byte(`{"documents": [["Player: hi\nKaiya: hello", "Player: bye\nKaiya: farewell"]]}`))
		case r.URL.Path == "/api/v2/tenants/default_tenant/databases/default_database/collections/col-123/add":
			_, _ = w.Write([]byte(`{}`))
		case r.URL.Path == "/api/v2/tenants/default_tenant/databases/default_database/collections/col-123/get":
			_, _ = w.Write([]byte(`{"ids": ["a", "b"]}`))
		case r.URL.Path == "/api/v2/tenants/default_tenant/databases/default_database/collections/col-123/delete":
			_, _ = w.Write([]byte(`{}`))
		case r.URL.Path == "/api/v2/heartbeat":
			_, _ = w.Write([]byte(`{"nanosecond heartbeat": 1}`))
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	return server, &paths
}

func TestChromaService_Query(t *testing.T) {
	server, _ := newChromaTestServer(t)
	defer server.Close()

	svc := NewChromaService(server.URL, "", "", "")
	docs, err := svc.Query(context.Background(), "Kaiya_Starling", "hi", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"Player: hi\nKaiya: hello", "Player: bye\nKaiya: farewell"}, docs)
}

func TestChromaService_CollectionIDCached(t *testing.T) {
	server, paths := newChromaTestServer(t)
	defer server.Close()

	svc := NewChromaService(server.URL, "", "", "")
	_, err := svc.Query(context.Background(), "Kaiya_Starling", "hi", 2)
	require.NoError(t, err)
	_, err = svc.Query(context.Background(), "Kaiya_Starling", "hi again", 2)
	require.NoError(t, err)

	creates := 0
	for _, p := range *paths {
		if p == "/api/v2/tenants/default_tenant/databases/default_database/collections" {
			creates++
		}
	}
	assert.Equal(t, 1, creates, "collection id should be resolved once")
}

func TestChromaService_Add(t *testing.T) {
	server, _ := newChromaTestServer(t)
	defer server.Close()

	svc := NewChromaService(server.URL, "", "", "")
	err := svc.Add(context.Background(), "Kaiya_Starling", []MemoryDocument{
		{ID: "id-1", Text: "Player: hi\nKaiya: hello", Time: 1756555200},
	})
	require.NoError(t, err)
}

func TestChromaService_AddEmptyIsNoop(t *testing.T) {
	svc := NewChromaService("http://invalid", "", "", "")
	assert.NoError(t, svc.Add(context.Background(), "Kaiya_Starling", nil))
}

func TestChromaService_GetIDsAndDelete(t *testing.T) {
	server, _ := newChromaTestServer(t)
	defer server.Close()

	svc := NewChromaService(server.URL, "", "", "")
	ids, err := svc.GetIDs(context.Background(), "Kaiya_Starling")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)

	require.NoError(t, svc.Delete(context.Background(), "Kaiya_Starling", ids))
}

func TestChromaService_DeleteEmptyIsNoop(t *testing.T) {
	svc := NewChromaService("http://invalid", "", "", "")
	assert.NoError(t, svc.Delete(context.Background(), "Kaiya_Starling", nil))
}

func TestChromaService_Ping(t *testing.T) {
	server, _ := newChromaTestServer(t)
	defer server.Close()

	svc := NewChromaService(server.URL, "", "", "")
	assert.NoError(t, svc.Ping(context.Background()))
}
