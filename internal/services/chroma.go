package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// ChromaService implements MemoryStore against the Chroma v2 REST API.
type ChromaService struct {
	baseURL    string
	tenant     string
	database   string
	apiKey     string
	httpClient *http.Client

	mu          sync.Mutex
	collections map[string]string // collection name -> collection id
}

var _ MemoryStore = (*ChromaService)(nil)

// NewChromaService creates a new Chroma memory store client.
func NewChromaService(baseURL, tenant, database, apiKey string) *ChromaService {
	if tenant == "" {
		tenant = "default_tenant"
	}
	if database == "" {
		database = "default_database"
	}
	return &ChromaService{
		baseURL:  baseURL,
		tenant:   tenant,
		database: database,
		apiKey:   apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		collections: make(map[string]string),
	}
}

func (c *ChromaService) collectionsURL() string {
	return fmt.Sprintf("%s/api/v2/tenants/%s/databases/%s/collections", c.baseURL, c.tenant, c.database)
}

func (c *ChromaService) do(ctx context.Context, method, url string, reqBody any, respBody any) error {
	var body io.Reader
	if reqBody != nil {
		data, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("chroma request failed with status %d: %s", resp.StatusCode, string(data))
	}

	if respBody != nil {
		if err := json.Unmarshal(data, respBody); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}

// collectionID resolves a collection name to its id, creating the
// collection if it does not exist. Resolved ids are cached.
func (c *ChromaService) collectionID(ctx context.Context, name string) (string, error) {
	c.mu.Lock()
	if id, ok := c.collections[name]; ok {
		c.mu.Unlock()
		return id, nil
	}
	c.mu.Unlock()

	req := map[string]any{
		"name":          name,
		"get_or_create": true,
	}
	var resp struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, c.collectionsURL(), req, &resp); err != nil {
		return "", fmt.Errorf("failed to get or create collection %q: %w", name, err)
	}
	if resp.ID == "" {
		return "", fmt.Errorf("chroma returned empty id for collection %q", name)
	}

	c.mu.Lock()
	c.collections[name] = resp.ID
	c.mu.Unlock()
	return resp.ID, nil
}

// Query returns up to n documents relevant to the given text.
func (c *ChromaService) Query(ctx context.Context, collection string, text string, n int) ([]string, error) {
	id, err := c.collectionID(ctx, collection)
	if err != nil {
		return nil, err
	}

	req := map[string]any{
		"query_texts": []string{text},
		"n_results":   n,
	}
	var resp struct {
		Documents [][]string `json:"documents"`
	}
	if err := c.do(ctx, http.MethodPost, c.collectionsURL()+"/"+id+"/query", req, &resp); err != nil {
		return nil, fmt.Errorf("failed to query collection %q: %w", collection, err)
	}

	if len(resp.Documents) == 0 {
		return nil, nil
	}
	return resp.Documents[0], nil
}

// Add persists documents to the character's collection.
func (c *ChromaService) Add(ctx context.Context, collection string, docs []MemoryDocument) error {
	if len(docs) == 0 {
		return nil
	}
	id, err := c.collectionID(ctx, collection)
	if err != nil {
		return err
	}

	documents := make([]string, 0, len(docs))
	metadatas := make([]map[string]float64, 0, len(docs))
	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		documents = append(documents, doc.Text)
		metadatas = append(metadatas, map[string]float64{"time": doc.Time})
		ids = append(ids, doc.ID)
	}

	req := map[string]any{
		"documents": documents,
		"metadatas": metadatas,
		"ids":       ids,
	}
	if err := c.do(ctx, http.MethodPost, c.collectionsURL()+"/"+id+"/add", req, nil); err != nil {
		return fmt.Errorf("failed to add documents to collection %q: %w", collection, err)
	}
	return nil
}

// GetIDs returns all document IDs in the collection.
func (c *ChromaService) GetIDs(ctx context.Context, collection string) ([]string, error) {
	id, err := c.collectionID(ctx, collection)
	if err != nil {
		return nil, err
	}

	var resp struct {
		IDs []string `json:"ids"`
	}
	if err := c.do(ctx, http.MethodPost, c.collectionsURL()+"/"+id+"/get", map[string]any{}, &resp); err != nil {
		return nil, fmt.Errorf("failed to get documents from collection %q: %w", collection, err)
	}
	return resp.IDs, nil
}

// Delete removes the given documents from the collection.
func (c *ChromaService) Delete(ctx context.Context, collection string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	id, err := c.collectionID(ctx, collection)
	if err != nil {
		return err
	}

	req := map[string]any{"ids": ids}
	if err := c.do(ctx, http.MethodPost, c.collectionsURL()+"/"+id+"/delete", req, nil); err != nil {
		return fmt.Errorf("failed to delete documents from collection %q: %w", collection, err)
	}
	return nil
}

// Ping checks connectivity to the Chroma server.
func (c *ChromaService) Ping(ctx context.Context) error {
	if err := c.do(ctx, http.MethodGet, c.baseURL+"/api/v2/heartbeat", nil, nil); err != nil {
		return fmt.Errorf("chroma heartbeat failed: %w", err)
	}
	return nil
}
