package services

import (
	"context"
	"sync"
)

// MockMemoryStore is a mock implementation of MemoryStore for testing.
type MockMemoryStore struct {
	mu sync.Mutex

	// QueryFunc overrides the default behavior of Query.
	QueryFunc func(ctx context.Context, collection string, text string, n int) ([]string, error)

	// AddFunc overrides the default behavior of Add.
	AddFunc func(ctx context.Context, collection string, docs []MemoryDocument) error

	// GetIDsFunc overrides the default behavior of GetIDs.
	GetIDsFunc func(ctx context.Context, collection string) ([]string, error)

	// DeleteFunc overrides the default behavior of Delete.
	DeleteFunc func(ctx context.Context, collection string, ids []string) error

	// PingFunc overrides the default behavior of Ping.
	PingFunc func(ctx context.Context) error

	// QueryResult is returned by Query when QueryFunc is nil.
	QueryResult []string

	QueryCalls  []string
	AddCalls    [][]MemoryDocument
	GetIDsCalls []string
	DeleteCalls [][]string
}

var _ MemoryStore = (*MockMemoryStore)(nil)

func (m *MockMemoryStore) Query(ctx context.Context, collection string, text string, n int) ([]string, error) {
	m.mu.Lock()
	m.QueryCalls = append(m.QueryCalls, text)
	fn := m.QueryFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, collection, text, n)
	}
	return m.QueryResult, nil
}

func (m *MockMemoryStore) Add(ctx context.Context, collection string, docs []MemoryDocument) error {
	m.mu.Lock()
	m.AddCalls = append(m.AddCalls, docs)
	fn := m.AddFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, collection, docs)
	}
	return nil
}

func (m *MockMemoryStore) GetIDs(ctx context.Context, collection string) ([]string, error) {
	m.mu.Lock()
	m.GetIDsCalls = append(m.GetIDsCalls, collection)
	fn := m.GetIDsFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, collection)
	}
	return nil, nil
}

func (m *MockMemoryStore) Delete(ctx context.Context, collection string, ids []string) error {
	m.mu.Lock()
	m.DeleteCalls = append(m.DeleteCalls, ids)
	fn := m.DeleteFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, collection, ids)
	}
	return nil
}

func (m *MockMemoryStore) Ping(ctx context.Context) error {
	if m.PingFunc != nil {
		return m.PingFunc(ctx)
	}
	return nil
}
