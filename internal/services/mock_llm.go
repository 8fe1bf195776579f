package services

import (
	"context"
	"sync"
)

// MockCompletionService is a mock implementation of CompletionService
// for testing.
type MockCompletionService struct {
	mu sync.Mutex

	// CompleteFunc overrides the default behavior of Complete.
	CompleteFunc func(ctx context.Context, req CompletionRequest) (string, error)

	// CompleteCalls records every request passed to Complete.
	CompleteCalls []CompletionRequest

	// Response is returned by Complete when CompleteFunc is nil.
	Response string
}

var _ CompletionService = (*MockCompletionService)(nil)

func (m *MockCompletionService) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	m.mu.Lock()
	m.CompleteCalls = append(m.CompleteCalls, req)
	fn := m.CompleteFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, req)
	}
	return m.Response, nil
}

// CallCount returns the number of times Complete has been called.
func (m *MockCompletionService) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.CompleteCalls)
}

// MockChatCompletionService is a mock implementation of
// ChatCompletionService for testing.
type MockChatCompletionService struct {
	mu sync.Mutex

	// CompleteJSONFunc overrides the default behavior of CompleteJSON.
	CompleteJSONFunc func(ctx context.Context, system string, user string) (string, error)

	// CompleteJSONCalls records the user messages passed to CompleteJSON.
	CompleteJSONCalls []string

	// Response is returned by CompleteJSON when CompleteJSONFunc is nil.
	Response string
}

var _ ChatCompletionService = (*MockChatCompletionService)(nil)

func (m *MockChatCompletionService) CompleteJSON(ctx context.Context, system string, user string) (string, error) {
	m.mu.Lock()
	m.CompleteJSONCalls = append(m.CompleteJSONCalls, user)
	fn := m.CompleteJSONFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, system, user)
	}
	return m.Response, nil
}
