package services

import "context"

// CompletionRequest is a text-completion request to the dialogue
// provider. Stop sequences prevent the model from fabricating the next
// player turn; the closing response tag is never among them.
type CompletionRequest struct {
	Prompt      string
	MaxTokens   int
	Temperature float64
	Stop        []string
}

// CompletionService defines the interface for the raw text-completion
// provider used by dialogue turns.
type CompletionService interface {
	// Complete returns the raw completion text. Errors are fatal for
	// the turn; there is no retry.
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// ChatCompletionService defines the interface for the JSON-mode chat
// provider used by the roster generation pipeline.
type ChatCompletionService interface {
	// CompleteJSON sends a system/user message pair and returns the
	// model's JSON object output as a string.
	CompleteJSON(ctx context.Context, system, user string) (string, error)
}

// HealthChecker defines basic health check capabilities
type HealthChecker interface {
	// Ping tests the service connection
	Ping(ctx context.Context) error
}

// Closer defines cleanup capabilities
type Closer interface {
	// Close closes the service connection
	Close() error
}
