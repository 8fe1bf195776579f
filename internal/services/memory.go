package services

import "context"

// MemoryDocument is a single conversation exchange persisted to
// long-term memory.
type MemoryDocument struct {
	ID   string
	Text string
	Time float64 // unix seconds
}

// MemoryStore is the interface for per-character long-term memory.
// Each character owns one collection, named after the character with
// spaces replaced by underscores.
type MemoryStore interface {
	// Query returns up to n documents relevant to the given text.
	Query(ctx context.Context, collection string, text string, n int) ([]string, error)

	// Add persists documents to the character's collection.
	Add(ctx context.Context, collection string, docs []MemoryDocument) error

	// GetIDs returns all document IDs in the collection.
	GetIDs(ctx context.Context, collection string) ([]string, error)

	// Delete removes the given documents from the collection.
	Delete(ctx context.Context, collection string, ids []string) error

	// Ping checks connectivity to the memory backend.
	Ping(ctx context.Context) error
}
