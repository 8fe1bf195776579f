package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/novaterra/npc-engine/internal/roster"
)

// rosterTTL is how long generated batches remain retrievable.
const rosterTTL = 24 * time.Hour

// RosterStore persists roster batches in Redis.
type RosterStore struct {
	client *redis.Client
	logger *slog.Logger
}

// NewRosterStore creates a new Redis-backed roster store.
func NewRosterStore(redisURL string, logger *slog.Logger) *RosterStore {
	rdb := redis.NewClient(&redis.Options{
		Addr: redisURL,
	})
	return &RosterStore{
		client: rdb,
		logger: logger,
	}
}

func rosterKey(id string) string {
	return "roster:" + id
}

// SaveBatch stores a batch under its ID with a 24 hour TTL.
func (r *RosterStore) SaveBatch(ctx context.Context, batch *roster.Batch) error {
	data, err := json.Marshal(batch)
	if err != nil {
		r.logger.Error("Failed to marshal roster batch", "id", batch.ID, "error", err)
		return fmt.Errorf("failed to marshal roster batch: %w", err)
	}

	if err := r.client.Set(ctx, rosterKey(batch.ID), string(data), rosterTTL).Err(); err != nil {
		r.logger.Error("Failed to save roster batch", "id", batch.ID, "error", err)
		return fmt.Errorf("failed to save roster batch: %w", err)
	}
	return nil
}

// LoadBatch retrieves a batch by ID. Returns nil when the batch does
// not exist or has expired.
func (r *RosterStore) LoadBatch(ctx context.Context, id string) (*roster.Batch, error) {
	data, err := r.client.Get(ctx, rosterKey(id)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		r.logger.Error("Failed to load roster batch", "id", id, "error", err)
		return nil, fmt.Errorf("failed to load roster batch: %w", err)
	}

	var batch roster.Batch
	if err := json.Unmarshal([]byte(data), &batch); err != nil {
		r.logger.Error("Failed to unmarshal roster batch", "id", id, "error", err)
		return nil, fmt.Errorf("failed to unmarshal roster batch: %w", err)
	}
	return &batch, nil
}

// Ping checks the Redis connection.
func (r *RosterStore) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// Close releases the Redis connection.
func (r *RosterStore) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	return nil
}
