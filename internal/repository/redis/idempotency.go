package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const processedKeyPrefix = "catalog:processed:"

// IdempotencyStore implements kafka.IdempotencyStore with one expiring key
// per processed event, so every consumer replica shares the same view.
type IdempotencyStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewIdempotencyStore creates a store that remembers event ids for ttl.
func NewIdempotencyStore(client redis.UniversalClient, ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{client: client, ttl: ttl}
}

// Contains reports whether eventID was recorded within ttl.
func (s *IdempotencyStore) Contains(ctx context.Context, eventID string) (bool, error) {
	n, err := s.client.Exists(ctx, processedKeyPrefix+eventID).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists processed event: %w", err)
	}
	return n > 0, nil
}

// Add records eventID.
func (s *IdempotencyStore) Add(ctx context.Context, eventID string) error {
	if err := s.client.Set(ctx, processedKeyPrefix+eventID, 1, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set processed event: %w", err)
	}
	return nil
}
