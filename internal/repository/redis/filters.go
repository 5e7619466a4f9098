package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/JamesLuiz/abuja-connect-shop-sub000/internal/domain"
)

const filtersKeyPrefix = "catalog:filters:"

// FilterStateStore implements repository.FilterStateStore using Redis.
type FilterStateStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewFilterStateStore creates a store whose entries expire after ttl of
// inactivity.
func NewFilterStateStore(client redis.UniversalClient, ttl time.Duration) *FilterStateStore {
	return &FilterStateStore{client: client, ttl: ttl}
}

// Get returns the saved state and slides its expiry, or Defaults when the
// session has none.
func (s *FilterStateStore) Get(ctx context.Context, sessionID string) (domain.FilterState, error) {
	data, err := s.client.GetEx(ctx, filtersKeyPrefix+sessionID, s.ttl).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Defaults(), nil
		}
		return domain.FilterState{}, fmt.Errorf("redis get filter state: %w", err)
	}

	var state domain.FilterState
	if err := json.Unmarshal(data, &state); err != nil {
		return domain.FilterState{}, fmt.Errorf("unmarshal filter state: %w", err)
	}
	return state.Normalized(), nil
}

// Save persists the state with the configured TTL.
func (s *FilterStateStore) Save(ctx context.Context, sessionID string, state domain.FilterState) error {
	data, err := json.Marshal(state.Normalized())
	if err != nil {
		return fmt.Errorf("marshal filter state: %w", err)
	}
	if err := s.client.Set(ctx, filtersKeyPrefix+sessionID, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set filter state: %w", err)
	}
	return nil
}

// Delete removes the session's state. Deleting nothing is not an error.
func (s *FilterStateStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, filtersKeyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("redis del filter state: %w", err)
	}
	return nil
}
