package repository

import (
	"context"

	"github.com/JamesLuiz/abuja-connect-shop-sub000/internal/domain"
)

// ListingRepository is the durable source of truth for listings. The
// search engines are rebuilt from it on reindex.
type ListingRepository interface {
	// Upsert inserts a listing or replaces an existing one. A replaced
	// listing keeps its original position.
	Upsert(ctx context.Context, listing *domain.Listing) error

	// UpsertMany upserts listings in one transaction.
	UpsertMany(ctx context.Context, listings []domain.Listing) error

	// GetByID retrieves a listing by its identifier.
	GetByID(ctx context.Context, id string) (*domain.Listing, error)

	// ListAll returns every listing of kind (every kind when empty) in
	// insertion order.
	ListAll(ctx context.Context, kind domain.Kind) ([]domain.Listing, error)

	// Delete removes a listing by its identifier.
	Delete(ctx context.Context, id string) error
}

// FilterStateStore persists the filter state of a browser session.
type FilterStateStore interface {
	// Get returns the saved state, or Defaults when nothing is saved.
	Get(ctx context.Context, sessionID string) (domain.FilterState, error)

	// Save stores the state and refreshes its expiry.
	Save(ctx context.Context, sessionID string, state domain.FilterState) error

	// Delete forgets the session's state.
	Delete(ctx context.Context, sessionID string) error
}
