package engine

import (
	"context"

	"github.com/JamesLuiz/abuja-connect-shop-sub000/internal/domain"
)

// CatalogEngine indexes listings and answers catalog queries.
// Implementations may use Elasticsearch, in-memory storage, or other backends.
type CatalogEngine interface {
	// Index adds or replaces a single listing.
	Index(ctx context.Context, listing *domain.Listing) error

	// BulkIndex adds or replaces many listings.
	BulkIndex(ctx context.Context, listings []domain.Listing) error

	// Delete removes a listing. Deleting an unknown ID is not an error.
	Delete(ctx context.Context, id string) error

	// Get returns one listing or an error wrapping apperrors.ErrNotFound.
	Get(ctx context.Context, id string) (*domain.Listing, error)

	// Search runs the filter/sort pipeline and returns one page.
	Search(ctx context.Context, query *domain.SearchQuery) (*domain.SearchResult, error)

	// All returns every listing of kind (every kind when empty) in index order.
	All(ctx context.Context, kind domain.Kind) ([]domain.Listing, error)

	// Suggest returns up to limit distinct names starting with prefix.
	Suggest(ctx context.Context, prefix string, limit int) ([]string, error)
}

// Pinger is implemented by engines backed by a remote cluster.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Engine names accepted by configuration.
const (
	Memory        = "memory"
	Elasticsearch = "elasticsearch"
)
