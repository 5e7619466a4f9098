// Package service holds the catalog use cases shared by the HTTP handlers,
// the Kafka consumers and the operator CLI.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/JamesLuiz/abuja-connect-shop-sub000/internal/catalog"
	"github.com/JamesLuiz/abuja-connect-shop-sub000/internal/domain"
	"github.com/JamesLuiz/abuja-connect-shop-sub000/internal/engine"
	"github.com/JamesLuiz/abuja-connect-shop-sub000/internal/repository"
	apperrors "github.com/JamesLuiz/abuja-connect-shop-sub000/pkg/errors"
	"github.com/JamesLuiz/abuja-connect-shop-sub000/pkg/pagination"
	"github.com/JamesLuiz/abuja-connect-shop-sub000/pkg/validator"
)

const (
	defaultSuggestLimit = 10
	maxSuggestLimit     = 50
)

// Feed supplies listings for a reindex when no repository is configured.
type Feed interface {
	All(ctx context.Context) ([]domain.Listing, error)
}

// EventPublisher announces completed reindex runs.
type EventPublisher interface {
	PublishReindexed(ctx context.Context, summary ReindexSummary) error
}

// Deps are the collaborators of CatalogService. Only Engine and Logger are
// required.
type Deps struct {
	Engine    engine.CatalogEngine
	Repo      repository.ListingRepository
	Filters   repository.FilterStateStore
	Feed      Feed
	Publisher EventPublisher
	Metrics   *Metrics
	Logger    *slog.Logger
	// BaseContext bounds background reindex runs. Defaults to Background.
	BaseContext context.Context
}

// CatalogService implements catalog search, listing lifecycle and
// per-session filter state.
type CatalogService struct {
	engine    engine.CatalogEngine
	repo      repository.ListingRepository
	filters   repository.FilterStateStore
	feed      Feed
	publisher EventPublisher
	metrics   *Metrics
	logger    *slog.Logger
	baseCtx   context.Context
	now       func() time.Time

	reindexing atomic.Bool
	background sync.WaitGroup
}

// NewCatalogService creates a catalog service.
func NewCatalogService(d Deps) *CatalogService {
	if d.BaseContext == nil {
		d.BaseContext = context.Background()
	}
	return &CatalogService{
		engine:    d.Engine,
		repo:      d.Repo,
		filters:   d.Filters,
		feed:      d.Feed,
		publisher: d.Publisher,
		metrics:   d.Metrics,
		logger:    d.Logger,
		baseCtx:   d.BaseContext,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Search validates the query, runs it through the engine and attaches the
// active-filter badges.
func (s *CatalogService) Search(ctx context.Context, query *domain.SearchQuery) (*domain.SearchResult, error) {
	if query.Kind != "" && !query.Kind.Valid() {
		return nil, apperrors.InvalidInput(fmt.Sprintf("unknown listing kind %q", query.Kind))
	}
	if err := validator.Validate(&query.Filters); err != nil {
		return nil, err
	}

	q := *query
	q.Filters = q.Filters.Normalized()
	p := pagination.Params{Page: q.Page, PerPage: q.PerPage}.Normalize()
	q.Page, q.PerPage = p.Page, p.PerPage

	result, err := s.engine.Search(ctx, &q)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	if result.Listings == nil {
		result.Listings = []domain.Listing{}
	}
	result.ActiveFilters = q.Filters.ActiveFilters()
	result.ActiveFilterCount = len(result.ActiveFilters)

	s.metrics.search(string(q.Kind), q.Filters.Sort, result.Total)
	s.logger.DebugContext(ctx, "catalog search executed",
		slog.String("kind", string(q.Kind)),
		slog.String("query", q.Filters.Query),
		slog.String("sort", q.Filters.Sort),
		slog.Int("active_filters", result.ActiveFilterCount),
		slog.Int("total", result.Total),
		slog.Int64("took_ms", result.TookMs),
	)
	return result, nil
}

// GetListing returns one listing.
func (s *CatalogService) GetListing(ctx context.Context, id string) (*domain.Listing, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperrors.InvalidInput("listing id is required")
	}
	l, err := s.engine.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get listing: %w", err)
	}
	return l, nil
}

// Facets summarizes the filter options over every listing of kind.
func (s *CatalogService) Facets(ctx context.Context, kind domain.Kind) (*domain.FacetSummary, error) {
	if kind != "" && !kind.Valid() {
		return nil, apperrors.InvalidInput(fmt.Sprintf("unknown listing kind %q", kind))
	}
	listings, err := s.engine.All(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("facets: %w", err)
	}
	summary := catalog.Facets(kind, listings)
	return &summary, nil
}

// Suggest returns listing names starting with prefix. A blank prefix
// yields no suggestions.
func (s *CatalogService) Suggest(ctx context.Context, prefix string, limit int) ([]string, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return []string{}, nil
	}
	if limit <= 0 {
		limit = defaultSuggestLimit
	}
	limit = min(limit, maxSuggestLimit)

	names, err := s.engine.Suggest(ctx, prefix, limit)
	if err != nil {
		return nil, fmt.Errorf("suggest: %w", err)
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}

// Compare summarizes 2 to 4 listings in request order. Repeated IDs count once.
func (s *CatalogService) Compare(ctx context.Context, ids []string) (*domain.Comparison, error) {
	seen := make(map[string]bool, len(ids))
	unique := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		unique = append(unique, id)
	}
	if len(unique) < domain.MinCompare || len(unique) > domain.MaxCompare {
		return nil, apperrors.InvalidInput(fmt.Sprintf("compare needs %d to %d distinct listing ids", domain.MinCompare, domain.MaxCompare))
	}

	listings := make([]domain.Listing, 0, len(unique))
	for _, id := range unique {
		l, err := s.engine.Get(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("compare: %w", err)
		}
		listings = append(listings, *l)
	}

	cmp, err := catalog.Compare(listings)
	if err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}
	return &cmp, nil
}
