package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/JamesLuiz/abuja-connect-shop-sub000/internal/catalog"
	"github.com/JamesLuiz/abuja-connect-shop-sub000/internal/domain"
	apperrors "github.com/JamesLuiz/abuja-connect-shop-sub000/pkg/errors"
	"github.com/JamesLuiz/abuja-connect-shop-sub000/pkg/pagination"
)

// Engine is an in-memory catalog engine. Listings keep their first
// insertion position, which is the "featured" order. Thread-safe via
// sync.RWMutex.
type Engine struct {
	mu       sync.RWMutex
	order    []string
	listings map[string]domain.Listing
}

// New creates an empty in-memory engine.
func New() *Engine {
	return &Engine{listings: make(map[string]domain.Listing)}
}

// Index adds or replaces a listing. Replacing keeps the original position.
func (e *Engine) Index(_ context.Context, listing *domain.Listing) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.put(*listing)
	return nil
}

// BulkIndex adds or replaces listings under one lock.
func (e *Engine) BulkIndex(_ context.Context, listings []domain.Listing) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i := range listings {
		e.put(listings[i])
	}
	return nil
}

func (e *Engine) put(l domain.Listing) {
	if _, exists := e.listings[l.ID]; !exists {
		e.order = append(e.order, l.ID)
	}
	e.listings[l.ID] = l
}

// Delete removes a listing by ID.
func (e *Engine) Delete(_ context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.listings[id]; !ok {
		return nil
	}
	delete(e.listings, id)
	for i, v := range e.order {
		if v == id {
			e.order = append(e.order[:i], e.order[i+1:]...)
			break
		}
	}
	return nil
}

// Get returns a copy of one listing.
func (e *Engine) Get(_ context.Context, id string) (*domain.Listing, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	l, ok := e.listings[id]
	if !ok {
		return nil, apperrors.NotFound("listing", id)
	}
	return &l, nil
}

// Search scopes by kind, applies the catalog pipeline and paginates.
func (e *Engine) Search(ctx context.Context, query *domain.SearchQuery) (*domain.SearchResult, error) {
	start := time.Now()

	scoped, err := e.All(ctx, query.Kind)
	if err != nil {
		return nil, err
	}
	matched := catalog.Apply(scoped, query.Filters)

	p := pagination.Params{Page: query.Page, PerPage: query.PerPage}.Normalize()
	return &domain.SearchResult{
		Listings: pagination.Paginate(matched, p),
		Total:    len(matched),
		Page:     p.Page,
		PerPage:  p.PerPage,
		TookMs:   time.Since(start).Milliseconds(),
	}, nil
}

// All returns listings of kind in insertion order.
func (e *Engine) All(_ context.Context, kind domain.Kind) ([]domain.Listing, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]domain.Listing, 0, len(e.order))
	for _, id := range e.order {
		l := e.listings[id]
		if kind == "" || l.Kind == kind {
			out = append(out, l)
		}
	}
	return out, nil
}

// Suggest returns distinct names with a case-insensitive prefix match, in
// insertion order.
func (e *Engine) Suggest(_ context.Context, prefix string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 10
	}
	p := strings.ToLower(strings.TrimSpace(prefix))
	if p == "" {
		return []string{}, nil
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	seen := make(map[string]struct{})
	names := make([]string, 0, limit)
	for _, id := range e.order {
		name := e.listings[id].Name
		if !strings.HasPrefix(strings.ToLower(name), p) {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
		if len(names) == limit {
			break
		}
	}
	return names, nil
}

// Len returns the number of indexed listings.
func (e *Engine) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.order)
}
