// Package catalog is the filter/sort pipeline shared by every catalog view:
// vendor directory, category pages, product search and comparison.
// All functions are pure and never modify their input.
package catalog

import (
	"cmp"
	"slices"
	"strings"

	"github.com/JamesLuiz/abuja-connect-shop-sub000/internal/domain"
)

// Predicate is one active filter dimension.
type Predicate struct {
	Name  string
	Match func(*domain.Listing) bool
}

// Predicates returns the predicates for the dimensions of f that differ
// from their defaults. A malformed rating floor yields a predicate that
// matches nothing.
func Predicates(f domain.FilterState) []Predicate {
	f = f.Normalized()
	preds := make([]Predicate, 0, 8)

	if f.Query != "" {
		q := strings.ToLower(f.Query)
		preds = append(preds, Predicate{"query", func(l *domain.Listing) bool {
			return containsFold(l.Name, q) || containsFold(l.Description, q) ||
				containsFold(l.Category, q) || containsFold(l.Location, q)
		}})
	}
	if f.Category != domain.All {
		category := f.Category
		preds = append(preds, Predicate{"category", func(l *domain.Listing) bool { return l.Category == category }})
	}
	if f.Location != domain.All {
		location := f.Location
		preds = append(preds, Predicate{"location", func(l *domain.Listing) bool { return l.Location == location }})
	}
	if f.MinPrice != nil {
		lo := *f.MinPrice
		preds = append(preds, Predicate{"min_price", func(l *domain.Listing) bool { return l.Price >= lo }})
	}
	if f.MaxPrice != nil {
		hi := *f.MaxPrice
		preds = append(preds, Predicate{"max_price", func(l *domain.Listing) bool { return l.Price <= hi }})
	}
	if threshold, active, err := domain.ParseRatingFloor(f.MinRating); active {
		match := func(l *domain.Listing) bool { return l.Rating >= threshold }
		if err != nil {
			match = func(*domain.Listing) bool { return false }
		}
		preds = append(preds, Predicate{"rating", match})
	}
	if f.VerifiedOnly {
		preds = append(preds, Predicate{"verified", func(l *domain.Listing) bool { return l.Verified }})
	}
	if f.InStockOnly {
		preds = append(preds, Predicate{"in_stock", func(l *domain.Listing) bool { return l.InStock }})
	}
	return preds
}

func containsFold(s, lowerQuery string) bool {
	return strings.Contains(strings.ToLower(s), lowerQuery)
}

// Matches reports whether l satisfies every predicate.
func Matches(l *domain.Listing, preds []Predicate) bool {
	for _, p := range preds {
		if !p.Match(l) {
			return false
		}
	}
	return true
}

// Filter returns the listings matching every active dimension of f, in
// input order.
func Filter(listings []domain.Listing, f domain.FilterState) []domain.Listing {
	preds := Predicates(f)
	out := make([]domain.Listing, 0, len(listings))
	for i := range listings {
		if Matches(&listings[i], preds) {
			out = append(out, listings[i])
		}
	}
	return out
}

// CompareFunc orders two listings by a primary key only.
type CompareFunc func(a, b *domain.Listing) int

var comparators = map[string]CompareFunc{
	domain.SortFeatured:  nil,
	domain.SortPopular:   func(a, b *domain.Listing) int { return cmp.Compare(b.Popularity(), a.Popularity()) },
	domain.SortRating:    func(a, b *domain.Listing) int { return cmp.Compare(b.Rating, a.Rating) },
	domain.SortReviews:   func(a, b *domain.Listing) int { return cmp.Compare(b.ReviewCount, a.ReviewCount) },
	domain.SortPriceLow:  func(a, b *domain.Listing) int { return cmp.Compare(a.Price, b.Price) },
	domain.SortPriceHigh: func(a, b *domain.Listing) int { return cmp.Compare(b.Price, a.Price) },
	domain.SortNewest:    func(a, b *domain.Listing) int { return b.Recency().Compare(a.Recency()) },
}

// Comparator looks up the primary ordering for a sort key. Featured has
// no comparator (input order); ok is false for unknown keys.
func Comparator(sortKey string) (CompareFunc, bool) {
	if sortKey == "" {
		sortKey = domain.SortFeatured
	}
	c, ok := comparators[sortKey]
	return c, ok
}

// Sort returns a copy of listings ordered by sortKey. Equal primary keys
// are ordered by ID ascending. Featured and unknown keys keep input order.
func Sort(listings []domain.Listing, sortKey string) []domain.Listing {
	out := slices.Clone(listings)
	if out == nil {
		out = []domain.Listing{}
	}
	primary, _ := Comparator(sortKey)
	if primary == nil {
		return out
	}
	slices.SortStableFunc(out, func(a, b domain.Listing) int {
		if c := primary(&a, &b); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out
}

// Apply filters then sorts.
func Apply(listings []domain.Listing, f domain.FilterState) []domain.Listing {
	f = f.Normalized()
	return Sort(Filter(listings, f), f.Sort)
}

// ActiveFilterCount is the number of filter dimensions of f that differ
// from the defaults.
func ActiveFilterCount(f domain.FilterState) int {
	return len(f.ActiveFilters())
}
