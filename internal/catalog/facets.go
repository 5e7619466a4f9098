package catalog

import (
	"cmp"
	"slices"

	"github.com/JamesLuiz/abuja-connect-shop-sub000/internal/domain"
)

// Facets computes filter options over listings. Options are ordered by
// count descending, then value ascending. Empty values are skipped.
func Facets(kind domain.Kind, listings []domain.Listing) domain.FacetSummary {
	s := domain.FacetSummary{Kind: kind, Total: len(listings)}
	categories := map[string]int{}
	locations := map[string]int{}

	for i := range listings {
		l := &listings[i]
		if l.Category != "" {
			categories[l.Category]++
		}
		if l.Location != "" {
			locations[l.Location]++
		}
		if i == 0 || l.Price < s.MinPrice {
			s.MinPrice = l.Price
		}
		if l.Price > s.MaxPrice {
			s.MaxPrice = l.Price
		}
		if l.Verified {
			s.Verified++
		}
		if l.InStock {
			s.InStock++
		} else {
			s.OutOfStock++
		}
	}

	s.Categories = options(categories)
	s.Locations = options(locations)
	return s
}

func options(counts map[string]int) []domain.FacetOption {
	out := make([]domain.FacetOption, 0, len(counts))
	for v, n := range counts {
		out = append(out, domain.FacetOption{Value: v, Count: n})
	}
	slices.SortFunc(out, func(a, b domain.FacetOption) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Value, b.Value)
	})
	return out
}

// Vocabulary returns the distinct categories and locations in listings,
// for matching free text against known values.
func Vocabulary(listings []domain.Listing) (categories, locations []string) {
	f := Facets("", listings)
	for _, o := range f.Categories {
		categories = append(categories, o.Value)
	}
	for _, o := range f.Locations {
		locations = append(locations, o.Value)
	}
	return categories, locations
}
