package elasticsearch

import (
	"encoding/json"
	"strings"

	"github.com/JamesLuiz/abuja-connect-shop-sub000/internal/domain"
)

// textFields are searched by the free-text query. Category and location
// are keywords already.
var textFields = []string{"name.keyword", "description.keyword", "category", "location"}

var wildcardEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`)

// buildSearchQuery translates a SearchQuery into query DSL mirroring the
// in-memory pipeline.
func buildSearchQuery(q *domain.SearchQuery, from, size int) map[string]any {
	return map[string]any{
		"query":            buildBoolQuery(q.Kind, q.Filters),
		"sort":             buildSort(q.Filters.Sort),
		"from":             from,
		"size":             size,
		"track_total_hits": true,
	}
}

// buildScanQuery is one step of a search_after scan. The sort ends on id,
// so the cursor is unique.
func buildScanQuery(q *domain.SearchQuery, after []byte, size int) map[string]any {
	body := map[string]any{
		"query":            buildBoolQuery(q.Kind, q.Filters),
		"sort":             buildSort(q.Filters.Sort),
		"size":             size,
		"track_total_hits": false,
	}
	if len(after) > 0 {
		body["search_after"] = json.RawMessage(after)
	}
	return body
}

func buildBoolQuery(kind domain.Kind, f domain.FilterState) map[string]any {
	f = f.Normalized()
	var filters []any

	if kind != "" {
		filters = append(filters, term("kind", string(kind)))
	}
	if f.Query != "" {
		pattern := "*" + wildcardEscaper.Replace(strings.ToLower(f.Query)) + "*"
		should := make([]any, 0, len(textFields))
		for _, field := range textFields {
			should = append(should, map[string]any{
				"wildcard": map[string]any{
					field: map[string]any{"value": pattern, "case_insensitive": true},
				},
			})
		}
		filters = append(filters, map[string]any{
			"bool": map[string]any{"should": should, "minimum_should_match": 1},
		})
	}
	if f.Category != domain.All {
		filters = append(filters, term("category", f.Category))
	}
	if f.Location != domain.All {
		filters = append(filters, term("location", f.Location))
	}
	if f.MinPrice != nil || f.MaxPrice != nil {
		r := map[string]any{}
		if f.MinPrice != nil {
			r["gte"] = *f.MinPrice
		}
		if f.MaxPrice != nil {
			r["lte"] = *f.MaxPrice
		}
		filters = append(filters, map[string]any{"range": map[string]any{"price": r}})
	}
	if threshold, active, err := domain.ParseRatingFloor(f.MinRating); active {
		if err != nil {
			return map[string]any{"match_none": map[string]any{}}
		}
		filters = append(filters, map[string]any{"range": map[string]any{"rating": map[string]any{"gte": threshold}}})
	}
	if f.VerifiedOnly {
		filters = append(filters, term("verified", true))
	}
	if f.InStockOnly {
		filters = append(filters, term("in_stock", true))
	}

	if len(filters) == 0 {
		return map[string]any{"match_all": map[string]any{}}
	}
	return map[string]any{"bool": map[string]any{"filter": filters}}
}

func term(field string, value any) map[string]any {
	return map[string]any{"term": map[string]any{field: value}}
}

// buildSort mirrors catalog.Sort: the primary key, then id ascending.
// Featured has no stored position, so it orders by creation time.
func buildSort(sortKey string) []any {
	var primary map[string]any
	switch sortKey {
	case domain.SortPopular:
		primary = map[string]any{"popularity": "desc"}
	case domain.SortRating:
		primary = map[string]any{"rating": "desc"}
	case domain.SortReviews:
		primary = map[string]any{"review_count": "desc"}
	case domain.SortPriceLow:
		primary = map[string]any{"price": "asc"}
	case domain.SortPriceHigh:
		primary = map[string]any{"price": "desc"}
	case domain.SortNewest:
		primary = map[string]any{"established_at": "desc"}
	default:
		primary = map[string]any{"created_at": "asc"}
	}
	return []any{primary, map[string]any{"id": "asc"}}
}
