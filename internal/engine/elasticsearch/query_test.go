package elasticsearch

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JamesLuiz/abuja-connect-shop-sub000/internal/domain"
)

func ptr(v int64) *int64 { return &v }

// roundTrip renders the DSL as JSON so assertions see what Elasticsearch sees.
func roundTrip(t *testing.T, v any) map[string]any {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func TestBuildBoolQuery_DefaultsMatchAll(t *testing.T) {
	q := roundTrip(t, buildBoolQuery("", domain.Defaults()))
	assert.Contains(t, q, "match_all")
}

func TestBuildBoolQuery_AllDimensions(t *testing.T) {
	f := domain.FilterState{
		Query:        "Ank*ra",
		Category:     "Fashion",
		Location:     "Wuse",
		MinPrice:     ptr(1000),
		MaxPrice:     ptr(5000),
		MinRating:    "4.5+",
		VerifiedOnly: true,
		InStockOnly:  true,
	}
	q := roundTrip(t, buildBoolQuery(domain.KindProduct, f))

	filters := q["bool"].(map[string]any)["filter"].([]any)
	require.Len(t, filters, 8)

	assert.Equal(t, map[string]any{"term": map[string]any{"kind": "product"}}, filters[0])

	should := filters[1].(map[string]any)["bool"].(map[string]any)["should"].([]any)
	require.Len(t, should, len(textFields))
	wildcard := should[0].(map[string]any)["wildcard"].(map[string]any)["name.keyword"].(map[string]any)
	assert.Equal(t, `*ank\*ra*`, wildcard["value"])
	assert.Equal(t, true, wildcard["case_insensitive"])

	assert.Equal(t, map[string]any{"term": map[string]any{"category": "Fashion"}}, filters[2])
	assert.Equal(t, map[string]any{"term": map[string]any{"location": "Wuse"}}, filters[3])
	assert.Equal(t, map[string]any{"range": map[string]any{"price": map[string]any{"gte": 1000.0, "lte": 5000.0}}}, filters[4])
	assert.Equal(t, map[string]any{"range": map[string]any{"rating": map[string]any{"gte": 4.5}}}, filters[5])
	assert.Equal(t, map[string]any{"term": map[string]any{"verified": true}}, filters[6])
	assert.Equal(t, map[string]any{"term": map[string]any{"in_stock": true}}, filters[7])
}

func TestBuildBoolQuery_MalformedRatingMatchesNothing(t *testing.T) {
	q := roundTrip(t, buildBoolQuery("", domain.FilterState{MinRating: "lots"}))
	assert.Contains(t, q, "match_none")
}

func TestBuildSort(t *testing.T) {
	tests := []struct {
		key   string
		field string
		order string
	}{
		{domain.SortFeatured, "created_at", "asc"},
		{"", "created_at", "asc"},
		{domain.SortPopular, "popularity", "desc"},
		{domain.SortRating, "rating", "desc"},
		{domain.SortReviews, "review_count", "desc"},
		{domain.SortPriceLow, "price", "asc"},
		{domain.SortPriceHigh, "price", "desc"},
		{domain.SortNewest, "established_at", "desc"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			s := buildSort(tt.key)
			require.Len(t, s, 2)
			assert.Equal(t, map[string]any{tt.field: tt.order}, s[0])
			assert.Equal(t, map[string]any{"id": "asc"}, s[1], "id breaks ties")
		})
	}
}

func TestBuildSearchQuery_Pagination(t *testing.T) {
	q := buildSearchQuery(&domain.SearchQuery{}, 40, 20)
	assert.Equal(t, 40, q["from"])
	assert.Equal(t, 20, q["size"])
	assert.Equal(t, true, q["track_total_hits"])
}

func TestBuildScanQuery(t *testing.T) {
	q := &domain.SearchQuery{Kind: domain.KindVendor, Filters: domain.Defaults()}

	first := roundTrip(t, buildScanQuery(q, nil, 1000))
	assert.NotContains(t, first, "from")
	assert.NotContains(t, first, "search_after")
	assert.Equal(t, float64(1000), first["size"])
	assert.Equal(t, false, first["track_total_hits"])

	next := roundTrip(t, buildScanQuery(q, []byte(`[1700000000000,"v-9"]`), 1000))
	assert.Equal(t, []any{float64(1700000000000), "v-9"}, next["search_after"])
	assert.Equal(t, []any{
		map[string]any{"created_at": "asc"},
		map[string]any{"id": "asc"},
	}, next["sort"])
}
