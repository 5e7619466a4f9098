package http

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JamesLuiz/abuja-connect-shop-sub000/internal/domain"
	"github.com/JamesLuiz/abuja-connect-shop-sub000/internal/service"
)

func listingIDs(t *testing.T, raw json.RawMessage) []string {
	t.Helper()
	var res domain.SearchResult
	require.NoError(t, json.Unmarshal(raw, &res))
	out := make([]string, len(res.Listings))
	for i, l := range res.Listings {
		out[i] = l.ID
	}
	return out
}

func TestSearch_FiltersAndSorts(t *testing.T) {
	ts := newTestServer(t, false)

	w, env := ts.do(t, http.MethodGet, "/api/v1/catalog/listings?kind=product&max_price=20000&sort=price-low", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"p-3", "p-1"}, listingIDs(t, env.Data))
	assert.Equal(t, "public, max-age=30", w.Header().Get("Cache-Control"))

	var res domain.SearchResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, 1, res.ActiveFilterCount)
	assert.Equal(t, "Price: up to ₦20,000", res.ActiveFilters[0].Label)
}

func TestSearch_DefaultsReturnEverythingInOrder(t *testing.T) {
	ts := newTestServer(t, false)

	w, env := ts.do(t, http.MethodGet, "/api/v1/catalog/listings", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"v-1", "v-2", "p-1", "p-2", "p-3"}, listingIDs(t, env.Data))
}

func TestSearch_TextRatingAndFlags(t *testing.T) {
	ts := newTestServer(t, false)

	w, env := ts.do(t, http.MethodGet, "/api/v1/catalog/listings?q=GARKI&rating=4.5%2B&in_stock=true", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"v-2", "p-2"}, listingIDs(t, env.Data))

	w, env = ts.do(t, http.MethodGet, "/api/v1/catalog/listings?kind=vendor&verified=1&location=Wuse", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"v-1"}, listingIDs(t, env.Data))
}

func TestSearch_Paginates(t *testing.T) {
	ts := newTestServer(t, false)

	w, env := ts.do(t, http.MethodGet, "/api/v1/catalog/listings?per_page=2&page=2", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"p-1", "p-2"}, listingIDs(t, env.Data))
}

func TestSearch_HugePageIsEmptyNotAnError(t *testing.T) {
	ts := newTestServer(t, false)

	w, env := ts.do(t, http.MethodGet, "/api/v1/catalog/listings?page=9223372036854775807&per_page=100", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, listingIDs(t, env.Data))
}

func TestSearch_RejectsMalformedParams(t *testing.T) {
	ts := newTestServer(t, false)

	tests := []struct {
		query string
		param string
	}{
		{"kind=stall", "kind"},
		{"min_price=abc", "min_price"},
		{"max_price=-5", "max_price"},
		{"min_price=500&max_price=100", "min_price"},
		{"rating=great", "rating"},
		{"rating=6%2B", "rating"},
		{"sort=random", "sort"},
		{"verified=maybe", "verified"},
		{"in_stock=2", "in_stock"},
		{"page=0", "page"},
		{"per_page=x", "per_page"},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w, env := ts.do(t, http.MethodGet, "/api/v1/catalog/listings?"+tt.query, nil, "")
			assert.Equal(t, http.StatusBadRequest, w.Code)
			require.NotNil(t, env.Error)
			assert.Equal(t, "INVALID_PARAMETER", env.Error.Code)
			assert.Contains(t, env.Error.Fields, tt.param)
		})
	}
}

func TestGetListing(t *testing.T) {
	ts := newTestServer(t, false)

	w, env := ts.do(t, http.MethodGet, "/api/v1/catalog/listings/p-1", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var l domain.Listing
	require.NoError(t, json.Unmarshal(env.Data, &l))
	assert.Equal(t, "ankara-gown", l.Slug)

	w, env = ts.do(t, http.MethodGet, "/api/v1/catalog/listings/nope", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestFacets(t *testing.T) {
	ts := newTestServer(t, false)

	w, env := ts.do(t, http.MethodGet, "/api/v1/catalog/facets?kind=product", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var f domain.FacetSummary
	require.NoError(t, json.Unmarshal(env.Data, &f))
	assert.Equal(t, 3, f.Total)
	assert.Equal(t, []domain.FacetOption{{Value: "Electronics", Count: 2}, {Value: "Fashion", Count: 1}}, f.Categories)

	w, _ = ts.do(t, http.MethodGet, "/api/v1/catalog/facets?kind=stall", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSuggest(t *testing.T) {
	ts := newTestServer(t, false)

	w, env := ts.do(t, http.MethodGet, "/api/v1/catalog/suggest?q=w&limit=5", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var s SuggestResponse
	require.NoError(t, json.Unmarshal(env.Data, &s))
	assert.Equal(t, []string{"Wuse Fashion House", "Wireless Earbuds"}, s.Suggestions)

	w, _ = ts.do(t, http.MethodGet, "/api/v1/catalog/suggest?q=w&limit=-1", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCompare(t *testing.T) {
	ts := newTestServer(t, false)

	w, env := ts.do(t, http.MethodPost, "/api/v1/catalog/compare", CompareRequest{IDs: []string{"p-1", "p-2"}}, "")
	require.Equal(t, http.StatusOK, w.Code)
	var cmp domain.Comparison
	require.NoError(t, json.Unmarshal(env.Data, &cmp))
	assert.Equal(t, "p-1", cmp.LowestPriceID)
	assert.Equal(t, "p-2", cmp.MostReviewsID)

	w, env = ts.do(t, http.MethodPost, "/api/v1/catalog/compare", CompareRequest{IDs: []string{"p-1"}}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	assert.Contains(t, env.Error.Fields, "ids")

	w, _ = ts.do(t, http.MethodPost, "/api/v1/catalog/compare", `{"ids":`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = ts.do(t, http.MethodPost, "/api/v1/catalog/compare", CompareRequest{IDs: []string{"p-1", "ghost"}}, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAssistant(t *testing.T) {
	ts := newTestServer(t, false)

	w, env := ts.do(t, http.MethodPost, "/api/v1/catalog/assistant", service.AssistRequest{Message: "electronics in garki under 100k"}, "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp service.AssistResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	require.NotNil(t, resp.Result)
	require.Len(t, resp.Result.Listings, 1)
	assert.Equal(t, "p-3", resp.Result.Listings[0].ID)
	assert.Equal(t, "I found 1 products in Electronics around Garki under ₦100,000.", resp.Reply)
}

func TestAssistant_OversizedBudgetFindsNothing(t *testing.T) {
	ts := newTestServer(t, false)

	w, env := ts.do(t, http.MethodPost, "/api/v1/catalog/assistant", service.AssistRequest{Message: "phones under 99999999999999999999"}, "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp service.AssistResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	require.NotNil(t, resp.Result)
	assert.Empty(t, resp.Result.Listings)
	assert.Equal(t, 20, resp.Result.PerPage)
}

func TestSessionFilters(t *testing.T) {
	ts := newTestServer(t, false)
	path := "/api/v1/catalog/sessions/sess-42/filters"

	w, env := ts.do(t, http.MethodGet, path, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	var f domain.FilterState
	require.NoError(t, json.Unmarshal(env.Data, &f))
	assert.Equal(t, domain.Defaults(), f)

	w, _ = ts.do(t, http.MethodPut, path, domain.FilterState{Category: "Fashion", MinRating: "4+"}, "")
	require.Equal(t, http.StatusOK, w.Code)

	w, env = ts.do(t, http.MethodGet, path, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &f))
	assert.Equal(t, "Fashion", f.Category)
	assert.Equal(t, "4+", f.MinRating)

	w, env = ts.do(t, http.MethodPut, path, domain.FilterState{MinRating: "lots"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, env.Error)
	assert.Contains(t, env.Error.Fields, "min_rating")

	w, env = ts.do(t, http.MethodDelete, path, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &f))
	assert.Equal(t, domain.Defaults(), f)

	w, _ = ts.do(t, http.MethodGet, "/api/v1/catalog/sessions/bad%20id/filters", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
