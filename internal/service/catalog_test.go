package service

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JamesLuiz/abuja-connect-shop-sub000/internal/domain"
	"github.com/JamesLuiz/abuja-connect-shop-sub000/internal/engine/memory"
	apperrors "github.com/JamesLuiz/abuja-connect-shop-sub000/pkg/errors"
	"github.com/JamesLuiz/abuja-connect-shop-sub000/pkg/validator"
)

func seeded(t *testing.T) *CatalogService {
	t.Helper()
	svc, _ := newTestService(t)
	_, err := svc.Seed(context.Background(), sampleListings())
	require.NoError(t, err)
	return svc
}

func ids(listings []domain.Listing) []string {
	out := make([]string, len(listings))
	for i, l := range listings {
		out[i] = l.ID
	}
	return out
}

func TestCatalogService_Search_ScopesByKindAndAttachesBadges(t *testing.T) {
	svc := seeded(t)

	f := domain.Defaults()
	f.Category = "Electronics"
	f.VerifiedOnly = true
	f.Sort = domain.SortPriceLow

	res, err := svc.Search(context.Background(), &domain.SearchQuery{Kind: domain.KindProduct, Filters: f})
	require.NoError(t, err)

	assert.Equal(t, []string{"p-3", "p-2"}, ids(res.Listings))
	assert.Equal(t, 2, res.Total)
	assert.Equal(t, 1, res.Page)
	assert.Equal(t, 20, res.PerPage)
	assert.Equal(t, 2, res.ActiveFilterCount)
	require.Len(t, res.ActiveFilters, 2)
	assert.Equal(t, "category", res.ActiveFilters[0].Key)
	assert.Equal(t, "verified", res.ActiveFilters[1].Key)
}

func TestCatalogService_Search_EmptyFiltersReturnInputOrder(t *testing.T) {
	svc := seeded(t)

	res, err := svc.Search(context.Background(), &domain.SearchQuery{})
	require.NoError(t, err)
	assert.Equal(t, ids(sampleListings()), ids(res.Listings))
	assert.Zero(t, res.ActiveFilterCount)
	assert.Empty(t, res.ActiveFilters)
}

func TestCatalogService_Search_RejectsInvalidQueries(t *testing.T) {
	svc := seeded(t)

	_, err := svc.Search(context.Background(), &domain.SearchQuery{Kind: "stall"})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))

	_, err = svc.Search(context.Background(), &domain.SearchQuery{Filters: domain.FilterState{MinRating: "great"}})
	var ve *validator.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields(), "min_rating")

	_, err = svc.Search(context.Background(), &domain.SearchQuery{Filters: domain.FilterState{Sort: "random"}})
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields(), "sort")
}

func TestCatalogService_Search_RecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	eng := memory.New()
	svc := NewCatalogService(Deps{Engine: eng, Metrics: metrics, Logger: discardLogger()})
	_, err := svc.Seed(context.Background(), sampleListings())
	require.NoError(t, err)

	_, err = svc.Search(context.Background(), &domain.SearchQuery{Kind: domain.KindVendor})
	require.NoError(t, err)
	_, err = svc.Search(context.Background(), &domain.SearchQuery{Kind: domain.KindVendor})
	require.NoError(t, err)

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.searches.WithLabelValues("vendor", domain.SortFeatured)))
	assert.Equal(t, 6.0, testutil.ToFloat64(metrics.indexed.WithLabelValues(SourceFixtures)))
}

func TestCatalogService_GetListing(t *testing.T) {
	svc := seeded(t)

	l, err := svc.GetListing(context.Background(), "p-1")
	require.NoError(t, err)
	assert.Equal(t, "Ankara Gown", l.Name)
	assert.Equal(t, 26, l.DiscountPercent)

	_, err = svc.GetListing(context.Background(), "missing")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	_, err = svc.GetListing(context.Background(), " ")
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

func TestCatalogService_Facets(t *testing.T) {
	svc := seeded(t)

	f, err := svc.Facets(context.Background(), domain.KindProduct)
	require.NoError(t, err)
	assert.Equal(t, 3, f.Total)
	assert.Equal(t, domain.FacetOption{Value: "Electronics", Count: 2}, f.Categories[0])
	assert.Equal(t, int64(4000), f.MinPrice)
	assert.Equal(t, int64(145000), f.MaxPrice)

	_, err = svc.Facets(context.Background(), "stall")
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

func TestCatalogService_Suggest(t *testing.T) {
	svc := seeded(t)

	names, err := svc.Suggest(context.Background(), "ank", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Ankara Gown", "Ankara Earbuds Case"}, names)

	names, err = svc.Suggest(context.Background(), "ank", 1)
	require.NoError(t, err)
	assert.Len(t, names, 1)

	names, err = svc.Suggest(context.Background(), "  ", 5)
	require.NoError(t, err)
	assert.Empty(t, names)
	assert.NotNil(t, names)
}

func TestCatalogService_Compare(t *testing.T) {
	svc := seeded(t)

	cmp, err := svc.Compare(context.Background(), []string{"p-1", "p-2", "p-1", "p-3"})
	require.NoError(t, err)
	assert.Equal(t, []string{"p-1", "p-2", "p-3"}, ids(cmp.Listings))
	assert.Equal(t, "p-3", cmp.LowestPriceID)
	assert.Equal(t, "p-1", cmp.HighestRatingID)
	assert.Equal(t, "p-2", cmp.MostReviewsID)
	assert.Equal(t, "p-1", cmp.BiggestDiscountID)

	_, err = svc.Compare(context.Background(), []string{"p-1", "p-1"})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))

	_, err = svc.Compare(context.Background(), []string{"p-1", "v-1", "v-2", "v-3", "p-2"})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))

	_, err = svc.Compare(context.Background(), []string{"p-1", "nope"})
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}
