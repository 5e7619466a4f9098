package elasticsearch_test

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JamesLuiz/abuja-connect-shop-sub000/internal/domain"
	esengine "github.com/JamesLuiz/abuja-connect-shop-sub000/internal/engine/elasticsearch"
)

func newTestEngine(t *testing.T) *esengine.Engine {
	t.Helper()

	url := os.Getenv("ELASTICSEARCH_URL")
	if url == "" {
		t.Skip("ELASTICSEARCH_URL not set, skipping Elasticsearch integration tests")
	}

	index := fmt.Sprintf("test_catalog_%d", time.Now().UnixNano())
	eng, err := esengine.New(context.Background(), url, index, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	t.Cleanup(func() { _ = eng.DeleteIndex(context.Background()) })
	return eng
}

func TestES_FilterAndSort(t *testing.T) {
	eng := newTestEngine(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, eng.BulkIndex(ctx, []domain.Listing{
		{ID: "a", Kind: domain.KindProduct, Name: "Ankara Gown", Price: 1000, Rating: 4.0, CreatedAt: base},
		{ID: "b", Kind: domain.KindProduct, Name: "Lace Blouse", Price: 2000, Rating: 4.8, CreatedAt: base.Add(time.Hour)},
	}))

	ceiling := int64(1500)
	tests := []struct {
		name string
		f    domain.FilterState
		want []string
	}{
		{"price range", domain.FilterState{MinPrice: new(int64), MaxPrice: &ceiling}, []string{"a"}},
		{"rating floor", domain.FilterState{MinRating: "4.5+"}, []string{"b"}},
		{"both", domain.FilterState{MaxPrice: &ceiling, MinRating: "4.5+"}, []string{}},
		{"substring, any case", domain.FilterState{Query: "KARA"}, []string{"a"}},
		{"price-high", domain.FilterState{Sort: domain.SortPriceHigh}, []string{"b", "a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := eng.Search(ctx, &domain.SearchQuery{Kind: domain.KindProduct, Filters: tt.f})
			require.NoError(t, err)
			got := []string{}
			for _, l := range res.Listings {
				got = append(got, l.ID)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
