package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JamesLuiz/abuja-connect-shop-sub000/internal/domain"
)

func TestCompare(t *testing.T) {
	listings := []domain.Listing{
		{ID: "p-1", Price: 12000, Rating: 4.5, ReviewCount: 80, DiscountPercent: 10},
		{ID: "p-2", Price: 9000, Rating: 4.5, ReviewCount: 150},
		{ID: "p-3", Price: 9000, Rating: 4.1, ReviewCount: 150, DiscountPercent: 25},
	}

	c, err := Compare(listings)
	require.NoError(t, err)

	assert.Equal(t, "p-2", c.LowestPriceID, "tie goes to the earliest listing")
	assert.Equal(t, "p-1", c.HighestRatingID)
	assert.Equal(t, "p-2", c.MostReviewsID)
	assert.Equal(t, "p-3", c.BiggestDiscountID)
	assert.InDelta(t, 10000.0, c.AveragePrice, 1e-9)
	assert.InDelta(t, 4.3666, c.AverageRating, 1e-3)
	assert.Len(t, c.Listings, 3)
}

func TestCompare_NoDiscount(t *testing.T) {
	c, err := Compare([]domain.Listing{{ID: "a"}, {ID: "b"}})
	require.NoError(t, err)
	assert.Empty(t, c.BiggestDiscountID)
}

func TestCompare_Bounds(t *testing.T) {
	_, err := Compare([]domain.Listing{{ID: "a"}})
	assert.Error(t, err)

	_, err = Compare(make([]domain.Listing, 5))
	assert.Error(t, err)
}
