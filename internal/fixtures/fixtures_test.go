package fixtures

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JamesLuiz/abuja-connect-shop-sub000/internal/domain"
	"github.com/JamesLuiz/abuja-connect-shop-sub000/pkg/validator"
)

func TestListings_AreValid(t *testing.T) {
	listings, err := Listings()
	require.NoError(t, err)
	require.NotEmpty(t, listings)

	seen := map[string]bool{}
	for i := range listings {
		l := &listings[i]
		assert.NoError(t, validator.Validate(l), l.ID)
		assert.False(t, seen[l.ID], "duplicate id %s", l.ID)
		seen[l.ID] = true
		assert.NotEmpty(t, l.Slug)
		if l.Kind == domain.KindProduct {
			assert.NotEmpty(t, l.VendorID, l.ID)
		}
	}
	assert.Equal(t, domain.KindVendor, listings[0].Kind)
}

func TestListings_DerivesDiscount(t *testing.T) {
	listings, err := Listings()
	require.NoError(t, err)
	for _, l := range listings {
		if l.ID == "p-ankara-gown" {
			assert.Equal(t, 26, l.DiscountPercent)
			assert.Equal(t, "ankara-maxi-gown", l.Slug)
			return
		}
	}
	t.Fatal("p-ankara-gown missing")
}

func TestDecode_GeneratesStableIDs(t *testing.T) {
	doc := "vendors:\n  - name: Utako Market Stall\n    price: 100\n"
	a, err := Decode(strings.NewReader(doc))
	require.NoError(t, err)
	b, err := Decode(strings.NewReader(doc))
	require.NoError(t, err)

	require.Len(t, a, 1)
	assert.Equal(t, a[0].ID, b[0].ID)
	assert.Len(t, a[0].ID, 36)
	assert.Equal(t, SeedTime, a[0].CreatedAt)
}

func TestDecode_RejectsUnknownFields(t *testing.T) {
	_, err := Decode(strings.NewReader("products:\n  - name: x\n    colour: red\n"))
	assert.Error(t, err)
}
