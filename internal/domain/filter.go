package domain

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// All is the sentinel meaning "no constraint" for a filter dimension.
const All = "all"

// Sort keys.
const (
	SortFeatured  = "featured"
	SortPopular   = "popular"
	SortRating    = "rating"
	SortReviews   = "reviews"
	SortPriceLow  = "price-low"
	SortPriceHigh = "price-high"
	SortNewest    = "newest"
)

// ValidSortOptions returns every accepted sort key.
func ValidSortOptions() []string {
	return []string{SortFeatured, SortPopular, SortRating, SortReviews, SortPriceLow, SortPriceHigh, SortNewest}
}

// IsValidSort reports whether sort is an accepted sort key. Empty means
// the default.
func IsValidSort(sort string) bool {
	if sort == "" {
		return true
	}
	for _, s := range ValidSortOptions() {
		if s == sort {
			return true
		}
	}
	return false
}

// FilterState is the set of filter and sort criteria for one catalog view.
type FilterState struct {
	Query        string `json:"query" validate:"max=200"`
	Category     string `json:"category" validate:"max=100"`
	Location     string `json:"location" validate:"max=100"`
	MinPrice     *int64 `json:"min_price,omitempty" validate:"omitempty,gte=0"`
	MaxPrice     *int64 `json:"max_price,omitempty" validate:"omitempty,gte=0"`
	MinRating    string `json:"min_rating" validate:"rating_floor"`
	Sort         string `json:"sort" validate:"omitempty,oneof=featured popular rating reviews price-low price-high newest"`
	VerifiedOnly bool   `json:"verified_only"`
	InStockOnly  bool   `json:"in_stock_only"`
}

// Defaults returns the "clear all" state.
func Defaults() FilterState {
	return FilterState{
		Category:  All,
		Location:  All,
		MinRating: All,
		Sort:      SortFeatured,
	}
}

// Normalized trims the query and replaces empty selectors with their
// sentinels, so that equivalent states compare equal.
func (f FilterState) Normalized() FilterState {
	f.Query = strings.TrimSpace(f.Query)
	if f.Category == "" {
		f.Category = All
	}
	if f.Location == "" {
		f.Location = All
	}
	if f.MinRating == "" {
		f.MinRating = All
	}
	if f.Sort == "" {
		f.Sort = SortFeatured
	}
	return f
}

// ParseRatingFloor reads a rating selector such as "4.5+". The sentinel
// "all" (or empty) yields active=false. Anything unparseable returns an
// error with active=true.
func ParseRatingFloor(s string) (threshold float64, active bool, err error) {
	if s == "" || s == All {
		return 0, false, nil
	}
	n, err := strconv.ParseFloat(strings.TrimSuffix(s, "+"), 64)
	if err != nil || !strings.HasSuffix(s, "+") || n < 0 || n > 5 {
		return 0, true, fmt.Errorf("invalid rating floor %q", s)
	}
	return n, true, nil
}

// ActiveFilter is one badge in the active-filter list.
type ActiveFilter struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

var naira = message.NewPrinter(language.English)

// FormatNaira renders whole naira with thousands separators, e.g. "₦50,000".
func FormatNaira(v int64) string {
	return naira.Sprintf("₦%d", v)
}

// ActiveFilters lists the filter dimensions that differ from Defaults.
// The price range counts as one dimension. Sort never counts.
func (f FilterState) ActiveFilters() []ActiveFilter {
	f = f.Normalized()
	active := make([]ActiveFilter, 0, 7)

	if f.Query != "" {
		active = append(active, ActiveFilter{Key: "query", Label: fmt.Sprintf("Search: %q", f.Query)})
	}
	if f.Category != All {
		active = append(active, ActiveFilter{Key: "category", Label: "Category: " + f.Category})
	}
	if f.Location != All {
		active = append(active, ActiveFilter{Key: "location", Label: "Location: " + f.Location})
	}
	switch {
	case f.MinPrice != nil && f.MaxPrice != nil:
		active = append(active, ActiveFilter{Key: "price", Label: fmt.Sprintf("Price: %s - %s", FormatNaira(*f.MinPrice), FormatNaira(*f.MaxPrice))})
	case f.MinPrice != nil:
		active = append(active, ActiveFilter{Key: "price", Label: "Price: from " + FormatNaira(*f.MinPrice)})
	case f.MaxPrice != nil:
		active = append(active, ActiveFilter{Key: "price", Label: "Price: up to " + FormatNaira(*f.MaxPrice)})
	}
	if f.MinRating != All {
		active = append(active, ActiveFilter{Key: "rating", Label: "Rating: " + f.MinRating})
	}
	if f.VerifiedOnly {
		active = append(active, ActiveFilter{Key: "verified", Label: "Verified only"})
	}
	if f.InStockOnly {
		active = append(active, ActiveFilter{Key: "in_stock", Label: "In stock only"})
	}
	return active
}
