package domain

// SearchQuery holds all parameters for a catalog search. An empty Kind
// searches vendors and products together.
type SearchQuery struct {
	Kind    Kind        `json:"kind,omitempty"`
	Filters FilterState `json:"filters"`
	Page    int         `json:"page"`
	PerPage int         `json:"per_page"`
}

// SearchResult holds one page of matches.
type SearchResult struct {
	Listings          []Listing      `json:"listings"`
	Total             int            `json:"total"`
	Page              int            `json:"page"`
	PerPage           int            `json:"per_page"`
	ActiveFilterCount int            `json:"active_filter_count"`
	ActiveFilters     []ActiveFilter `json:"active_filters"`
	TookMs            int64          `json:"took_ms"`
}

// Comparison is the side-by-side summary of 2 to 4 listings. Winner IDs
// are empty when no listing qualifies.
type Comparison struct {
	Listings          []Listing `json:"listings"`
	LowestPriceID     string    `json:"lowest_price_id"`
	HighestRatingID   string    `json:"highest_rating_id"`
	MostReviewsID     string    `json:"most_reviews_id"`
	BiggestDiscountID string    `json:"biggest_discount_id,omitempty"`
	AveragePrice      float64   `json:"average_price"`
	AverageRating     float64   `json:"average_rating"`
}

// FacetOption is one selectable value with the number of listings carrying it.
type FacetOption struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// FacetSummary describes the filter options available over a listing set.
type FacetSummary struct {
	Kind       Kind          `json:"kind,omitempty"`
	Total      int           `json:"total"`
	Categories []FacetOption `json:"categories"`
	Locations  []FacetOption `json:"locations"`
	MinPrice   int64         `json:"min_price"`
	MaxPrice   int64         `json:"max_price"`
	Verified   int           `json:"verified"`
	InStock    int           `json:"in_stock"`
	OutOfStock int           `json:"out_of_stock"`
}

// Comparison bounds.
const (
	MinCompare = 2
	MaxCompare = 4
)
