package catalog

import (
	"fmt"

	"github.com/JamesLuiz/abuja-connect-shop-sub000/internal/domain"
)

// Compare summarizes 2 to 4 listings side by side. Ties go to the earliest
// listing.
func Compare(listings []domain.Listing) (domain.Comparison, error) {
	if len(listings) < domain.MinCompare || len(listings) > domain.MaxCompare {
		return domain.Comparison{}, fmt.Errorf("compare needs %d to %d listings, got %d",
			domain.MinCompare, domain.MaxCompare, len(listings))
	}

	c := domain.Comparison{Listings: append([]domain.Listing(nil), listings...)}
	lowest, rated, reviewed, discounted := 0, 0, 0, -1
	var priceSum, ratingSum float64

	for i := range listings {
		l := &listings[i]
		priceSum += float64(l.Price)
		ratingSum += l.Rating

		if l.Price < listings[lowest].Price {
			lowest = i
		}
		if l.Rating > listings[rated].Rating {
			rated = i
		}
		if l.ReviewCount > listings[reviewed].ReviewCount {
			reviewed = i
		}
		if l.DiscountPercent > 0 && (discounted < 0 || l.DiscountPercent > listings[discounted].DiscountPercent) {
			discounted = i
		}
	}

	c.LowestPriceID = listings[lowest].ID
	c.HighestRatingID = listings[rated].ID
	c.MostReviewsID = listings[reviewed].ID
	if discounted >= 0 {
		c.BiggestDiscountID = listings[discounted].ID
	}
	n := float64(len(listings))
	c.AveragePrice = priceSum / n
	c.AverageRating = ratingSum / n
	return c, nil
}
