package domain

import (
	"math"
	"strings"
	"time"

	"github.com/JamesLuiz/abuja-connect-shop-sub000/pkg/slug"
)

// Kind scopes a catalog view to vendors or products.
type Kind string

const (
	KindVendor  Kind = "vendor"
	KindProduct Kind = "product"
)

// Valid reports whether k is a known listing kind.
func (k Kind) Valid() bool {
	return k == KindVendor || k == KindProduct
}

// Listing is a vendor or product shown in a catalog or search view.
// Vendors carry their starting price in Price.
type Listing struct {
	ID              string    `json:"id" yaml:"id" validate:"required,max=64"`
	Kind            Kind      `json:"kind" yaml:"kind" validate:"required,oneof=vendor product"`
	VendorID        string    `json:"vendor_id,omitempty" yaml:"vendor_id" validate:"max=64"`
	Name            string    `json:"name" yaml:"name" validate:"required,max=200"`
	Slug            string    `json:"slug" yaml:"slug" validate:"max=220"`
	Description     string    `json:"description" yaml:"description" validate:"max=5000"`
	Price           int64     `json:"price" yaml:"price" validate:"gte=0"`
	OriginalPrice   *int64    `json:"original_price,omitempty" yaml:"original_price" validate:"omitempty,gte=0"`
	DiscountPercent int       `json:"discount_percent" yaml:"discount_percent" validate:"gte=0,lte=100"`
	Category        string    `json:"category" yaml:"category" validate:"max=100"`
	Location        string    `json:"location" yaml:"location" validate:"max=100"`
	Rating          float64   `json:"rating" yaml:"rating" validate:"gte=0,lte=5"`
	ReviewCount     int       `json:"review_count" yaml:"review_count" validate:"gte=0"`
	SalesCount      int       `json:"sales_count" yaml:"sales_count" validate:"gte=0"`
	Verified        bool      `json:"verified" yaml:"verified"`
	InStock         bool      `json:"in_stock" yaml:"in_stock"`
	Tags            []string  `json:"tags,omitempty" yaml:"tags" validate:"max=20,dive,max=50"`
	ImageURL        string    `json:"image_url,omitempty" yaml:"image_url" validate:"omitempty,url"`
	EstablishedAt   time.Time `json:"established_at" yaml:"established_at"`
	CreatedAt       time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" yaml:"updated_at"`
}

// Popularity is rating weighted by review volume.
func (l *Listing) Popularity() float64 {
	return l.Rating * float64(l.ReviewCount)
}

// Recency is the establishment (vendor) or posting (product) date, falling
// back to CreatedAt when unset.
func (l *Listing) Recency() time.Time {
	if l.EstablishedAt.IsZero() {
		return l.CreatedAt
	}
	return l.EstablishedAt
}

// Normalize fills derived fields: slug from name, discount from the
// original price, and bookkeeping timestamps.
func (l *Listing) Normalize(now time.Time) {
	l.Name = strings.TrimSpace(l.Name)
	if l.Slug == "" {
		l.Slug = slug.Generate(l.Name)
	}
	if l.DiscountPercent == 0 && l.OriginalPrice != nil && *l.OriginalPrice > l.Price && *l.OriginalPrice > 0 {
		off := float64(*l.OriginalPrice-l.Price) * 100 / float64(*l.OriginalPrice)
		l.DiscountPercent = int(math.Round(off))
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = now
	}
	if l.EstablishedAt.IsZero() {
		l.EstablishedAt = l.CreatedAt
	}
	l.UpdatedAt = now
}
