// Package fixtures holds the embedded seed catalog.
package fixtures

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/JamesLuiz/abuja-connect-shop-sub000/internal/domain"
)

//go:embed listings.yaml
var listingsYAML []byte

// namespace derives stable IDs for entries that omit one.
var namespace = uuid.MustParse("6f1c1f9e-4a55-4b0c-9d7e-1a2b3c4d5e6f")

// SeedTime stamps CreatedAt on seeded listings.
var SeedTime = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

type file struct {
	Vendors  []domain.Listing `yaml:"vendors"`
	Products []domain.Listing `yaml:"products"`
}

// Listings returns the embedded seed catalog, vendors first, normalized.
func Listings() ([]domain.Listing, error) {
	return Decode(bytes.NewReader(listingsYAML))
}

// Decode reads a fixture document with top-level vendors and products.
// Unknown keys are rejected.
func Decode(r io.Reader) ([]domain.Listing, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f file
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode fixtures: %w", err)
	}

	out := make([]domain.Listing, 0, len(f.Vendors)+len(f.Products))
	add := func(kind domain.Kind, items []domain.Listing) {
		for _, l := range items {
			l.Kind = kind
			if l.ID == "" {
				l.ID = uuid.NewSHA1(namespace, []byte(string(kind)+"/"+l.Name)).String()
			}
			if l.CreatedAt.IsZero() {
				l.CreatedAt = SeedTime
			}
			l.Normalize(SeedTime)
			out = append(out, l)
		}
	}
	add(domain.KindVendor, f.Vendors)
	add(domain.KindProduct, f.Products)
	return out, nil
}
