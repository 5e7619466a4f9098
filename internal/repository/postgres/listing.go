package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/jackc/pgx/v5"

	"github.com/JamesLuiz/abuja-connect-shop-sub000/internal/domain"
	"github.com/JamesLuiz/abuja-connect-shop-sub000/pkg/database"
	apperrors "github.com/JamesLuiz/abuja-connect-shop-sub000/pkg/errors"
)

//go:embed migrations/*.up.sql
var migrationFiles embed.FS

// Migrations returns the schema migrations for database.RunMigrations.
func Migrations() fs.FS {
	sub, err := fs.Sub(migrationFiles, "migrations")
	if err != nil {
		panic(err) // embedded path is fixed
	}
	return sub
}

const listingColumns = `id, kind, vendor_id, name, slug, description, price, original_price, discount_percent,
		category, location, rating, review_count, sales_count, verified, in_stock, tags, image_url,
		established_at, created_at, updated_at`

const upsertListingSQL = `
	INSERT INTO listings (` + listingColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
	ON CONFLICT (id) DO UPDATE SET
		kind = EXCLUDED.kind, vendor_id = EXCLUDED.vendor_id, name = EXCLUDED.name, slug = EXCLUDED.slug,
		description = EXCLUDED.description, price = EXCLUDED.price, original_price = EXCLUDED.original_price,
		discount_percent = EXCLUDED.discount_percent, category = EXCLUDED.category, location = EXCLUDED.location,
		rating = EXCLUDED.rating, review_count = EXCLUDED.review_count, sales_count = EXCLUDED.sales_count,
		verified = EXCLUDED.verified, in_stock = EXCLUDED.in_stock, tags = EXCLUDED.tags,
		image_url = EXCLUDED.image_url, established_at = EXCLUDED.established_at, updated_at = EXCLUDED.updated_at`

// ListingRepository implements repository.ListingRepository on PostgreSQL.
type ListingRepository struct {
	db database.DBTX
}

// NewListingRepository accepts a *pgxpool.Pool or a pgxmock pool.
func NewListingRepository(db database.DBTX) *ListingRepository {
	return &ListingRepository{db: db}
}

// Upsert inserts or replaces a listing.
func (r *ListingRepository) Upsert(ctx context.Context, l *domain.Listing) (err error) {
	ctx, end := database.TraceQuery(ctx, "UpsertListing", upsertListingSQL)
	defer func() { end(err) }()

	if _, err = r.db.Exec(ctx, upsertListingSQL, listingArgs(l)...); err != nil {
		return fmt.Errorf("upsert listing %s: %w", l.ID, err)
	}
	return nil
}

// UpsertMany upserts listings in a single transaction.
func (r *ListingRepository) UpsertMany(ctx context.Context, listings []domain.Listing) (err error) {
	if len(listings) == 0 {
		return nil
	}
	ctx, end := database.TraceQuery(ctx, "UpsertListings", upsertListingSQL)
	defer func() { end(err) }()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin upsert listings: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for i := range listings {
		if _, err = tx.Exec(ctx, upsertListingSQL, listingArgs(&listings[i])...); err != nil {
			return fmt.Errorf("upsert listing %s: %w", listings[i].ID, err)
		}
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit upsert listings: %w", err)
	}
	return nil
}

const getListingSQL = `SELECT ` + listingColumns + ` FROM listings WHERE id = $1`

// GetByID retrieves a listing by its ID.
func (r *ListingRepository) GetByID(ctx context.Context, id string) (_ *domain.Listing, err error) {
	ctx, end := database.TraceQuery(ctx, "GetListing", getListingSQL)
	defer func() { end(err) }()

	l, err := scanListing(r.db.QueryRow(ctx, getListingSQL, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("listing", id)
		}
		return nil, fmt.Errorf("get listing: %w", err)
	}
	return l, nil
}

const listListingsSQL = `SELECT ` + listingColumns + ` FROM listings
	WHERE ($1 = '' OR kind = $1)
	ORDER BY seq`

// ListAll returns listings of kind in insertion order.
func (r *ListingRepository) ListAll(ctx context.Context, kind domain.Kind) (_ []domain.Listing, err error) {
	ctx, end := database.TraceQuery(ctx, "ListListings", listListingsSQL)
	defer func() { end(err) }()

	rows, err := r.db.Query(ctx, listListingsSQL, string(kind))
	if err != nil {
		return nil, fmt.Errorf("list listings: %w", err)
	}
	defer rows.Close()

	listings := []domain.Listing{}
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("scan listing row: %w", err)
		}
		listings = append(listings, *l)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate listing rows: %w", err)
	}
	return listings, nil
}

const deleteListingSQL = `DELETE FROM listings WHERE id = $1`

// Delete removes a listing by its ID.
func (r *ListingRepository) Delete(ctx context.Context, id string) (err error) {
	ctx, end := database.TraceQuery(ctx, "DeleteListing", deleteListingSQL)
	defer func() { end(err) }()

	ct, err := r.db.Exec(ctx, deleteListingSQL, id)
	if err != nil {
		return fmt.Errorf("delete listing: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("listing", id)
	}
	return nil
}

func listingArgs(l *domain.Listing) []any {
	tags := l.Tags
	if tags == nil {
		tags = []string{}
	}
	return []any{
		l.ID, string(l.Kind), l.VendorID, l.Name, l.Slug, l.Description,
		l.Price, l.OriginalPrice, l.DiscountPercent, l.Category, l.Location,
		l.Rating, l.ReviewCount, l.SalesCount, l.Verified, l.InStock, tags, l.ImageURL,
		l.EstablishedAt, l.CreatedAt, l.UpdatedAt,
	}
}

func scanListing(row pgx.Row) (*domain.Listing, error) {
	var (
		l    domain.Listing
		kind string
	)
	err := row.Scan(
		&l.ID, &kind, &l.VendorID, &l.Name, &l.Slug, &l.Description,
		&l.Price, &l.OriginalPrice, &l.DiscountPercent, &l.Category, &l.Location,
		&l.Rating, &l.ReviewCount, &l.SalesCount, &l.Verified, &l.InStock, &l.Tags, &l.ImageURL,
		&l.EstablishedAt, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	l.Kind = domain.Kind(kind)
	return &l, nil
}
