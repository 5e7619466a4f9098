// Package feed pulls listings from the marketplace product and vendor APIs.
package feed

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/JamesLuiz/abuja-connect-shop-sub000/internal/domain"
	"github.com/JamesLuiz/abuja-connect-shop-sub000/pkg/httputil"
)

const (
	defaultPageSize = 100
	// maxPages stops a misbehaving upstream that never clears has_next.
	maxPages = 1000
)

// JSONGetter is satisfied by httpclient.CircuitBreakerClient.
type JSONGetter interface {
	GetJSON(ctx context.Context, url string, dst any) error
}

// Client reads the upstream catalog page by page.
type Client struct {
	http     JSONGetter
	baseURL  string
	pageSize int
	logger   *slog.Logger
}

// NewClient creates a feed client rooted at baseURL.
func NewClient(getter JSONGetter, baseURL string, pageSize int, l *slog.Logger) *Client {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &Client{
		http:     getter,
		baseURL:  strings.TrimRight(baseURL, "/"),
		pageSize: pageSize,
		logger:   l,
	}
}

// Vendors fetches every vendor listing.
func (c *Client) Vendors(ctx context.Context) ([]domain.Listing, error) {
	return c.fetchAll(ctx, "vendors", domain.KindVendor)
}

// Products fetches every product listing.
func (c *Client) Products(ctx context.Context) ([]domain.Listing, error) {
	return c.fetchAll(ctx, "products", domain.KindProduct)
}

// All fetches vendors followed by products.
func (c *Client) All(ctx context.Context) ([]domain.Listing, error) {
	vendors, err := c.Vendors(ctx)
	if err != nil {
		return nil, err
	}
	products, err := c.Products(ctx)
	if err != nil {
		return nil, err
	}
	return append(vendors, products...), nil
}

func (c *Client) fetchAll(ctx context.Context, resource string, kind domain.Kind) ([]domain.Listing, error) {
	start := time.Now()
	var out []domain.Listing

	for page := 1; page <= maxPages; page++ {
		var resp httputil.PaginatedResponse[domain.Listing]
		if err := c.http.GetJSON(ctx, c.pageURL(resource, page), &resp); err != nil {
			return nil, fmt.Errorf("fetch %s page %d: %w", resource, page, err)
		}

		for _, l := range resp.Data {
			if l.Kind == "" {
				l.Kind = kind
			}
			out = append(out, l)
		}
		if !resp.HasNext || len(resp.Data) == 0 {
			break
		}
	}

	c.logger.InfoContext(ctx, "feed fetched",
		slog.String("resource", resource),
		slog.Int("count", len(out)),
		slog.Duration("elapsed", time.Since(start)),
	)
	return out, nil
}

func (c *Client) pageURL(resource string, page int) string {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(c.pageSize))
	return c.baseURL + "/api/v1/" + resource + "?" + q.Encode()
}
