package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/JamesLuiz/abuja-connect-shop-sub000/internal/domain"
	apperrors "github.com/JamesLuiz/abuja-connect-shop-sub000/pkg/errors"
	"github.com/JamesLuiz/abuja-connect-shop-sub000/pkg/pagination"
)

// maxWindow is the largest from+size Elasticsearch serves by default.
const maxWindow = 10000

// scanBatchSize is the page size of the search_after scan in All.
const scanBatchSize = 1000

// Engine is an Elasticsearch-backed catalog engine.
type Engine struct {
	client    *elasticsearch.Client
	indexName string
	logger    *slog.Logger
}

// document is the indexed form of a listing.
type document struct {
	domain.Listing
	Popularity float64 `json:"popularity"`
}

type esSearchResponse struct {
	Took int `json:"took"`
	Hits struct {
		Total struct {
			Value int `json:"value"`
		} `json:"total"`
		Hits []struct {
			Source document        `json:"_source"`
			Sort   json.RawMessage `json:"sort,omitempty"`
		} `json:"hits"`
	} `json:"hits"`
}

type esGetResponse struct {
	Found  bool     `json:"found"`
	Source document `json:"_source"`
}

type esBulkResponse struct {
	Errors bool `json:"errors"`
	Items  []struct {
		Index struct {
			ID     string `json:"_id"`
			Status int    `json:"status"`
			Error  struct {
				Type   string `json:"type"`
				Reason string `json:"reason"`
			} `json:"error"`
		} `json:"index"`
	} `json:"items"`
}

type esErrorResponse struct {
	Error struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	} `json:"error"`
	Status int `json:"status"`
}

// New connects to url and makes sure the index exists. An empty indexName
// selects DefaultIndexName.
func New(ctx context.Context, url, indexName string, logger *slog.Logger) (*Engine, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses:     []string{url},
		RetryOnStatus: []int{http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout},
		MaxRetries:    3,
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch: create client: %w", err)
	}

	e := NewWithClient(client, indexName, logger)
	if err := e.EnsureIndex(ctx); err != nil {
		return nil, fmt.Errorf("elasticsearch: ensure index: %w", err)
	}
	return e, nil
}

// NewWithClient wraps an existing client without touching the cluster.
func NewWithClient(client *elasticsearch.Client, indexName string, logger *slog.Logger) *Engine {
	if indexName == "" {
		indexName = DefaultIndexName
	}
	return &Engine{client: client, indexName: indexName, logger: logger}
}

// Ping checks whether the cluster is reachable.
func (e *Engine) Ping(ctx context.Context) error {
	res, err := e.client.Ping(e.client.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch ping: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		return fmt.Errorf("elasticsearch ping: unexpected status %s", res.Status())
	}
	return nil
}

// EnsureIndex creates the listings index with its mapping when missing.
func (e *Engine) EnsureIndex(ctx context.Context) error {
	res, err := e.client.Indices.Exists([]string{e.indexName}, e.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("check index exists: %w", err)
	}
	_ = res.Body.Close()

	if res.StatusCode == http.StatusOK {
		e.logger.InfoContext(ctx, "elasticsearch index already exists", slog.String("index", e.indexName))
		return nil
	}

	res, err = e.client.Indices.Create(
		e.indexName,
		e.client.Indices.Create.WithBody(strings.NewReader(indexMapping)),
		e.client.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if err := responseError(res, "create index"); err != nil {
		return err
	}
	e.logger.InfoContext(ctx, "elasticsearch index created", slog.String("index", e.indexName))
	return nil
}

// DeleteIndex drops the index. A missing index is not an error.
func (e *Engine) DeleteIndex(ctx context.Context) error {
	res, err := e.client.Indices.Delete([]string{e.indexName}, e.client.Indices.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch delete index: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode == http.StatusNotFound {
		return nil
	}
	return responseError(res, "elasticsearch delete index")
}

// Index adds or replaces a listing.
func (e *Engine) Index(ctx context.Context, listing *domain.Listing) error {
	data, err := json.Marshal(toDocument(listing))
	if err != nil {
		return fmt.Errorf("elasticsearch index: marshal listing: %w", err)
	}

	res, err := e.client.Index(
		e.indexName,
		bytes.NewReader(data),
		e.client.Index.WithDocumentID(listing.ID),
		e.client.Index.WithRefresh("true"),
		e.client.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("elasticsearch index: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if err := responseError(res, "elasticsearch index"); err != nil {
		return err
	}
	e.logger.DebugContext(ctx, "indexed listing", slog.String("listing_id", listing.ID))
	return nil
}

// BulkIndex adds or replaces listings through the NDJSON bulk API.
func (e *Engine) BulkIndex(ctx context.Context, listings []domain.Listing) error {
	if len(listings) == 0 {
		return nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for i := range listings {
		action := map[string]any{"index": map[string]any{"_index": e.indexName, "_id": listings[i].ID}}
		if err := enc.Encode(action); err != nil {
			return fmt.Errorf("elasticsearch bulk index: encode action: %w", err)
		}
		if err := enc.Encode(toDocument(&listings[i])); err != nil {
			return fmt.Errorf("elasticsearch bulk index: encode document: %w", err)
		}
	}

	res, err := e.client.Bulk(
		&buf,
		e.client.Bulk.WithIndex(e.indexName),
		e.client.Bulk.WithRefresh("true"),
		e.client.Bulk.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("elasticsearch bulk index: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if err := responseError(res, "elasticsearch bulk index"); err != nil {
		return err
	}

	var bulkResp esBulkResponse
	if err := json.NewDecoder(res.Body).Decode(&bulkResp); err != nil {
		return fmt.Errorf("elasticsearch bulk index: decode response: %w", err)
	}
	if bulkResp.Errors {
		var msgs []string
		for _, item := range bulkResp.Items {
			if item.Index.Error.Type != "" {
				msgs = append(msgs, fmt.Sprintf("id=%s: %s: %s", item.Index.ID, item.Index.Error.Type, item.Index.Error.Reason))
			}
		}
		return fmt.Errorf("elasticsearch bulk index: partial errors: %s", strings.Join(msgs, "; "))
	}

	e.logger.InfoContext(ctx, "bulk indexed listings", slog.Int("count", len(listings)))
	return nil
}

// Delete removes a listing. A missing document is ignored.
func (e *Engine) Delete(ctx context.Context, id string) error {
	res, err := e.client.Delete(e.indexName, id,
		e.client.Delete.WithRefresh("true"),
		e.client.Delete.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("elasticsearch delete: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode == http.StatusNotFound {
		return nil
	}
	return responseError(res, "elasticsearch delete")
}

// Get fetches one listing by ID.
func (e *Engine) Get(ctx context.Context, id string) (*domain.Listing, error) {
	res, err := e.client.Get(e.indexName, id, e.client.Get.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("elasticsearch get: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode == http.StatusNotFound {
		return nil, apperrors.NotFound("listing", id)
	}
	if err := responseError(res, "elasticsearch get"); err != nil {
		return nil, err
	}

	var doc esGetResponse
	if err := json.NewDecoder(res.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("elasticsearch get: decode response: %w", err)
	}
	if !doc.Found {
		return nil, apperrors.NotFound("listing", id)
	}
	return &doc.Source.Listing, nil
}

// Search runs the translated query and returns one page.
func (e *Engine) Search(ctx context.Context, query *domain.SearchQuery) (*domain.SearchResult, error) {
	p := pagination.Params{Page: query.Page, PerPage: query.PerPage}.Normalize()
	if p.Offset() >= maxWindow {
		return &domain.SearchResult{Listings: []domain.Listing{}, Page: p.Page, PerPage: p.PerPage}, nil
	}

	resp, err := e.search(ctx, buildSearchQuery(query, p.Offset(), p.PerPage), "elasticsearch search")
	if err != nil {
		return nil, err
	}
	return &domain.SearchResult{
		Listings: resp.listings(),
		Total:    resp.Hits.Total.Value,
		Page:     p.Page,
		PerPage:  p.PerPage,
		TookMs:   int64(resp.Took),
	}, nil
}

// All returns every listing of kind in featured order, paging past the
// result window with search_after.
func (e *Engine) All(ctx context.Context, kind domain.Kind) ([]domain.Listing, error) {
	q := &domain.SearchQuery{Kind: kind, Filters: domain.Defaults()}
	var (
		out   []domain.Listing
		after json.RawMessage
	)
	for {
		resp, err := e.search(ctx, buildScanQuery(q, after, scanBatchSize), "elasticsearch all")
		if err != nil {
			return nil, err
		}
		out = append(out, resp.listings()...)

		hits := resp.Hits.Hits
		if len(hits) < scanBatchSize || len(hits[len(hits)-1].Sort) == 0 {
			return out, nil
		}
		after = hits[len(hits)-1].Sort
	}
}

func (e *Engine) search(ctx context.Context, body map[string]any, op string) (*esSearchResponse, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("%s: marshal query: %w", op, err)
	}

	start := time.Now()
	res, err := e.client.Search(
		e.client.Search.WithIndex(e.indexName),
		e.client.Search.WithBody(bytes.NewReader(data)),
		e.client.Search.WithContext(ctx),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = res.Body.Close() }()

	if err := responseError(res, op); err != nil {
		return nil, err
	}

	var esResp esSearchResponse
	if err := json.NewDecoder(res.Body).Decode(&esResp); err != nil {
		return nil, fmt.Errorf("%s: decode response: %w", op, err)
	}
	e.logger.DebugContext(ctx, "elasticsearch query",
		slog.String("op", op),
		slog.Int("hits", len(esResp.Hits.Hits)),
		slog.Duration("elapsed", time.Since(start)),
	)
	return &esResp, nil
}

func (r *esSearchResponse) listings() []domain.Listing {
	out := make([]domain.Listing, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		out = append(out, hit.Source.Listing)
	}
	return out
}

func toDocument(l *domain.Listing) document {
	return document{Listing: *l, Popularity: l.Popularity()}
}

// responseError turns an error response into a Go error carrying the
// Elasticsearch error type and reason when the body has them.
func responseError(res *esapi.Response, op string) error {
	if !res.IsError() {
		return nil
	}
	var errResp esErrorResponse
	if err := json.NewDecoder(res.Body).Decode(&errResp); err == nil && errResp.Error.Type != "" {
		return fmt.Errorf("%s: %s: %s", op, errResp.Error.Type, errResp.Error.Reason)
	}
	return fmt.Errorf("%s: unexpected status %s", op, res.Status())
}
