package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/JamesLuiz/abuja-connect-shop-sub000/internal/domain"
	apperrors "github.com/JamesLuiz/abuja-connect-shop-sub000/pkg/errors"
	"github.com/JamesLuiz/abuja-connect-shop-sub000/pkg/validator"
)

const (
	// MaxBulkListings caps one bulk index request.
	MaxBulkListings = 500
	// ReindexBatchSize is the engine batch size used by Reindex and Seed.
	ReindexBatchSize = 200
)

// Reindex sources.
const (
	SourceRepository = "repository"
	SourceFeed       = "feed"
	SourceFixtures   = "fixtures"
)

// BulkResult reports the outcome of a bulk index request.
type BulkResult struct {
	Indexed int `json:"indexed"`
	Skipped int `json:"skipped"`
}

// ReindexSummary describes one completed reindex run.
type ReindexSummary struct {
	Source     string `json:"source"`
	Indexed    int    `json:"indexed"`
	Removed    int    `json:"removed"`
	DurationMs int64  `json:"duration_ms"`
}

func (s *CatalogService) prepare(l *domain.Listing) error {
	l.Normalize(s.now())
	return validator.Validate(l)
}

// IndexListing validates a listing, writes it through to the repository
// when one is configured, then indexes it.
func (s *CatalogService) IndexListing(ctx context.Context, l *domain.Listing) error {
	if err := s.prepare(l); err != nil {
		return err
	}

	if s.repo != nil {
		if err := s.repo.Upsert(ctx, l); err != nil {
			return fmt.Errorf("index listing: %w", err)
		}
	}
	if err := s.engine.Index(ctx, l); err != nil {
		return fmt.Errorf("index listing: %w", err)
	}
	s.metrics.indexedListings("api", 1)

	s.logger.InfoContext(ctx, "listing indexed",
		slog.String("listing_id", l.ID),
		slog.String("kind", string(l.Kind)),
		slog.String("name", l.Name),
	)
	return nil
}

// BulkIndex indexes up to MaxBulkListings listings. Entries without an id
// are skipped; any other invalid entry rejects the whole request.
func (s *CatalogService) BulkIndex(ctx context.Context, listings []domain.Listing) (BulkResult, error) {
	if len(listings) > MaxBulkListings {
		return BulkResult{}, apperrors.InvalidInput(fmt.Sprintf("at most %d listings per bulk request", MaxBulkListings))
	}

	var res BulkResult
	valid := make([]domain.Listing, 0, len(listings))
	for i := range listings {
		l := listings[i]
		if l.ID == "" {
			res.Skipped++
			continue
		}
		if err := s.prepare(&l); err != nil {
			return BulkResult{}, apperrors.InvalidInput(fmt.Sprintf("listings[%d]: %v", i, err))
		}
		valid = append(valid, l)
	}

	if err := s.store(ctx, valid); err != nil {
		return BulkResult{}, fmt.Errorf("bulk index: %w", err)
	}
	res.Indexed = len(valid)
	s.metrics.indexedListings("bulk", res.Indexed)

	s.logger.InfoContext(ctx, "bulk index completed",
		slog.Int("indexed", res.Indexed),
		slog.Int("skipped", res.Skipped),
	)
	return res, nil
}

// Seed writes listings to the repository and engine without the bulk cap.
func (s *CatalogService) Seed(ctx context.Context, listings []domain.Listing) (int, error) {
	prepared := make([]domain.Listing, len(listings))
	for i := range listings {
		prepared[i] = listings[i]
		if err := s.prepare(&prepared[i]); err != nil {
			return 0, fmt.Errorf("seed listing %q: %w", prepared[i].ID, err)
		}
	}
	if err := s.store(ctx, prepared); err != nil {
		return 0, fmt.Errorf("seed: %w", err)
	}
	s.metrics.indexedListings(SourceFixtures, len(prepared))
	s.logger.InfoContext(ctx, "catalog seeded", slog.Int("count", len(prepared)))
	return len(prepared), nil
}

func (s *CatalogService) store(ctx context.Context, listings []domain.Listing) error {
	if len(listings) == 0 {
		return nil
	}
	if s.repo != nil {
		if err := s.repo.UpsertMany(ctx, listings); err != nil {
			return err
		}
	}
	return s.indexBatches(ctx, listings)
}

func (s *CatalogService) indexBatches(ctx context.Context, listings []domain.Listing) error {
	for start := 0; start < len(listings); start += ReindexBatchSize {
		end := min(start+ReindexBatchSize, len(listings))
		if err := s.engine.BulkIndex(ctx, listings[start:end]); err != nil {
			return fmt.Errorf("index batch %d-%d: %w", start, end, err)
		}
	}
	return nil
}

// DeleteListing removes a listing from the repository and the engine.
// It fails with not found only when neither held the listing.
func (s *CatalogService) DeleteListing(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("listing id is required")
	}

	existed := false
	if s.repo != nil {
		err := s.repo.Delete(ctx, id)
		switch {
		case err == nil:
			existed = true
		case !errors.Is(err, apperrors.ErrNotFound):
			return fmt.Errorf("delete listing: %w", err)
		}
	}

	if _, err := s.engine.Get(ctx, id); err == nil {
		existed = true
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return fmt.Errorf("delete listing: %w", err)
	}
	if !existed {
		return apperrors.NotFound("listing", id)
	}

	if err := s.engine.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete listing: %w", err)
	}

	s.logger.InfoContext(ctx, "listing deleted", slog.String("listing_id", id))
	return nil
}

// Reindex rebuilds the engine from the repository, or from the upstream
// feed when no repository is configured. Listings the source no longer
// has are removed. Only one run may be in flight.
func (s *CatalogService) Reindex(ctx context.Context) (ReindexSummary, error) {
	if !s.reindexing.CompareAndSwap(false, true) {
		return ReindexSummary{}, apperrors.Conflict("a reindex is already running")
	}
	defer s.reindexing.Store(false)
	return s.reindex(ctx)
}

// StartReindex runs Reindex in the background, bounded by the service's
// base context. It fails fast when a run is already in flight.
func (s *CatalogService) StartReindex() error {
	if s.repo == nil && s.feed == nil {
		return apperrors.Unavailable("no reindex source is configured", nil)
	}
	if !s.reindexing.CompareAndSwap(false, true) {
		return apperrors.Conflict("a reindex is already running")
	}

	s.background.Add(1)
	go func() {
		defer s.background.Done()
		defer s.reindexing.Store(false)
		if _, err := s.reindex(s.baseCtx); err != nil {
			s.logger.Error("background reindex failed", slog.String("error", err.Error()))
		}
	}()
	return nil
}

// Wait blocks until background work started by StartReindex finishes.
func (s *CatalogService) Wait() {
	s.background.Wait()
}

func (s *CatalogService) reindex(ctx context.Context) (ReindexSummary, error) {
	start := time.Now()

	listings, source, err := s.loadSource(ctx)
	if err != nil {
		s.metrics.reindexed("failed")
		return ReindexSummary{}, err
	}

	keep := make(map[string]bool, len(listings))
	valid := listings[:0:0]
	for i := range listings {
		l := listings[i]
		if err := s.prepare(&l); err != nil {
			s.logger.WarnContext(ctx, "reindex skipped invalid listing",
				slog.String("listing_id", l.ID),
				slog.String("error", err.Error()),
			)
			continue
		}
		keep[l.ID] = true
		valid = append(valid, l)
	}

	if err := s.indexBatches(ctx, valid); err != nil {
		s.metrics.reindexed("failed")
		return ReindexSummary{}, fmt.Errorf("reindex: %w", err)
	}

	current, err := s.engine.All(ctx, "")
	if err != nil {
		s.metrics.reindexed("failed")
		return ReindexSummary{}, fmt.Errorf("reindex: %w", err)
	}
	removed := 0
	for _, l := range current {
		if keep[l.ID] {
			continue
		}
		if err := s.engine.Delete(ctx, l.ID); err != nil {
			s.metrics.reindexed("failed")
			return ReindexSummary{}, fmt.Errorf("reindex: remove stale %s: %w", l.ID, err)
		}
		removed++
	}

	summary := ReindexSummary{
		Source:     source,
		Indexed:    len(valid),
		Removed:    removed,
		DurationMs: time.Since(start).Milliseconds(),
	}
	s.metrics.reindexed("succeeded")
	s.metrics.indexedListings(source, summary.Indexed)
	s.logger.InfoContext(ctx, "reindex completed",
		slog.String("source", source),
		slog.Int("indexed", summary.Indexed),
		slog.Int("removed", summary.Removed),
		slog.Int64("duration_ms", summary.DurationMs),
	)

	if s.publisher != nil {
		if err := s.publisher.PublishReindexed(ctx, summary); err != nil {
			s.logger.WarnContext(ctx, "failed to publish reindex event", slog.String("error", err.Error()))
		}
	}
	return summary, nil
}

func (s *CatalogService) loadSource(ctx context.Context) ([]domain.Listing, string, error) {
	switch {
	case s.repo != nil:
		listings, err := s.repo.ListAll(ctx, "")
		if err != nil {
			return nil, "", fmt.Errorf("reindex: load from repository: %w", err)
		}
		return listings, SourceRepository, nil
	case s.feed != nil:
		listings, err := s.feed.All(ctx)
		if err != nil {
			return nil, "", fmt.Errorf("reindex: load from feed: %w", err)
		}
		return listings, SourceFeed, nil
	default:
		return nil, "", apperrors.Unavailable("no reindex source is configured", nil)
	}
}
