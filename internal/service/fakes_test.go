package service

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/JamesLuiz/abuja-connect-shop-sub000/internal/domain"
	"github.com/JamesLuiz/abuja-connect-shop-sub000/internal/engine/memory"
	redisrepo "github.com/JamesLuiz/abuja-connect-shop-sub000/internal/repository/redis"
	apperrors "github.com/JamesLuiz/abuja-connect-shop-sub000/pkg/errors"
)

type fakeRepo struct {
	mu       sync.Mutex
	order    []string
	listings map[string]domain.Listing
	err      error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{listings: map[string]domain.Listing{}}
}

func (r *fakeRepo) Upsert(_ context.Context, l *domain.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	if _, ok := r.listings[l.ID]; !ok {
		r.order = append(r.order, l.ID)
	}
	r.listings[l.ID] = *l
	return nil
}

func (r *fakeRepo) UpsertMany(ctx context.Context, listings []domain.Listing) error {
	for i := range listings {
		if err := r.Upsert(ctx, &listings[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id string) (*domain.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.listings[id]
	if !ok {
		return nil, apperrors.NotFound("listing", id)
	}
	return &l, nil
}

func (r *fakeRepo) ListAll(_ context.Context, kind domain.Kind) ([]domain.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	var out []domain.Listing
	for _, id := range r.order {
		if l := r.listings[id]; kind == "" || l.Kind == kind {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *fakeRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.listings[id]; !ok {
		return apperrors.NotFound("listing", id)
	}
	delete(r.listings, id)
	r.order = slices.DeleteFunc(r.order, func(s string) bool { return s == id })
	return nil
}

type fakeFeed struct {
	listings []domain.Listing
	err      error
}

func (f *fakeFeed) All(context.Context) ([]domain.Listing, error) {
	return f.listings, f.err
}

type fakePublisher struct {
	mu        sync.Mutex
	summaries []ReindexSummary
}

func (p *fakePublisher) PublishReindexed(_ context.Context, s ReindexSummary) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.summaries = append(p.summaries, s)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func newFilterStore(t *testing.T) *redisrepo.FilterStateStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return redisrepo.NewFilterStateStore(client, time.Hour)
}

func newTestService(t *testing.T) (*CatalogService, *memory.Engine) {
	t.Helper()
	eng := memory.New()
	svc := NewCatalogService(Deps{
		Engine:  eng,
		Filters: newFilterStore(t),
		Logger:  discardLogger(),
	})
	return svc, eng
}

func int64p(v int64) *int64 { return &v }

func sampleListings() []domain.Listing {
	return []domain.Listing{
		{ID: "v-1", Kind: domain.KindVendor, Name: "Wuse Fashion House", Category: "Fashion", Location: "Wuse", Price: 15000, Rating: 4.8, ReviewCount: 342, Verified: true, InStock: true},
		{ID: "v-2", Kind: domain.KindVendor, Name: "Garki Gadgets", Category: "Electronics", Location: "Garki", Price: 25000, Rating: 4.6, ReviewCount: 528, Verified: true, InStock: true},
		{ID: "v-3", Kind: domain.KindVendor, Name: "Kubwa Crafts", Category: "Arts & Crafts", Location: "Kubwa", Price: 3500, Rating: 4.4, ReviewCount: 87},
		{ID: "p-1", Kind: domain.KindProduct, VendorID: "v-1", Name: "Ankara Gown", Category: "Fashion", Location: "Wuse", Price: 18500, OriginalPrice: int64p(25000), Rating: 4.8, ReviewCount: 120, Verified: true, InStock: true},
		{ID: "p-2", Kind: domain.KindProduct, VendorID: "v-2", Name: "Android Phone", Category: "Electronics", Location: "Garki", Price: 145000, Rating: 4.5, ReviewCount: 310, Verified: true, InStock: true},
		{ID: "p-3", Kind: domain.KindProduct, VendorID: "v-2", Name: "Ankara Earbuds Case", Category: "Electronics", Location: "Garki", Price: 4000, Rating: 3.9, ReviewCount: 12, Verified: true},
	}
}
