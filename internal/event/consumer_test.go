package event

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JamesLuiz/abuja-connect-shop-sub000/internal/domain"
	"github.com/JamesLuiz/abuja-connect-shop-sub000/internal/engine/memory"
	"github.com/JamesLuiz/abuja-connect-shop-sub000/internal/service"
	apperrors "github.com/JamesLuiz/abuja-connect-shop-sub000/pkg/errors"
	pkgkafka "github.com/JamesLuiz/abuja-connect-shop-sub000/pkg/kafka"
)

func newCatalog() (*service.CatalogService, *memory.Engine) {
	eng := memory.New()
	return service.NewCatalogService(service.Deps{Engine: eng, Logger: slog.New(slog.DiscardHandler)}), eng
}

func newEvent(t *testing.T, eventType, aggregateID string, data any) *pkgkafka.Event {
	t.Helper()
	e, err := pkgkafka.NewEvent(context.Background(), "test", eventType, "listing", aggregateID, data)
	require.NoError(t, err)
	return e
}

func TestConsumer_CreatedAndUpdated(t *testing.T) {
	svc, eng := newCatalog()
	c := NewConsumer(svc, slog.New(slog.DiscardHandler))
	ctx := context.Background()

	created := newEvent(t, TopicVendorCreated, "v-1", domain.Listing{ID: "v-1", Name: "Wuse Fashion House", Price: 15000})
	require.NoError(t, c.Handle(ctx, created))

	got, err := eng.Get(ctx, "v-1")
	require.NoError(t, err)
	assert.Equal(t, domain.KindVendor, got.Kind)
	assert.Equal(t, "wuse-fashion-house", got.Slug)

	updated := newEvent(t, "product.updated", "p-1", map[string]any{"name": "Ankara Gown", "price": 18500})
	require.NoError(t, c.Handle(ctx, updated))

	got, err = eng.Get(ctx, "p-1")
	require.NoError(t, err)
	assert.Equal(t, domain.KindProduct, got.Kind)
	assert.Equal(t, int64(18500), got.Price)
}

func TestConsumer_Deleted(t *testing.T) {
	svc, eng := newCatalog()
	c := NewConsumer(svc, slog.New(slog.DiscardHandler))
	ctx := context.Background()
	require.NoError(t, eng.Index(ctx, &domain.Listing{ID: "p-1", Kind: domain.KindProduct, Name: "x"}))

	require.NoError(t, c.Handle(ctx, newEvent(t, TopicProductDeleted, "p-1", DeletedData{ID: "p-1"})))
	assert.Zero(t, eng.Len())

	// Already gone is not a failure.
	require.NoError(t, c.Handle(ctx, newEvent(t, TopicProductDeleted, "p-1", DeletedData{})))
}

func TestConsumer_InvalidPayloadFails(t *testing.T) {
	svc, _ := newCatalog()
	c := NewConsumer(svc, slog.New(slog.DiscardHandler))

	bad := newEvent(t, TopicProductCreated, "p-1", domain.Listing{Name: "x", Rating: 11})
	err := c.Handle(context.Background(), bad)
	require.Error(t, err)

	broken := &pkgkafka.Event{EventType: TopicProductUpdated, AggregateID: "p-1", Data: json.RawMessage(`{"price":"lots"}`)}
	assert.Error(t, c.Handle(context.Background(), broken))
}

func TestConsumer_IgnoresUnknownTypes(t *testing.T) {
	svc, eng := newCatalog()
	c := NewConsumer(svc, slog.New(slog.DiscardHandler))

	for _, typ := range []string{"ecommerce.order.created", "product.archived", "garbage"} {
		assert.NoError(t, c.Handle(context.Background(), newEvent(t, typ, "x", DeletedData{ID: "x"})), typ)
	}
	assert.Zero(t, eng.Len())
}

type failingIndexer struct{ err error }

func (f failingIndexer) IndexListing(context.Context, *domain.Listing) error { return f.err }
func (f failingIndexer) DeleteListing(context.Context, string) error         { return f.err }

func TestConsumer_PropagatesIndexerErrors(t *testing.T) {
	boom := apperrors.Unavailable("engine down", nil)
	c := NewConsumer(failingIndexer{err: boom}, slog.New(slog.DiscardHandler))

	err := c.Handle(context.Background(), newEvent(t, TopicVendorDeleted, "v-1", DeletedData{ID: "v-1"}))
	assert.True(t, errors.Is(err, apperrors.ErrServiceUnavail))
}

func TestConsumer_WithIdempotency(t *testing.T) {
	svc, eng := newCatalog()
	c := NewConsumer(svc, slog.New(slog.DiscardHandler))
	store := pkgkafka.NewMemoryIdempotencyStore(time.Hour)
	h := pkgkafka.IdempotentHandler(store, c.Handle, slog.New(slog.DiscardHandler))

	e := newEvent(t, TopicVendorCreated, "v-1", domain.Listing{Name: "Garki Gadgets"})
	require.NoError(t, h(context.Background(), e))
	assert.ErrorIs(t, h(context.Background(), e), pkgkafka.ErrDuplicate)
	assert.Equal(t, 1, eng.Len())
}
