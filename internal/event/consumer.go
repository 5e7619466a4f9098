// Package event connects the catalog to the marketplace Kafka topics.
package event

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/JamesLuiz/abuja-connect-shop-sub000/internal/domain"
	apperrors "github.com/JamesLuiz/abuja-connect-shop-sub000/pkg/errors"
	pkgkafka "github.com/JamesLuiz/abuja-connect-shop-sub000/pkg/kafka"
)

// Topics consumed by the catalog.
var (
	TopicProductCreated = pkgkafka.Topic("product", "created")
	TopicProductUpdated = pkgkafka.Topic("product", "updated")
	TopicProductDeleted = pkgkafka.Topic("product", "deleted")
	TopicVendorCreated  = pkgkafka.Topic("vendor", "created")
	TopicVendorUpdated  = pkgkafka.Topic("vendor", "updated")
	TopicVendorDeleted  = pkgkafka.Topic("vendor", "deleted")
)

// ConsumedTopics lists every topic the catalog subscribes to.
func ConsumedTopics() []string {
	return []string{
		TopicProductCreated, TopicProductUpdated, TopicProductDeleted,
		TopicVendorCreated, TopicVendorUpdated, TopicVendorDeleted,
	}
}

// ListingIndexer is the part of the catalog service the consumer drives.
type ListingIndexer interface {
	IndexListing(ctx context.Context, l *domain.Listing) error
	DeleteListing(ctx context.Context, id string) error
}

// DeletedData is the payload of a *.deleted event.
type DeletedData struct {
	ID string `json:"id"`
}

// Consumer applies vendor and product change events to the catalog.
type Consumer struct {
	indexer ListingIndexer
	logger  *slog.Logger
}

// NewConsumer creates a consumer.
func NewConsumer(indexer ListingIndexer, logger *slog.Logger) *Consumer {
	return &Consumer{indexer: indexer, logger: logger}
}

// Handle dispatches on the event type. Both "ecommerce.product.created"
// and "product.created" forms are accepted; unknown types are ignored.
func (c *Consumer) Handle(ctx context.Context, event *pkgkafka.Event) error {
	eventType := strings.TrimPrefix(event.EventType, pkgkafka.TopicPrefix+".")
	aggregate, action, ok := strings.Cut(eventType, ".")

	var kind domain.Kind
	switch aggregate {
	case "product":
		kind = domain.KindProduct
	case "vendor":
		kind = domain.KindVendor
	default:
		ok = false
	}
	if !ok {
		c.logger.WarnContext(ctx, "unknown event type received",
			slog.String("event_type", event.EventType),
			slog.String("event_id", event.EventID),
		)
		return nil
	}

	switch action {
	case "created", "updated":
		return c.upsert(ctx, kind, action, event)
	case "deleted":
		return c.delete(ctx, kind, event)
	default:
		c.logger.WarnContext(ctx, "unknown event action received",
			slog.String("event_type", event.EventType),
			slog.String("event_id", event.EventID),
		)
		return nil
	}
}

func (c *Consumer) upsert(ctx context.Context, kind domain.Kind, action string, event *pkgkafka.Event) error {
	var l domain.Listing
	if err := json.Unmarshal(event.Data, &l); err != nil {
		return fmt.Errorf("unmarshal %s.%s data: %w", kind, action, err)
	}
	if l.ID == "" {
		l.ID = event.AggregateID
	}
	l.Kind = kind

	if err := c.indexer.IndexListing(ctx, &l); err != nil {
		return fmt.Errorf("index %s from %s event: %w", kind, action, err)
	}

	c.logger.InfoContext(ctx, "indexed listing from event",
		slog.String("listing_id", l.ID),
		slog.String("event_type", event.EventType),
	)
	return nil
}

func (c *Consumer) delete(ctx context.Context, kind domain.Kind, event *pkgkafka.Event) error {
	var data DeletedData
	if len(event.Data) > 0 {
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return fmt.Errorf("unmarshal %s.deleted data: %w", kind, err)
		}
	}
	if data.ID == "" {
		data.ID = event.AggregateID
	}

	err := c.indexer.DeleteListing(ctx, data.ID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return fmt.Errorf("delete %s from deleted event: %w", kind, err)
	}

	c.logger.InfoContext(ctx, "removed listing from event",
		slog.String("listing_id", data.ID),
		slog.Bool("was_indexed", err == nil),
	)
	return nil
}
