package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/JamesLuiz/abuja-connect-shop-sub000/internal/service"
	pkgkafka "github.com/JamesLuiz/abuja-connect-shop-sub000/pkg/kafka"
)

// TopicCatalogReindexed announces a completed full reindex.
var TopicCatalogReindexed = pkgkafka.Topic("catalog", "reindexed")

const (
	AggregateTypeCatalog = "catalog"
	SourceCatalogService = "catalog-service"
)

// Publisher is satisfied by *pkgkafka.Producer.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes catalog events.
type Producer struct {
	kafka     Publisher
	indexName string
	logger    *slog.Logger
}

// NewProducer creates a producer. indexName becomes the aggregate id of
// reindex events.
func NewProducer(kafka Publisher, indexName string, logger *slog.Logger) *Producer {
	return &Producer{kafka: kafka, indexName: indexName, logger: logger}
}

// PublishReindexed implements service.EventPublisher.
func (p *Producer) PublishReindexed(ctx context.Context, summary service.ReindexSummary) error {
	event, err := pkgkafka.NewEvent(ctx, SourceCatalogService, TopicCatalogReindexed, AggregateTypeCatalog, p.indexName, summary)
	if err != nil {
		return fmt.Errorf("build reindexed event: %w", err)
	}
	event.WithMetadata("source", summary.Source)

	if err := p.kafka.Publish(ctx, TopicCatalogReindexed, event); err != nil {
		return fmt.Errorf("publish reindexed event: %w", err)
	}

	p.logger.InfoContext(ctx, "published reindexed event",
		slog.String("event_id", event.EventID),
		slog.Int("indexed", summary.Indexed),
	)
	return nil
}

var _ service.EventPublisher = (*Producer)(nil)
