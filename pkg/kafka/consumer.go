package kafka

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ErrDuplicate is returned by IdempotentHandler for an event already
// handled. The consumer commits such messages without counting a failure.
var ErrDuplicate = errors.New("duplicate event")

const (
	defaultMaxRetries = 3
	defaultRetryDelay = 100 * time.Millisecond
)

// Handler processes one event.
type Handler func(ctx context.Context, event *Event) error

// MessageReader is satisfied by *kafka.Reader.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// ConsumerConfig holds Kafka consumer settings.
type ConsumerConfig struct {
	Brokers    []string
	GroupID    string
	Topic      string
	MinBytes   int
	MaxBytes   int
	MaxRetries int
	RetryDelay time.Duration
}

// Consumer reads one topic in a consumer group, retries failing handlers
// with linear backoff and forwards messages that still fail to the DLQ.
type Consumer struct {
	reader     MessageReader
	topic      string
	group      string
	handler    Handler
	dlq        DeadLetterer
	metrics    *Metrics
	maxRetries int
	retryDelay time.Duration
	logger     *slog.Logger
	closeOnce  sync.Once
}

// NewConsumer creates a consumer backed by a kafka.Reader. dlq and metrics
// may be nil.
func NewConsumer(cfg ConsumerConfig, handler Handler, dlq DeadLetterer, metrics *Metrics, l *slog.Logger) *Consumer {
	if cfg.MinBytes == 0 {
		cfg.MinBytes = 1
	}
	if cfg.MaxBytes == 0 {
		cfg.MaxBytes = 10 << 20
	}
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		GroupID:  cfg.GroupID,
		Topic:    cfg.Topic,
		MinBytes: cfg.MinBytes,
		MaxBytes: cfg.MaxBytes,
	})
	return NewConsumerWithReader(r, cfg, handler, dlq, metrics, l)
}

// NewConsumerWithReader wires a consumer around an existing reader.
func NewConsumerWithReader(r MessageReader, cfg ConsumerConfig, handler Handler, dlq DeadLetterer, metrics *Metrics, l *slog.Logger) *Consumer {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = defaultRetryDelay
	}
	return &Consumer{
		reader:     r,
		topic:      cfg.Topic,
		group:      cfg.GroupID,
		handler:    handler,
		dlq:        dlq,
		metrics:    metrics,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		logger:     l.With(slog.String("topic", cfg.Topic), slog.String("consumer_group", cfg.GroupID)),
	}
}

// Topic returns the consumed topic.
func (c *Consumer) Topic() string { return c.topic }

// Start consumes until ctx is canceled, then closes the reader.
func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info("consumer started")
	defer func() { _ = c.Close() }()

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("consumer stopping")
				return nil
			}
			c.logger.Error("failed to fetch message", slog.String("error", err.Error()))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(c.retryDelay):
			}
			continue
		}

		c.process(ctx, msg)
		if ctx.Err() != nil {
			return nil
		}
		if err := c.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			c.logger.Error("failed to commit message",
				slog.Int64("offset", msg.Offset),
				slog.String("error", err.Error()),
			)
		}
	}
}

// process handles one message. Every outcome ends in a commit: undecodable
// messages and exhausted retries go to the DLQ first.
func (c *Consumer) process(ctx context.Context, msg kafka.Message) {
	start := time.Now()
	c.metrics.count(received, c.topic, c.group)
	defer func() { c.metrics.observe(time.Since(start).Seconds(), c.topic, c.group) }()

	ctx, span := otel.Tracer(tracerName).Start(extractTrace(ctx, msg.Headers), "kafka.consume "+msg.Topic,
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.destination.name", msg.Topic),
			attribute.Int("messaging.kafka.partition", msg.Partition),
			attribute.Int64("messaging.kafka.offset", msg.Offset),
		),
	)
	defer span.End()

	event, err := UnmarshalEvent(msg.Value)
	if err != nil {
		c.logger.ErrorContext(ctx, "undecodable message", slog.Int64("offset", msg.Offset), slog.String("error", err.Error()))
		span.SetStatus(codes.Error, err.Error())
		c.deadLetter(ctx, msg, err)
		return
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		lastErr = c.handler(ctx, event)
		if lastErr == nil || errors.Is(lastErr, ErrDuplicate) {
			break
		}
		c.logger.WarnContext(ctx, "handler failed",
			slog.String("event_type", event.EventType),
			slog.String("aggregate_id", event.AggregateID),
			slog.Int("attempt", attempt),
			slog.Int("max_retries", c.maxRetries),
			slog.String("error", lastErr.Error()),
		)
		if attempt < c.maxRetries {
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Duration(attempt) * c.retryDelay):
			}
		}
	}

	switch {
	case lastErr == nil:
		c.metrics.count(processed, c.topic, c.group)
	case errors.Is(lastErr, ErrDuplicate):
		c.metrics.count(duplicates, c.topic, c.group)
	default:
		c.metrics.count(failed, c.topic, c.group)
		span.RecordError(lastErr)
		span.SetStatus(codes.Error, lastErr.Error())
		c.logger.ErrorContext(ctx, "handler failed after all retries",
			slog.String("event_type", event.EventType),
			slog.String("aggregate_id", event.AggregateID),
			slog.Int64("offset", msg.Offset),
			slog.String("error", lastErr.Error()),
		)
		c.deadLetter(ctx, msg, lastErr)
	}
}

func (c *Consumer) deadLetter(ctx context.Context, msg kafka.Message, cause error) {
	if c.dlq == nil {
		return
	}
	if err := c.dlq.Publish(ctx, msg, cause, c.group); err != nil {
		c.logger.ErrorContext(ctx, "failed to dead-letter message",
			slog.Int64("offset", msg.Offset),
			slog.String("error", err.Error()),
		)
		return
	}
	c.metrics.count(deadLettered, c.topic, c.group)
}

// Close closes the reader once.
func (c *Consumer) Close() error {
	var err error
	c.closeOnce.Do(func() { err = c.reader.Close() })
	return err
}
