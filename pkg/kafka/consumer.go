package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	kafkago "github.com/segmentio/kafka-go"
)

// Handler processes a consumed Kafka message.
type Handler func(ctx context.Context, msg Message) error

// reader is the subset of *kafkago.Reader the consumer needs.
type reader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Consumer reads a topic as part of a consumer group and hands each message
// to a Handler. Offsets are committed only after the handler succeeds.
//
// Kafka commits are positional, so a failed message cannot be skipped
// without committing past it. A failing handler is retried with exponential
// backoff; once the retries are exhausted Start returns an error with the
// offset still uncommitted, and the message is redelivered to whichever
// member next owns the partition.
type Consumer struct {
	reader     reader
	handler    Handler
	logger     *slog.Logger
	newBackOff func() backoff.BackOff
	topic      string
	group      string
}

func defaultBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = 2 * time.Minute
	return b
}

// NewConsumer creates a Consumer for topic.
func NewConsumer(cfg Config, topic string, handler Handler, logger *slog.Logger) (*Consumer, error) {
	readerCfg := kafkago.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    topic,
		GroupID:  cfg.ConsumerGroup,
		MinBytes: 1,
		MaxBytes: 10 * 1024 * 1024,
	}

	dialer, err := cfg.dialer()
	if err != nil {
		return nil, err
	}
	if dialer != nil {
		readerCfg.Dialer = dialer
	}

	return newConsumer(kafkago.NewReader(readerCfg), topic, cfg.ConsumerGroup, handler, logger), nil
}

func newConsumer(r reader, topic, group string, handler Handler, logger *slog.Logger) *Consumer {
	return &Consumer{
		reader:     r,
		handler:    handler,
		logger:     logger,
		newBackOff: defaultBackOff,
		topic:      topic,
		group:      group,
	}
}

// Start consumes until ctx is canceled.
func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info("consumer starting", slog.String("topic", c.topic), slog.String("group", c.group))

	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
				c.logger.Info("consumer stopping", slog.String("topic", c.topic))
				return nil
			}
			return fmt.Errorf("fetching message: %w", err)
		}

		if err := c.handle(ctx, m); err != nil {
			if ctx.Err() != nil {
				c.logger.Info("consumer stopping", slog.String("topic", c.topic))
				return nil
			}
			return fmt.Errorf("handling %s/%d offset %d: %w", m.Topic, m.Partition, m.Offset, err)
		}

		if err := c.reader.CommitMessages(ctx, m); err != nil {
			c.logger.Error("commit error",
				slog.String("topic", m.Topic),
				slog.Int("partition", m.Partition),
				slog.Int64("offset", m.Offset),
				slog.String("error", err.Error()),
			)
		}
	}
}

// handle runs the handler until it succeeds, the backoff gives up or ctx ends.
func (c *Consumer) handle(ctx context.Context, m kafkago.Message) error {
	msg := fromKafkaMessage(m)
	attempt := 0

	return backoff.RetryNotify(
		func() error {
			attempt++
			return c.handler(ctx, msg)
		},
		backoff.WithContext(c.newBackOff(), ctx),
		func(err error, wait time.Duration) {
			c.logger.Warn("handler error, retrying",
				slog.String("topic", m.Topic),
				slog.Int("partition", m.Partition),
				slog.Int64("offset", m.Offset),
				slog.Int("attempt", attempt),
				slog.Duration("backoff", wait),
				slog.String("error", err.Error()),
			)
		},
	)
}

// Close closes the reader.
func (c *Consumer) Close() error {
	if err := c.reader.Close(); err != nil {
		return fmt.Errorf("closing kafka reader: %w", err)
	}
	return nil
}
