package events

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/segmentio/kafka-go"

	"github.com/charisk/newswire/services"
)

// Consumer reads news events and drives the index maintenance hooks.
type Consumer struct {
	reader  *kafka.Reader
	indexer services.Indexer
	logger  *slog.Logger
}

// NewConsumer creates a Consumer bound to the given indexer.
func NewConsumer(brokers []string, topic, group string, indexer services.Indexer) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     brokers,
		Topic:       topic,
		GroupID:     group,
		MinBytes:    1e3,
		MaxBytes:    10e6,
		StartOffset: kafka.LastOffset,
	})
	return &Consumer{
		reader:  r,
		indexer: indexer,
		logger:  slog.Default().With("component", "events-consumer", "topic", topic),
	}
}

// Run consumes events until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	c.logger.Info("consumer started")
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("consumer stopping", "reason", ctx.Err())
				return c.reader.Close()
			}
			c.logger.Error("failed to fetch message", "error", err)
			continue
		}

		c.apply(msg.Value)

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			c.logger.Error("failed to commit message", "offset", msg.Offset, "error", err)
		}
	}
}

// apply dispatches one event to the index. Index maintenance never fails
// on well-formed input; malformed payloads are logged and skipped so one
// bad message can't wedge the partition.
func (c *Consumer) apply(value []byte) {
	var env Envelope
	if err := json.Unmarshal(value, &env); err != nil {
		c.logger.Error("dropping undecodable event", "error", err)
		return
	}

	switch env.Type {
	case TypeCreated:
		if env.News != nil {
			c.indexer.Add(*env.News)
		}
	case TypeUpdated:
		if env.News != nil {
			c.indexer.Update(*env.News)
		}
	case TypeDeleted:
		c.indexer.Remove(env.ID)
	default:
		c.logger.Warn("dropping event of unknown type", "type", env.Type)
	}
}
