package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/charisk/newswire/model"
)

// Producer publishes JSON-encoded news events to a Kafka topic.
type Producer struct {
	writer *kafka.Writer
	logger *slog.Logger
}

// NewProducer creates a Producer for the given brokers and topic.
func NewProducer(brokers []string, topic string) *Producer {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		MaxAttempts:  3,
		RequiredAcks: kafka.RequireAll,
	}
	return &Producer{
		writer: w,
		logger: slog.Default().With("component", "events-producer", "topic", topic),
	}
}

func (p *Producer) publish(ctx context.Context, id int64, env Envelope) error {
	value, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshaling %s event: %w", env.Type, err)
	}
	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(id, 10)),
		Value: value,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("failed to publish event", "type", env.Type, "id", id, "error", err)
		return fmt.Errorf("publishing %s event: %w", env.Type, err)
	}
	p.logger.Debug("event published", "type", env.Type, "id", id)
	return nil
}

// Created publishes a news.created event carrying the full record.
func (p *Producer) Created(ctx context.Context, n model.News) error {
	return p.publish(ctx, n.ID, Envelope{Type: TypeCreated, News: &n})
}

// Updated publishes a news.updated event carrying the full record.
func (p *Producer) Updated(ctx context.Context, n model.News) error {
	return p.publish(ctx, n.ID, Envelope{Type: TypeUpdated, News: &n})
}

// Deleted publishes a news.deleted event.
func (p *Producer) Deleted(ctx context.Context, id int64) error {
	return p.publish(ctx, id, Envelope{Type: TypeDeleted, ID: id})
}

// Close flushes and closes the underlying writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}
