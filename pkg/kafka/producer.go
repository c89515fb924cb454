// Package kafka wraps segmentio/kafka-go with a JSON event producer and a
// fetch-handle-commit consumer loop.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/corpus-ir/pkg/config"
	"github.com/segmentio/kafka-go"
)

// MessageWriter is the subset of *kafka.Writer the producer needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes JSON-encoded values to one topic.
type Producer struct {
	writer MessageWriter
	topic  string
	logger *slog.Logger
}

func NewProducer(cfg config.KafkaConfig, topic string) *Producer {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           10 * time.Millisecond,
		MaxAttempts:            3,
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return NewProducerWithWriter(w, topic)
}

// NewProducerWithWriter builds a Producer over an existing writer.
func NewProducerWithWriter(w MessageWriter, topic string) *Producer {
	return &Producer{
		writer: w,
		topic:  topic,
		logger: slog.Default().With("component", "kafka-producer", "topic", topic),
	}
}

// Publish serialises value as JSON and writes it synchronously under key.
func (p *Producer) Publish(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshaling event value: %w", err)
	}
	msg := kafka.Message{Key: []byte(key), Value: data}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("failed to publish message", "key", key, "error", err)
		return fmt.Errorf("publishing to %s: %w", p.topic, err)
	}
	p.logger.Debug("message published", "key", key, "value_size", len(data))
	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
