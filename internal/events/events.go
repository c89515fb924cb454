// Package events carries index lifecycle notifications between the CLI and
// the search service over Kafka.
package events

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/corpus-ir/pkg/kafka"
)

type RunKind string

const (
	RunIndex RunKind = "index"
	RunErase RunKind = "erase"
)

// IndexComplete is published after an index or erase run finishes.
type IndexComplete struct {
	Kind        RunKind   `json:"kind"`
	Documents   int       `json:"documents"`
	Indexed     int       `json:"indexed"`
	Failed      int       `json:"failed"`
	Postings    int       `json:"postings"`
	DurationMS  int64     `json:"duration_ms"`
	CompletedAt time.Time `json:"completed_at"`
}

// Publisher publishes run events. A nil *Publisher discards them.
type Publisher struct {
	producer *kafka.Producer
}

func NewPublisher(p *kafka.Producer) *Publisher {
	return &Publisher{producer: p}
}

func (p *Publisher) PublishIndexComplete(ctx context.Context, ev IndexComplete) error {
	if p == nil || p.producer == nil {
		return nil
	}
	if ev.CompletedAt.IsZero() {
		ev.CompletedAt = time.Now().UTC()
	}
	if err := p.producer.Publish(ctx, string(ev.Kind), ev); err != nil {
		return fmt.Errorf("publishing %s completion: %w", ev.Kind, err)
	}
	return nil
}

// Invalidator drops cached search results.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// InvalidationHandler returns a kafka.MessageHandler that flushes the cache
// whenever an index or erase run completes.
func InvalidationHandler(inv Invalidator) kafka.MessageHandler {
	logger := slog.Default().With("component", "index-events")
	return func(ctx context.Context, _ []byte, value []byte) error {
		ev, err := kafka.DecodeJSON[IndexComplete](value)
		if err != nil {
			return err
		}
		if err := inv.Invalidate(ctx); err != nil {
			return fmt.Errorf("invalidating cache after %s: %w", ev.Kind, err)
		}
		logger.Info("cache invalidated",
			"run", ev.Kind,
			"indexed", ev.Indexed,
			"completed_at", ev.CompletedAt,
		)
		return nil
	}
}
