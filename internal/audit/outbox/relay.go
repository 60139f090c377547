// Package outbox ships persisted audit events to Kafka. The relay polls the
// outbox table and publishes in insert order; together with the idempotent
// consumer this gives at-least-once delivery with no event loss once the
// store append succeeds.
package outbox

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"soulbound/internal/audit/metrics"
)

// Entry is one unpublished audit event awaiting relay.
type Entry struct {
	ID      uuid.UUID
	Topic   string
	Key     string
	Payload []byte
}

// Store is the outbox side of the audit postgres store.
type Store interface {
	FetchUnpublished(ctx context.Context, limit int) ([]Entry, error)
	MarkPublished(ctx context.Context, ids []uuid.UUID) error
}

// Producer publishes one record to a topic.
type Producer interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
}

// Relay periodically drains the outbox into Kafka.
type Relay struct {
	store    Store
	producer Producer
	interval time.Duration
	batch    int
	log      *slog.Logger
	metrics  *metrics.Metrics
}

func NewRelay(store Store, producer Producer, interval time.Duration, batch int, log *slog.Logger, m *metrics.Metrics) *Relay {
	if interval <= 0 {
		interval = time.Second
	}
	if batch <= 0 {
		batch = 100
	}
	return &Relay{
		store:    store,
		producer: producer,
		interval: interval,
		batch:    batch,
		log:      log,
		metrics:  m,
	}
}

// Run drains the outbox on a fixed interval until the context is canceled.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := r.drain(ctx); err != nil {
				r.log.ErrorContext(ctx, "draining audit outbox", "error", err)
			}
		}
	}
}

// drain publishes one batch. On a publish failure the already-shipped
// prefix is marked and the rest retries next tick, preserving order.
func (r *Relay) drain(ctx context.Context) error {
	start := time.Now()
	entries, err := r.store.FetchUnpublished(ctx, r.batch)
	if err != nil {
		return fmt.Errorf("fetching outbox entries: %w", err)
	}
	if len(entries) == 0 {
		return nil
	}

	published := make([]uuid.UUID, 0, len(entries))
	var publishErr error
	for _, entry := range entries {
		if err := r.producer.Publish(ctx, entry.Topic, []byte(entry.Key), entry.Payload); err != nil {
			r.metrics.RecordRelayed(entry.Topic, "error")
			publishErr = fmt.Errorf("publishing outbox entry %s: %w", entry.ID, err)
			break
		}
		r.metrics.RecordRelayed(entry.Topic, "ok")
		published = append(published, entry.ID)
	}

	if len(published) > 0 {
		if err := r.store.MarkPublished(ctx, published); err != nil {
			return fmt.Errorf("marking outbox entries published: %w", err)
		}
	}
	r.metrics.ObserveRelayBatch(time.Since(start))
	return publishErr
}
