package audit

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"soulbound/internal/audit/metrics"
	"soulbound/internal/platform/device"
	"soulbound/pkg/requestcontext"
)

// Recorder is the narrow interface domain services emit through. Emit does
// not return an error: a slow or broken audit pipeline must not fail the
// operation being audited.
type Recorder interface {
	Emit(ctx context.Context, event Event)
}

// Publisher fans events out to the worker through a bounded channel. When
// the buffer is full the event is dropped and counted rather than blocking
// the caller.
type Publisher struct {
	inbox   chan Event
	log     *slog.Logger
	metrics *metrics.Metrics
}

func NewPublisher(buffer int, log *slog.Logger, m *metrics.Metrics) *Publisher {
	if buffer <= 0 {
		buffer = 256
	}
	return &Publisher{
		inbox:   make(chan Event, buffer),
		log:     log,
		metrics: m,
	}
}

// Emit enriches the event from request context and hands it to the worker.
func (p *Publisher) Emit(ctx context.Context, event Event) {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.Actor.IsZero() {
		event.Actor = requestcontext.Caller(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if event.ClientIP == "" {
		event.ClientIP = requestcontext.ClientIP(ctx)
	}
	if event.Device == "" {
		event.Device = device.Describe(requestcontext.UserAgent(ctx))
	}

	select {
	case p.inbox <- event:
		p.metrics.RecordEmitted(string(event.Action))
	default:
		p.metrics.RecordDropped(string(event.Action))
		p.log.WarnContext(ctx, "audit buffer full, dropping event",
			"action", event.Action,
			"subject", event.Subject,
			"request_id", event.RequestID,
		)
	}
}

// Events exposes the worker side of the buffer.
func (p *Publisher) Events() <-chan Event {
	return p.inbox
}
