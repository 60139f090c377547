package consumer

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"soulbound/internal/audit"
	"soulbound/internal/audit/metrics"
	"soulbound/internal/platform/kafka/consumer"
	"soulbound/pkg/domain"
)

// MaterializeStore writes consumed events into the queryable table.
type MaterializeStore interface {
	AppendMaterialized(ctx context.Context, event audit.Event) error
}

// MaterializeHandler turns Kafka audit records back into rows. Inserts are
// idempotent on event ID, so redelivery is harmless. Malformed records are
// logged and skipped; there is nothing to retry.
type MaterializeHandler struct {
	store   MaterializeStore
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewMaterializeHandler(store MaterializeStore, logger *slog.Logger, m *metrics.Metrics) *MaterializeHandler {
	return &MaterializeHandler{store: store, logger: logger, metrics: m}
}

// wirePayload matches the JSON structure the outbox store publishes.
type wirePayload struct {
	ID        string `json:"ID"`
	Category  string `json:"Category"`
	Action    string `json:"Action"`
	Timestamp string `json:"Timestamp"`
	Actor     string `json:"Actor"`
	Subject   string `json:"Subject"`
	Decision  string `json:"Decision"`
	Reason    string `json:"Reason"`
	RequestID string `json:"RequestID"`
	ClientIP  string `json:"ClientIP"`
	Device    string `json:"Device"`
}

func (h *MaterializeHandler) Handle(ctx context.Context, msg *consumer.Message) error {
	var payload wirePayload
	if err := json.Unmarshal(msg.Value, &payload); err != nil {
		h.logger.Warn("failed to unmarshal audit payload",
			"topic", msg.Topic,
			"key", string(msg.Key),
			"error", err,
		)
		h.metrics.RecordConsumed(msg.Topic, "malformed")
		return nil
	}

	eventID, err := uuid.Parse(payload.ID)
	if err != nil {
		h.logger.Warn("failed to parse audit event ID",
			"topic", msg.Topic,
			"id", payload.ID,
			"error", err,
		)
		h.metrics.RecordConsumed(msg.Topic, "malformed")
		return nil
	}

	event := audit.Event{
		ID:        eventID,
		Action:    audit.Action(payload.Action),
		Subject:   payload.Subject,
		Decision:  payload.Decision,
		Reason:    payload.Reason,
		RequestID: payload.RequestID,
		ClientIP:  payload.ClientIP,
		Device:    payload.Device,
	}
	if ts, err := time.Parse(time.RFC3339Nano, payload.Timestamp); err == nil {
		event.Timestamp = ts
	} else {
		event.Timestamp = msg.Timestamp
	}
	if payload.Actor != "" {
		if actor, err := domain.ParseAddress(payload.Actor); err == nil {
			event.Actor = actor
		}
	}

	if err := h.store.AppendMaterialized(ctx, event); err != nil {
		h.metrics.RecordConsumed(msg.Topic, "error")
		return err
	}
	h.metrics.RecordConsumed(msg.Topic, "ok")
	return nil
}
