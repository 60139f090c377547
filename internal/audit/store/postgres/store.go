package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"soulbound/internal/audit"
	"soulbound/pkg/domain"
)

// Store implements audit.Store using the transactional outbox pattern.
// Events are written to the audit_outbox table and published to Kafka by
// the relay; the consumer materializes them into audit_events, which the
// read methods query. Kafka is the source of truth for audit events.
type Store struct {
	db *sql.DB
}

// New creates a PostgreSQL audit store that writes to the outbox.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// wirePayload is the JSON structure published to Kafka. Field names match
// the consumer's deserialization.
type wirePayload struct {
	ID        string `json:"ID"`
	Category  string `json:"Category"`
	Action    string `json:"Action"`
	Timestamp string `json:"Timestamp"`
	Actor     string `json:"Actor,omitempty"`
	Subject   string `json:"Subject"`
	Decision  string `json:"Decision,omitempty"`
	Reason    string `json:"Reason,omitempty"`
	RequestID string `json:"RequestID,omitempty"`
	ClientIP  string `json:"ClientIP,omitempty"`
	Device    string `json:"Device,omitempty"`
}

// Append writes an audit event to the outbox table for Kafka publishing.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}

	payload := wirePayload{
		ID:        event.ID.String(),
		Category:  string(event.Action.Category()),
		Action:    string(event.Action),
		Timestamp: event.Timestamp.Format(time.RFC3339Nano),
		Subject:   event.Subject,
		Decision:  event.Decision,
		Reason:    event.Reason,
		RequestID: event.RequestID,
		ClientIP:  event.ClientIP,
		Device:    event.Device,
	}
	if !event.Actor.IsZero() {
		payload.Actor = event.Actor.Hex()
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}

	query := `
		INSERT INTO audit_outbox (id, topic, key, payload, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err = s.db.ExecContext(ctx, query,
		event.ID,
		audit.TopicFor(event.Action),
		event.ID.String(),
		payloadBytes,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("insert outbox entry: %w", err)
	}
	return nil
}

// AppendMaterialized inserts an event into the audit_events table with a
// specific ID. Used by the Kafka consumer to materialize events for
// querying. Idempotent: duplicate inserts are ignored via ON CONFLICT DO
// NOTHING.
func (s *Store) AppendMaterialized(ctx context.Context, event audit.Event) error {
	query := `
		INSERT INTO audit_events (
			id, category, action, occurred_at, actor, subject,
			decision, reason, request_id, client_ip, device
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO NOTHING
	`
	actor := ""
	if !event.Actor.IsZero() {
		actor = event.Actor.Hex()
	}
	_, err := s.db.ExecContext(ctx, query,
		event.ID,
		string(event.Action.Category()),
		string(event.Action),
		event.Timestamp,
		actor,
		event.Subject,
		event.Decision,
		event.Reason,
		event.RequestID,
		event.ClientIP,
		event.Device,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListRecent returns the most recent materialized events, newest first.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]audit.Event, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `
		SELECT id, action, occurred_at, actor, subject, decision, reason,
		       request_id, client_ip, device
		FROM audit_events
		ORDER BY occurred_at DESC
		LIMIT $1
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent audit events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

// ListBySubject returns materialized events for one subject, newest first.
func (s *Store) ListBySubject(ctx context.Context, subject string, limit int) ([]audit.Event, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `
		SELECT id, action, occurred_at, actor, subject, decision, reason,
		       request_id, client_ip, device
		FROM audit_events
		WHERE subject = $1
		ORDER BY occurred_at DESC
		LIMIT $2
	`
	rows, err := s.db.QueryContext(ctx, query, subject, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit events by subject: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]audit.Event, error) {
	var events []audit.Event
	for rows.Next() {
		var (
			event audit.Event
			actor string
		)
		if err := rows.Scan(
			&event.ID, &event.Action, &event.Timestamp, &actor,
			&event.Subject, &event.Decision, &event.Reason,
			&event.RequestID, &event.ClientIP, &event.Device,
		); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		if actor != "" {
			parsed, err := parseActor(actor)
			if err != nil {
				return nil, err
			}
			event.Actor = parsed
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}

func parseActor(s string) (domain.Address, error) {
	addr, err := domain.ParseAddress(s)
	if err != nil {
		return domain.ZeroAddress, fmt.Errorf("parse actor address: %w", err)
	}
	return addr, nil
}
