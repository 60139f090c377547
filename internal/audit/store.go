package audit

import "context"

// Store persists audit events. The memory implementation is a bounded feed
// for tests and single-node runs; the postgres implementation writes to the
// transactional outbox and reads from the table the Kafka consumer
// materializes.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListRecent(ctx context.Context, limit int) ([]Event, error)
	ListBySubject(ctx context.Context, subject string, limit int) ([]Event, error)
}
