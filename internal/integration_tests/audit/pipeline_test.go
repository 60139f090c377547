//go:build integration

// Package audit verifies the full audit delivery path: outbox append,
// Kafka relay, consumer materialization, and the queryable table.
package audit

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"soulbound/internal/audit"
	auditconsumer "soulbound/internal/audit/consumer"
	"soulbound/internal/audit/outbox"
	auditpg "soulbound/internal/audit/store/postgres"
	kafkaconsumer "soulbound/internal/platform/kafka/consumer"
	kafkaproducer "soulbound/internal/platform/kafka/producer"
	"soulbound/pkg/domain"
	"soulbound/pkg/testutil/containers"
)

type AuditPipelineSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *auditpg.Store
	producer *kafkaproducer.Producer
	cancel   context.CancelFunc
	done     chan struct{}
}

func TestAuditPipelineSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(AuditPipelineSuite))
}

func (s *AuditPipelineSuite) SetupSuite() {
	ctx := context.Background()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	s.postgres = containers.NewPostgresContainer(s.T())
	redpanda := containers.NewRedpandaContainer(s.T())
	s.store = auditpg.New(s.postgres.DB)

	producer, err := kafkaproducer.New(redpanda.Brokers)
	s.Require().NoError(err)
	s.producer = producer
	s.Require().NoError(producer.EnsureTopics(ctx, 1, 1, audit.Topics()...))

	relay := outbox.NewRelay(s.store, producer, 100*time.Millisecond, 50, log, nil)
	router := auditconsumer.NewRouter(log, auditconsumer.NewMaterializeHandler(s.store, log, nil))
	consumer, err := kafkaconsumer.New(redpanda.Brokers, "audit-pipeline-test", audit.Topics(), router, log)
	s.Require().NoError(err)

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	go func() {
		defer close(s.done)
		_ = relay.Run(runCtx)
	}()
	go func() {
		_ = consumer.Run(runCtx)
	}()
}

func (s *AuditPipelineSuite) TearDownSuite() {
	s.cancel()
	<-s.done
	s.producer.Close()
}

func actor(suffix byte) domain.Address {
	var a domain.Address
	a[19] = suffix
	return a
}

func (s *AuditPipelineSuite) TestEventTravelsOutboxToQueryableTable() {
	ctx := context.Background()

	event := audit.Event{
		ID:        uuid.New(),
		Action:    audit.ActionTokenMinted,
		Timestamp: time.Now(),
		Actor:     actor(1),
		Subject:   "42",
		Decision:  audit.DecisionAllowed,
		RequestID: "req-123",
		ClientIP:  "10.0.0.1",
	}
	s.Require().NoError(s.store.Append(ctx, event))

	var got audit.Event
	s.Require().Eventually(func() bool {
		events, err := s.store.ListBySubject(ctx, "42", 10)
		if err != nil || len(events) == 0 {
			return false
		}
		got = events[0]
		return true
	}, 15*time.Second, 200*time.Millisecond, "event must materialize via kafka")

	s.Equal(event.ID, got.ID)
	s.Equal(audit.ActionTokenMinted, got.Action)
	s.Equal(actor(1), got.Actor)
	s.Equal(audit.DecisionAllowed, got.Decision)
	s.Equal("req-123", got.RequestID)
}

func (s *AuditPipelineSuite) TestEventsRouteByCategory() {
	ctx := context.Background()

	denied := audit.Event{
		ID:        uuid.New(),
		Action:    audit.ActionTransferRejected,
		Timestamp: time.Now(),
		Subject:   "7",
		Decision:  audit.DecisionDenied,
		Reason:    "soulbound",
	}
	housekeeping := audit.Event{
		ID:        uuid.New(),
		Action:    audit.ActionSkillAdded,
		Timestamp: time.Now(),
		Subject:   "skill-3",
	}
	s.Require().NoError(s.store.Append(ctx, denied))
	s.Require().NoError(s.store.Append(ctx, housekeeping))

	s.Require().Eventually(func() bool {
		security, err := s.store.ListBySubject(ctx, "7", 10)
		if err != nil || len(security) == 0 {
			return false
		}
		operations, err := s.store.ListBySubject(ctx, "skill-3", 10)
		return err == nil && len(operations) > 0
	}, 15*time.Second, 200*time.Millisecond)

	events, err := s.store.ListBySubject(ctx, "7", 10)
	s.Require().NoError(err)
	s.Equal("soulbound", events[0].Reason)
}

func (s *AuditPipelineSuite) TestRedeliveryIsIdempotent() {
	ctx := context.Background()

	event := audit.Event{
		ID:        uuid.New(),
		Action:    audit.ActionTokenBurned,
		Timestamp: time.Now(),
		Subject:   "99",
	}
	s.Require().NoError(s.store.AppendMaterialized(ctx, event))
	s.Require().NoError(s.store.AppendMaterialized(ctx, event))

	events, err := s.store.ListBySubject(ctx, "99", 10)
	s.Require().NoError(err)
	s.Len(events, 1, "duplicate delivery must not duplicate rows")
}
