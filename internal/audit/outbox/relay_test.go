package outbox

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu        sync.Mutex
	entries   []Entry
	published map[uuid.UUID]bool
}

func newFakeStore(entries ...Entry) *fakeStore {
	return &fakeStore{entries: entries, published: make(map[uuid.UUID]bool)}
}

func (s *fakeStore) FetchUnpublished(_ context.Context, limit int) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Entry
	for _, e := range s.entries {
		if s.published[e.ID] {
			continue
		}
		out = append(out, e)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *fakeStore) MarkPublished(_ context.Context, ids []uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		s.published[id] = true
	}
	return nil
}

type fakeProducer struct {
	mu       sync.Mutex
	records  []string
	failOn   string
	failures int
}

func (p *fakeProducer) Publish(_ context.Context, topic string, key, _ []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failOn != "" && string(key) == p.failOn {
		p.failures++
		return errors.New("broker unavailable")
	}
	p.records = append(p.records, fmt.Sprintf("%s:%s", topic, key))
	return nil
}

func entry(key string) Entry {
	return Entry{
		ID:      uuid.New(),
		Topic:   "soulbound.audit.compliance",
		Key:     key,
		Payload: []byte(`{}`),
	}
}

func TestRelayDrainPublishesAndMarks(t *testing.T) {
	a, b := entry("a"), entry("b")
	store := newFakeStore(a, b)
	producer := &fakeProducer{}
	relay := NewRelay(store, producer, 0, 10, slog.Default(), nil)

	require.NoError(t, relay.drain(context.Background()))

	assert.Equal(t, []string{
		"soulbound.audit.compliance:a",
		"soulbound.audit.compliance:b",
	}, producer.records)
	assert.True(t, store.published[a.ID])
	assert.True(t, store.published[b.ID])

	// Nothing left: a second drain is a no-op.
	require.NoError(t, relay.drain(context.Background()))
	assert.Len(t, producer.records, 2)
}

func TestRelayDrainStopsAtFailureAndRetries(t *testing.T) {
	a, b, c := entry("a"), entry("b"), entry("c")
	store := newFakeStore(a, b, c)
	producer := &fakeProducer{failOn: "b"}
	relay := NewRelay(store, producer, 0, 10, slog.Default(), nil)

	err := relay.drain(context.Background())
	require.Error(t, err)

	// The shipped prefix is marked; b and c stay queued in order.
	assert.True(t, store.published[a.ID])
	assert.False(t, store.published[b.ID])
	assert.False(t, store.published[c.ID])

	producer.failOn = ""
	require.NoError(t, relay.drain(context.Background()))
	assert.Equal(t, []string{
		"soulbound.audit.compliance:a",
		"soulbound.audit.compliance:b",
		"soulbound.audit.compliance:c",
	}, producer.records)
}

func TestRelayDrainEmptyOutbox(t *testing.T) {
	relay := NewRelay(newFakeStore(), &fakeProducer{}, 0, 10, slog.Default(), nil)
	require.NoError(t, relay.drain(context.Background()))
}
