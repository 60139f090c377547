// Package reserve provides the short-lived recipient reservation the
// issuance controller holds while a mint is in flight. On a single node
// the store's own atomicity makes this redundant; with multiple service
// instances the Redis reservation keeps two concurrent mints for the same
// recipient from racing the holder-cap check.
package reserve

import (
	"context"
	"sync"

	"soulbound/pkg/domain"
)

// Reserver grants exclusive issuance rights for a recipient for the
// duration of one mint.
type Reserver interface {
	// Acquire takes the reservation; false means another mint for the
	// recipient is in flight.
	Acquire(ctx context.Context, recipient domain.Address) (bool, error)

	// Release frees the reservation. Safe to call after expiry.
	Release(ctx context.Context, recipient domain.Address) error
}

// Memory is the in-process reservation for single-node runs.
type Memory struct {
	mu       sync.Mutex
	inFlight map[domain.Address]struct{}
}

func NewMemory() *Memory {
	return &Memory{inFlight: make(map[domain.Address]struct{})}
}

func (m *Memory) Acquire(_ context.Context, recipient domain.Address) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, taken := m.inFlight[recipient]; taken {
		return false, nil
	}
	m.inFlight[recipient] = struct{}{}
	return true, nil
}

func (m *Memory) Release(_ context.Context, recipient domain.Address) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.inFlight, recipient)
	return nil
}
