// Package store persists the administrator slot. One address at a time;
// the zero address records a permanent renounce.
package store

import (
	"context"

	"soulbound/pkg/domain"
)

// Store is the administrator persistence interface. Administrator returns
// sentinel.ErrNotFound (wrapped) before the slot is first seeded; after a
// renounce it returns the zero address, which is a different state.
type Store interface {
	// Administrator returns the current administrator address.
	Administrator(ctx context.Context) (domain.Address, error)

	// SetAdministrator overwrites the administrator slot. The zero
	// address records a renounce.
	SetAdministrator(ctx context.Context, addr domain.Address) error

	// Seed writes the initial administrator only when the slot has never
	// been set. Idempotent across restarts; a renounced slot stays
	// renounced.
	Seed(ctx context.Context, addr domain.Address) error
}
