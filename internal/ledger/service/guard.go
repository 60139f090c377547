package service

import (
	"soulbound/pkg/domain"
)

// Guard is the transfer-restriction policy. It admits a move only when at
// least one endpoint is the void address: a mint (from void) or a burn
// (to void). Every ledger mutation runs through it, keeping the
// non-transferability invariant one auditable check rather than a
// condition scattered across entry points.
type Guard struct{}

// Check rejects holder-to-holder moves.
func (Guard) Check(from, to domain.Address) error {
	if !from.IsZero() && !to.IsZero() {
		return ErrNonTransferable
	}
	return nil
}
