// Package store persists the token ledger: token ownership, the
// total-issued counter, and the approval bookkeeping the token standard
// carries even though holder-to-holder transfers are blocked.
package store

import (
	"context"
	"time"

	"soulbound/internal/ledger/models"
	"soulbound/pkg/domain"
)

// Store is the ledger persistence interface. Implementations return
// sentinel.ErrNotFound (wrapped) for missing tokens and
// sentinel.ErrConflict when a mint would violate ledger uniqueness; the
// service layer translates these into domain errors.
type Store interface {
	// Token returns one token by id.
	Token(ctx context.Context, id domain.TokenID) (models.Token, error)

	// BalanceOf counts tokens currently held by addr.
	BalanceOf(ctx context.Context, addr domain.Address) (uint64, error)

	// TotalIssued returns the monotonic issuance counter. Burns do not
	// decrement it.
	TotalIssued(ctx context.Context) (uint64, error)

	// Mint assigns the next sequential id, records the token, and
	// increments the counter, as one atomic step. Fails with
	// sentinel.ErrConflict when the recipient already holds a token.
	Mint(ctx context.Context, to domain.Address, at time.Time) (models.Token, error)

	// Burn removes the token and its pending approval, returning the
	// token as it stood.
	Burn(ctx context.Context, id domain.TokenID) (models.Token, error)

	// Approved returns the pending single-token approval, or the zero
	// address when none is set. The token must exist.
	Approved(ctx context.Context, id domain.TokenID) (domain.Address, error)

	// SetApproved records or clears (spender == zero) the single-token
	// approval.
	SetApproved(ctx context.Context, id domain.TokenID, spender domain.Address) error

	// IsOperatorFor reports whether operator holds a blanket grant from
	// owner.
	IsOperatorFor(ctx context.Context, owner, operator domain.Address) (bool, error)

	// SetOperator records or clears a blanket operator grant.
	SetOperator(ctx context.Context, owner, operator domain.Address, approved bool) error
}
