// Package models holds the ledger's persisted shapes.
package models

import (
	"time"

	"soulbound/pkg/domain"
)

// Token is one issued token. Identifiers are assigned sequentially from
// the total-issued counter and are never reused, so a burned token's id
// stays retired forever.
type Token struct {
	ID       domain.TokenID
	Owner    domain.Address
	MintedAt time.Time
}

// OperatorGrant records a holder delegating burn authority over their
// whole account to an operator. Vestigial for transfers, which are blocked
// regardless of approval.
type OperatorGrant struct {
	Owner    domain.Address
	Operator domain.Address
	Approved bool
}
