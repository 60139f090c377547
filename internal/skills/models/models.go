// Package models holds the skill catalog's persisted shapes.
package models

import (
	"github.com/holiman/uint256"

	"soulbound/pkg/domain"
)

// Skill is one named attribute slot. Its id is its position in the
// append-only catalog; definitions are renamed in place but never removed
// or reordered.
type Skill struct {
	ID   domain.SkillID
	Name string
}

// Value is one attribute magnitude for one token. Values are 256-bit
// words so authority-signed payloads round-trip EVM encodings exactly.
type Value struct {
	TokenID domain.TokenID
	SkillID domain.SkillID
	Amount  *uint256.Int
}
