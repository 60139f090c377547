// Package store persists the skill catalog and the sparse
// (token, skill) -> value attribute map. The two stores deliberately share
// no referential integrity: values may reference catalog positions that do
// not exist yet and outlive the tokens they were written for.
package store

import (
	"context"

	"github.com/holiman/uint256"

	"soulbound/internal/skills/models"
	"soulbound/pkg/domain"
)

// Store is the skill persistence interface. Implementations return
// sentinel.ErrNotFound (wrapped) for catalog positions past the end; the
// service layer translates these into domain errors.
type Store interface {
	// Count returns the catalog length.
	Count(ctx context.Context) (uint64, error)

	// Skill returns one catalog entry by position.
	Skill(ctx context.Context, id domain.SkillID) (models.Skill, error)

	// List returns the whole catalog in position order.
	List(ctx context.Context) ([]models.Skill, error)

	// Append adds one definition at the end; its id is the prior length.
	Append(ctx context.Context, name string) (models.Skill, error)

	// Rename edits a definition in place.
	Rename(ctx context.Context, id domain.SkillID, name string) error

	// Value returns the stored magnitude, or the zero word for any pair
	// never written. The two are indistinguishable.
	Value(ctx context.Context, tokenID domain.TokenID, skillID domain.SkillID) (*uint256.Int, error)

	// SetValue overwrites the magnitude unconditionally.
	SetValue(ctx context.Context, tokenID domain.TokenID, skillID domain.SkillID, amount *uint256.Int) error
}
