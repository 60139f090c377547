// Package service implements the skill registry and attribute store: an
// append-only catalog of named skills and the sparse per-token value map.
// Mutations are administrator-gated except the issuance path, whose
// authorization is the authority signature checked upstream.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/holiman/uint256"

	"soulbound/internal/audit"
	skillmetrics "soulbound/internal/skills/metrics"
	"soulbound/internal/skills/models"
	"soulbound/internal/skills/store"
	"soulbound/pkg/domain"
	dErrors "soulbound/pkg/domain-errors"
	"soulbound/pkg/platform/sentinel"
)

// Admins gates catalog and attribute mutations to the administrator.
type Admins interface {
	RequireAdministrator(ctx context.Context) error
}

// Tokens answers token existence for attribute edits. The edit path
// requires a live token even though stored values survive later burns.
type Tokens interface {
	OwnerOf(ctx context.Context, id domain.TokenID) (domain.Address, error)
}

// Service orchestrates skill catalog and attribute state changes.
type Service struct {
	store    store.Store
	admins   Admins
	tokens   Tokens
	logger   *slog.Logger
	recorder audit.Recorder
	metrics  *skillmetrics.Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithRecorder(recorder audit.Recorder) Option {
	return func(s *Service) {
		s.recorder = recorder
	}
}

func WithMetrics(m *skillmetrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(store store.Store, admins Admins, tokens Tokens, opts ...Option) *Service {
	s := &Service{store: store, admins: admins, tokens: tokens, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// -----------------------------------------------------------------------------
// Queries
// -----------------------------------------------------------------------------

// Skill returns one catalog entry or ErrIndexOutOfRange.
func (s *Service) Skill(ctx context.Context, id domain.SkillID) (models.Skill, error) {
	skill, err := s.store.Skill(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return models.Skill{}, fmt.Errorf("skill %s: %w", id, ErrIndexOutOfRange)
		}
		return models.Skill{}, dErrors.Wrap(err, dErrors.CodeInternal, "loading skill")
	}
	return skill, nil
}

// Skills returns the whole catalog in position order.
func (s *Service) Skills(ctx context.Context) ([]models.Skill, error) {
	skills, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "listing skills")
	}
	return skills, nil
}

// SkillCount returns the catalog length.
func (s *Service) SkillCount(ctx context.Context) (uint64, error) {
	count, err := s.store.Count(ctx)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "counting skills")
	}
	return count, nil
}

// SkillValue returns the stored magnitude for (tokenID, skillID), or the
// zero word for any pair never written. No existence checks apply: burned
// tokens and out-of-catalog positions read like everything else.
func (s *Service) SkillValue(ctx context.Context, tokenID domain.TokenID, skillID domain.SkillID) (*uint256.Int, error) {
	amount, err := s.store.Value(ctx, tokenID, skillID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "loading skill value")
	}
	return amount, nil
}

// -----------------------------------------------------------------------------
// Catalog mutations (administrator only)
// -----------------------------------------------------------------------------

// AddSkill appends one definition; its id is the prior catalog length.
func (s *Service) AddSkill(ctx context.Context, name string) (models.Skill, error) {
	if err := s.admins.RequireAdministrator(ctx); err != nil {
		return models.Skill{}, err
	}
	return s.appendSkill(ctx, name)
}

// AddSkills appends each name in order, equivalent to repeated AddSkill.
func (s *Service) AddSkills(ctx context.Context, names []string) ([]models.Skill, error) {
	if err := s.admins.RequireAdministrator(ctx); err != nil {
		return nil, err
	}
	out := make([]models.Skill, 0, len(names))
	for _, name := range names {
		skill, err := s.appendSkill(ctx, name)
		if err != nil {
			return nil, err
		}
		out = append(out, skill)
	}
	return out, nil
}

func (s *Service) appendSkill(ctx context.Context, name string) (models.Skill, error) {
	skill, err := s.store.Append(ctx, name)
	if err != nil {
		return models.Skill{}, dErrors.Wrap(err, dErrors.CodeInternal, "appending skill")
	}
	s.metrics.RecordSkillAdded()
	s.emit(ctx, audit.Event{
		Action:  audit.ActionSkillAdded,
		Subject: skill.ID.String(),
	})
	return skill, nil
}

// EditSkill renames a definition in place.
func (s *Service) EditSkill(ctx context.Context, id domain.SkillID, name string) error {
	if err := s.admins.RequireAdministrator(ctx); err != nil {
		return err
	}
	if err := s.store.Rename(ctx, id, name); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return fmt.Errorf("skill %s: %w", id, ErrIndexOutOfRange)
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "renaming skill")
	}
	s.emit(ctx, audit.Event{
		Action:  audit.ActionSkillEdited,
		Subject: id.String(),
	})
	return nil
}

// -----------------------------------------------------------------------------
// Attribute mutations
// -----------------------------------------------------------------------------

// EditSkillValue overwrites one attribute magnitude. The token must
// currently exist; the skill id is unconstrained, and the last write
// wins with no history kept.
func (s *Service) EditSkillValue(ctx context.Context, tokenID domain.TokenID, skillID domain.SkillID, amount *uint256.Int) error {
	if err := s.admins.RequireAdministrator(ctx); err != nil {
		return err
	}
	if _, err := s.tokens.OwnerOf(ctx, tokenID); err != nil {
		return err
	}

	if err := s.store.SetValue(ctx, tokenID, skillID, amount); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "writing skill value")
	}

	s.metrics.RecordValueWritten("admin")
	s.emit(ctx, audit.Event{
		Action:  audit.ActionSkillValueEdited,
		Subject: tokenID.String(),
	})
	return nil
}

// WriteMintedValues records the attribute set carried by an authorized
// mint. Authorization is the authority signature verified by the issuance
// controller, so no administrator gate applies; no per-value event is
// emitted, matching the mint's single creation notification.
func (s *Service) WriteMintedValues(ctx context.Context, tokenID domain.TokenID, skillIDs []domain.SkillID, amounts []*uint256.Int) error {
	for i, skillID := range skillIDs {
		if err := s.store.SetValue(ctx, tokenID, skillID, amounts[i]); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "writing minted skill value")
		}
		s.metrics.RecordValueWritten("mint")
	}
	return nil
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.recorder != nil {
		s.recorder.Emit(ctx, event)
	}
}
