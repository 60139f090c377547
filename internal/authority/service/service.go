// Package service implements the single-administrator access control and
// the authority-signer resolution the issuance path verifies against.
// Exactly one administrator exists at a time; renouncing clears the slot
// permanently, and when the authority tracks the administrator that also
// ends issuance for good.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"soulbound/internal/audit"
	"soulbound/internal/authority/store"
	"soulbound/pkg/domain"
	dErrors "soulbound/pkg/domain-errors"
	"soulbound/pkg/platform/sentinel"
	"soulbound/pkg/requestcontext"
)

// Service orchestrates administrator state changes and lookups.
type Service struct {
	store store.Store

	// authorityOverride pins the mint-signing address independently of
	// the administrator. Zero means the authority tracks the current
	// administrator.
	authorityOverride domain.Address

	logger   *slog.Logger
	recorder audit.Recorder
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

// WithAuthorityOverride fixes the mint-signing authority to a specific
// address instead of tracking the administrator.
func WithAuthorityOverride(addr domain.Address) Option {
	return func(s *Service) {
		s.authorityOverride = addr
	}
}

func New(store store.Store, opts ...Option) *Service {
	s := &Service{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Bootstrap seeds the administrator slot on first start. A slot that was
// already seeded, including one later renounced, is left alone.
func (s *Service) Bootstrap(ctx context.Context, initial domain.Address) error {
	if initial.IsZero() {
		return fmt.Errorf("bootstrap administrator: %w", ErrZeroAddress)
	}
	if err := s.store.Seed(ctx, initial); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "seeding administrator")
	}
	return nil
}

// Administrator returns the current administrator, or the zero address
// after a renounce or before any seed.
func (s *Service) Administrator(ctx context.Context) (domain.Address, error) {
	admin, err := s.store.Administrator(ctx)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return domain.ZeroAddress, nil
		}
		return domain.ZeroAddress, dErrors.Wrap(err, dErrors.CodeInternal, "loading administrator")
	}
	return admin, nil
}

// IsAdministrator reports whether addr is the current administrator. The
// zero address never is, so after a renounce this is false for everyone.
func (s *Service) IsAdministrator(ctx context.Context, addr domain.Address) (bool, error) {
	if addr.IsZero() {
		return false, nil
	}
	admin, err := s.Administrator(ctx)
	if err != nil {
		return false, err
	}
	return addr == admin, nil
}

// RequireAdministrator fails with ErrNotAdministrator unless the context
// caller is the current administrator.
func (s *Service) RequireAdministrator(ctx context.Context) error {
	caller := requestcontext.Caller(ctx)
	ok, err := s.IsAdministrator(ctx, caller)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("caller %s: %w", caller, ErrNotAdministrator)
	}
	return nil
}

// AuthoritySigner resolves the address whose signature authorizes mints:
// the configured override when present, otherwise the current
// administrator. After a renounce with no override the zero address is
// returned, and no signature can ever verify against it.
func (s *Service) AuthoritySigner(ctx context.Context) (domain.Address, error) {
	if !s.authorityOverride.IsZero() {
		return s.authorityOverride, nil
	}
	return s.Administrator(ctx)
}

// TransferAdministrator hands the slot to a new address. Only the current
// administrator may call it, and the void address is not a valid
// destination.
func (s *Service) TransferAdministrator(ctx context.Context, newAdmin domain.Address) error {
	if err := s.RequireAdministrator(ctx); err != nil {
		return err
	}
	if newAdmin.IsZero() {
		return fmt.Errorf("transfer administrator: %w", ErrZeroAddress)
	}

	if err := s.store.SetAdministrator(ctx, newAdmin); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "recording administrator transfer")
	}

	s.logger.InfoContext(ctx, "administrator transferred",
		"new_administrator", newAdmin,
		"request_id", requestcontext.RequestID(ctx),
	)
	s.emit(ctx, audit.Event{
		Action:  audit.ActionAdminTransferred,
		Subject: newAdmin.Hex(),
	})
	return nil
}

// RenounceAdministrator clears the slot to the void address. There is no
// recovery path: every administrator-gated operation becomes permanently
// inaccessible.
func (s *Service) RenounceAdministrator(ctx context.Context) error {
	if err := s.RequireAdministrator(ctx); err != nil {
		return err
	}

	if err := s.store.SetAdministrator(ctx, domain.ZeroAddress); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "recording administrator renounce")
	}

	s.logger.WarnContext(ctx, "administrator renounced, admin operations are now permanently inaccessible",
		"request_id", requestcontext.RequestID(ctx),
	)
	s.emit(ctx, audit.Event{
		Action:  audit.ActionAdminRenounced,
		Subject: requestcontext.Caller(ctx).Hex(),
	})
	return nil
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.recorder != nil {
		s.recorder.Emit(ctx, event)
	}
}
