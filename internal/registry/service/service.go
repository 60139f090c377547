// Package service implements token locators: an administrator-managed
// base prefix from which each token's locator is derived by appending the
// decimal token id.
package service

import (
	"context"
	"errors"
	"log/slog"

	"soulbound/internal/audit"
	"soulbound/internal/registry/store"
	"soulbound/pkg/domain"
	dErrors "soulbound/pkg/domain-errors"
	"soulbound/pkg/platform/sentinel"
	"soulbound/pkg/requestcontext"
)

// Admins gates base locator changes to the administrator.
type Admins interface {
	RequireAdministrator(ctx context.Context) error
}

// Tokens answers token existence; locators exist only for minted tokens.
type Tokens interface {
	OwnerOf(ctx context.Context, id domain.TokenID) (domain.Address, error)
}

// Service resolves and manages token locators.
type Service struct {
	store    store.Store
	admins   Admins
	tokens   Tokens
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

func New(store store.Store, admins Admins, tokens Tokens, opts ...Option) *Service {
	s := &Service{store: store, admins: admins, tokens: tokens, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// BaseLocator returns the configured prefix, empty before it is first set.
func (s *Service) BaseLocator(ctx context.Context) (string, error) {
	base, err := s.store.BaseLocator(ctx)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return "", nil
		}
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "loading base locator")
	}
	return base, nil
}

// TokenLocator derives the locator for a minted token: the base prefix
// followed by the decimal token id. Unknown tokens have no locator.
func (s *Service) TokenLocator(ctx context.Context, id domain.TokenID) (string, error) {
	if _, err := s.tokens.OwnerOf(ctx, id); err != nil {
		return "", err
	}
	base, err := s.BaseLocator(ctx)
	if err != nil {
		return "", err
	}
	return base + id.String(), nil
}

// SetBaseLocator overwrites the prefix. Administrator only; existing
// token locators change retroactively since they are derived on read.
func (s *Service) SetBaseLocator(ctx context.Context, base string) error {
	if err := s.admins.RequireAdministrator(ctx); err != nil {
		return err
	}

	if err := s.store.SetBaseLocator(ctx, base); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "writing base locator")
	}

	s.logger.InfoContext(ctx, "base locator updated",
		"base", base,
		"request_id", requestcontext.RequestID(ctx),
	)
	s.emit(ctx, audit.Event{
		Action:  audit.ActionBaseLocatorSet,
		Subject: base,
	})
	return nil
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.recorder != nil {
		s.recorder.Emit(ctx, event)
	}
}
