// Package service implements the token ledger: ownership, the guarded
// move primitive, approvals, and the public transfer surface whose
// holder-to-holder paths are rejected unconditionally.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"soulbound/internal/audit"
	ledgermetrics "soulbound/internal/ledger/metrics"
	"soulbound/internal/ledger/models"
	"soulbound/internal/ledger/store"
	"soulbound/pkg/domain"
	dErrors "soulbound/pkg/domain-errors"
	"soulbound/pkg/platform/sentinel"
	"soulbound/pkg/requestcontext"
)

// Admins answers whether an address is the current administrator. The
// administrator may burn any token.
type Admins interface {
	IsAdministrator(ctx context.Context, addr domain.Address) (bool, error)
}

// Service orchestrates ledger state changes and queries.
type Service struct {
	store    store.Store
	guard    Guard
	admins   Admins
	logger   *slog.Logger
	recorder audit.Recorder
	metrics  *ledgermetrics.Metrics
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

func WithMetrics(m *ledgermetrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New constructs a Service. admins may be nil, in which case no
// administrator override applies to burns.
func New(store store.Store, admins Admins, opts ...Option) *Service {
	s := &Service{store: store, admins: admins, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// -----------------------------------------------------------------------------
// Queries
// -----------------------------------------------------------------------------

// GetToken returns the token or ErrNotMinted.
func (s *Service) GetToken(ctx context.Context, id domain.TokenID) (models.Token, error) {
	token, err := s.store.Token(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return models.Token{}, fmt.Errorf("token %s: %w", id, ErrNotMinted)
		}
		return models.Token{}, dErrors.Wrap(err, dErrors.CodeInternal, "loading token")
	}
	return token, nil
}

// OwnerOf returns the holder of the token.
func (s *Service) OwnerOf(ctx context.Context, id domain.TokenID) (domain.Address, error) {
	token, err := s.GetToken(ctx, id)
	if err != nil {
		return domain.ZeroAddress, err
	}
	return token.Owner, nil
}

// BalanceOf counts tokens held by addr. The void address has no balance
// to query.
func (s *Service) BalanceOf(ctx context.Context, addr domain.Address) (uint64, error) {
	if addr.IsZero() {
		return 0, ErrZeroAddress
	}
	balance, err := s.store.BalanceOf(ctx, addr)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "loading balance")
	}
	return balance, nil
}

// TotalIssued returns the monotonic issuance counter. Burns do not
// decrement it, so it doubles as the next token id.
func (s *Service) TotalIssued(ctx context.Context) (uint64, error) {
	total, err := s.store.TotalIssued(ctx)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "loading issuance counter")
	}
	return total, nil
}

// ApprovedFor returns the pending single-token approval, zero when none.
func (s *Service) ApprovedFor(ctx context.Context, id domain.TokenID) (domain.Address, error) {
	spender, err := s.store.Approved(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return domain.ZeroAddress, fmt.Errorf("token %s: %w", id, ErrNotMinted)
		}
		return domain.ZeroAddress, dErrors.Wrap(err, dErrors.CodeInternal, "loading approval")
	}
	return spender, nil
}

// IsOperatorFor reports whether operator holds a blanket grant from owner.
func (s *Service) IsOperatorFor(ctx context.Context, owner, operator domain.Address) (bool, error) {
	ok, err := s.store.IsOperatorFor(ctx, owner, operator)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "loading operator grant")
	}
	return ok, nil
}

// -----------------------------------------------------------------------------
// Moves
// -----------------------------------------------------------------------------

// Mint creates a token for the recipient through the guarded move path.
// Callers gate authorization; the ledger only enforces its own
// invariants (non-void recipient, one token per holder).
func (s *Service) Mint(ctx context.Context, to domain.Address) (models.Token, error) {
	return s.move(ctx, domain.ZeroAddress, to, 0)
}

// Burn destroys a token. The caller must be the holder, the approved
// spender, an operator for the holder, or the administrator.
func (s *Service) Burn(ctx context.Context, id domain.TokenID) error {
	token, err := s.GetToken(ctx, id)
	if err != nil {
		return err
	}

	caller := requestcontext.Caller(ctx)
	authorized, err := s.canBurn(ctx, caller, token)
	if err != nil {
		return err
	}
	if !authorized {
		return fmt.Errorf("burn of token %s by %s: %w", id, caller, ErrNotAuthorized)
	}

	_, err = s.move(ctx, token.Owner, domain.ZeroAddress, id)
	return err
}

// TransferFrom is the standard transfer entry point. Under the guard it
// fails for every holder-to-holder call; the preceding checks preserve
// the standard's error ordering for malformed requests.
func (s *Service) TransferFrom(ctx context.Context, from, to domain.Address, id domain.TokenID) error {
	token, err := s.GetToken(ctx, id)
	if err != nil {
		return err
	}

	caller := requestcontext.Caller(ctx)
	authorized, err := s.isApprovedOrOwner(ctx, caller, token)
	if err != nil {
		return err
	}
	if !authorized {
		return fmt.Errorf("transfer of token %s by %s: %w", id, caller, ErrNotAuthorized)
	}
	if token.Owner != from {
		return fmt.Errorf("%s does not own token %s: %w", from, id, ErrNotAuthorized)
	}
	if to.IsZero() {
		return fmt.Errorf("transfer to the void address: %w", ErrZeroAddress)
	}

	_, err = s.move(ctx, from, to, id)
	if errors.Is(err, ErrNonTransferable) {
		s.metrics.RecordTransferRejected()
		s.emit(ctx, audit.Event{
			Action:   audit.ActionTransferRejected,
			Subject:  id.String(),
			Decision: audit.DecisionDenied,
			Reason:   dErrors.ReasonOf(err),
		})
	}
	return err
}

// SafeTransferFrom matches TransferFrom. The standard's receiver
// acceptance callback has no counterpart for registry accounts, and the
// guard rejects the move before delivery would matter.
func (s *Service) SafeTransferFrom(ctx context.Context, from, to domain.Address, id domain.TokenID) error {
	return s.TransferFrom(ctx, from, to, id)
}

// move is the single mutation path. The guard runs first; the apply step
// dispatches on which endpoint is void.
func (s *Service) move(ctx context.Context, from, to domain.Address, id domain.TokenID) (models.Token, error) {
	if err := s.guard.Check(from, to); err != nil {
		return models.Token{}, err
	}
	if from.IsZero() {
		return s.applyMint(ctx, to)
	}
	return s.applyBurn(ctx, from, id)
}

func (s *Service) applyMint(ctx context.Context, to domain.Address) (models.Token, error) {
	if to.IsZero() {
		return models.Token{}, fmt.Errorf("mint to the void address: %w", ErrZeroAddress)
	}

	token, err := s.store.Mint(ctx, to, requestcontext.Now(ctx))
	if err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return models.Token{}, fmt.Errorf("mint to %s: %w", to, ErrAlreadyIssued)
		}
		return models.Token{}, dErrors.Wrap(err, dErrors.CodeInternal, "minting token")
	}

	s.metrics.RecordMint()
	s.emit(ctx, audit.Event{
		Action:   audit.ActionTokenMinted,
		Subject:  token.ID.String(),
		Decision: audit.DecisionAllowed,
	})
	return token, nil
}

func (s *Service) applyBurn(ctx context.Context, from domain.Address, id domain.TokenID) (models.Token, error) {
	token, err := s.store.Burn(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return models.Token{}, fmt.Errorf("token %s: %w", id, ErrNotMinted)
		}
		return models.Token{}, dErrors.Wrap(err, dErrors.CodeInternal, "burning token")
	}
	if token.Owner != from {
		// The caller resolved the owner moments ago; a mismatch means the
		// token moved between check and apply.
		return models.Token{}, dErrors.New(dErrors.CodeInvariantViolation, "token owner changed during burn")
	}

	s.metrics.RecordBurn()
	s.emit(ctx, audit.Event{
		Action:   audit.ActionTokenBurned,
		Subject:  token.ID.String(),
		Decision: audit.DecisionAllowed,
	})
	return token, nil
}

// -----------------------------------------------------------------------------
// Approvals
// -----------------------------------------------------------------------------

// Approve records a single-token approval. The caller must be the holder
// or one of the holder's operators. Approving the zero address clears it.
func (s *Service) Approve(ctx context.Context, id domain.TokenID, spender domain.Address) error {
	token, err := s.GetToken(ctx, id)
	if err != nil {
		return err
	}
	if spender == token.Owner {
		return dErrors.New(dErrors.CodeBadRequest, "approval to current holder")
	}

	caller := requestcontext.Caller(ctx)
	if caller != token.Owner {
		isOperator, err := s.IsOperatorFor(ctx, token.Owner, caller)
		if err != nil {
			return err
		}
		if !isOperator {
			return fmt.Errorf("approve on token %s by %s: %w", id, caller, ErrNotAuthorized)
		}
	}

	if err := s.store.SetApproved(ctx, id, spender); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return fmt.Errorf("token %s: %w", id, ErrNotMinted)
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "recording approval")
	}

	s.metrics.RecordApprovalChange("approval")
	s.emit(ctx, audit.Event{
		Action:  audit.ActionApprovalChanged,
		Subject: id.String(),
	})
	return nil
}

// SetApprovalForAll grants or revokes blanket operator standing over the
// caller's account.
func (s *Service) SetApprovalForAll(ctx context.Context, operator domain.Address, approved bool) error {
	caller := requestcontext.Caller(ctx)
	if caller.IsZero() {
		return ErrNotAuthorized
	}
	if operator.IsZero() {
		return fmt.Errorf("operator grant to the void address: %w", ErrZeroAddress)
	}
	if operator == caller {
		return dErrors.New(dErrors.CodeBadRequest, "operator grant to the caller")
	}

	if err := s.store.SetOperator(ctx, caller, operator, approved); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "recording operator grant")
	}

	s.metrics.RecordApprovalChange("operator")
	s.emit(ctx, audit.Event{
		Action:  audit.ActionOperatorChanged,
		Subject: operator.Hex(),
	})
	return nil
}

// -----------------------------------------------------------------------------
// Authorization helpers
// -----------------------------------------------------------------------------

func (s *Service) isApprovedOrOwner(ctx context.Context, caller domain.Address, token models.Token) (bool, error) {
	if caller.IsZero() {
		return false, nil
	}
	if caller == token.Owner {
		return true, nil
	}
	spender, err := s.ApprovedFor(ctx, token.ID)
	if err != nil {
		return false, err
	}
	if caller == spender {
		return true, nil
	}
	return s.IsOperatorFor(ctx, token.Owner, caller)
}

func (s *Service) canBurn(ctx context.Context, caller domain.Address, token models.Token) (bool, error) {
	ok, err := s.isApprovedOrOwner(ctx, caller, token)
	if err != nil || ok {
		return ok, err
	}
	if s.admins == nil {
		return false, nil
	}
	return s.admins.IsAdministrator(ctx, caller)
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.recorder != nil {
		s.recorder.Emit(ctx, event)
	}
}
