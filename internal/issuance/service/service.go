// Package service implements the issuance controller: the only path that
// creates tokens. A mint is authorized not by the caller's identity but
// by an authority signature over the exact payload (recipient, skill ids,
// skill values); the controller recomputes the canonical digest, verifies
// recovery against the configured authority, and applies ledger and
// attribute writes as one atomic unit.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/holiman/uint256"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"soulbound/internal/audit"
	"soulbound/internal/crypto"
	"soulbound/internal/issuance/codec"
	issuancemetrics "soulbound/internal/issuance/metrics"
	"soulbound/internal/issuance/reserve"
	"soulbound/internal/ledger/models"
	ledgersvc "soulbound/internal/ledger/service"
	"soulbound/pkg/domain"
	dErrors "soulbound/pkg/domain-errors"
	txctx "soulbound/pkg/platform/tx"
	"soulbound/pkg/requestcontext"
)

// Ledger is the slice of the token ledger the controller drives. Mint runs
// through the transfer guard inside the ledger service.
type Ledger interface {
	Mint(ctx context.Context, to domain.Address) (models.Token, error)
	BalanceOf(ctx context.Context, addr domain.Address) (uint64, error)
}

// Skills writes the attribute set carried by an authorized mint.
type Skills interface {
	WriteMintedValues(ctx context.Context, tokenID domain.TokenID, skillIDs []domain.SkillID, amounts []*uint256.Int) error
}

// Authority resolves the address whose signature authorizes mints.
type Authority interface {
	AuthoritySigner(ctx context.Context) (domain.Address, error)
}

// MintRequest is one issuance attempt. The signature covers exactly
// (recipient, skill ids, skill values); it carries no nonce or expiry, so
// it stays replayable forever and is neutralized only by the one-token
// cap.
type MintRequest struct {
	Recipient   domain.Address
	SkillIDs    []domain.SkillID
	SkillValues []*uint256.Int
	Signature   crypto.Signature
}

// Service is the issuance controller.
type Service struct {
	ledger    Ledger
	skills    Skills
	authority Authority
	runner    txctx.Runner
	reserver  reserve.Reserver
	logger    *slog.Logger
	recorder  audit.Recorder
	metrics   *issuancemetrics.Metrics
	tracer    trace.Tracer
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

func WithMetrics(m *issuancemetrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithReserver installs a cross-instance recipient reservation.
func WithReserver(r reserve.Reserver) Option {
	return func(s *Service) {
		s.reserver = r
	}
}

func New(ledger Ledger, skills Skills, authority Authority, runner txctx.Runner, opts ...Option) *Service {
	s := &Service{
		ledger:    ledger,
		skills:    skills,
		authority: authority,
		runner:    runner,
		logger:    slog.Default(),
		tracer:    otel.Tracer("soulbound/issuance"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Mint validates, verifies, and applies one issuance. Nothing is mutated
// before the signature check passes, and the ledger write and attribute
// writes commit or roll back together.
func (s *Service) Mint(ctx context.Context, req MintRequest) (models.Token, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "issuance.Mint", trace.WithAttributes(
		attribute.String("recipient", req.Recipient.Hex()),
		attribute.Int("skills", len(req.SkillIDs)),
	))
	defer span.End()

	token, err := s.mint(ctx, req)
	s.metrics.ObserveLatency(time.Since(start).Seconds())
	if err != nil {
		span.RecordError(err)
		s.metrics.RecordAttempt(outcomeOf(err))
		return models.Token{}, err
	}

	span.SetAttributes(attribute.Int64("token_id", int64(token.ID)))
	s.metrics.RecordAttempt("issued")
	return token, nil
}

func (s *Service) mint(ctx context.Context, req MintRequest) (models.Token, error) {
	if len(req.SkillIDs) != len(req.SkillValues) {
		return models.Token{}, fmt.Errorf("%d ids, %d values: %w",
			len(req.SkillIDs), len(req.SkillValues), ErrSkillArityMismatch)
	}

	balance, err := s.ledger.BalanceOf(ctx, req.Recipient)
	if err != nil {
		return models.Token{}, err
	}
	if balance > 0 {
		return models.Token{}, fmt.Errorf("recipient %s: %w", req.Recipient, ledgersvc.ErrAlreadyIssued)
	}

	if err := s.verifyAuthority(ctx, req); err != nil {
		return models.Token{}, err
	}

	if s.reserver != nil {
		acquired, err := s.reserver.Acquire(ctx, req.Recipient)
		if err != nil {
			return models.Token{}, dErrors.Wrap(err, dErrors.CodeInternal, "reserving recipient")
		}
		if !acquired {
			return models.Token{}, fmt.Errorf("mint already in flight for %s: %w",
				req.Recipient, ledgersvc.ErrAlreadyIssued)
		}
		defer func() {
			if err := s.reserver.Release(ctx, req.Recipient); err != nil {
				s.logger.WarnContext(ctx, "releasing mint reservation",
					"recipient", req.Recipient,
					"error", err,
				)
			}
		}()
	}

	var token models.Token
	err = s.runner.RunAtomic(ctx, func(ctx context.Context) error {
		minted, err := s.ledger.Mint(ctx, req.Recipient)
		if err != nil {
			return err
		}
		token = minted
		return s.skills.WriteMintedValues(ctx, minted.ID, req.SkillIDs, req.SkillValues)
	})
	if err != nil {
		return models.Token{}, err
	}

	s.logger.InfoContext(ctx, "token issued",
		"token_id", token.ID,
		"recipient", req.Recipient,
		"skills", len(req.SkillIDs),
		"request_id", requestcontext.RequestID(ctx),
	)
	return token, nil
}

// verifyAuthority recomputes the canonical framed hash and checks the
// signature recovers to the configured authority. A renounced
// administrator with no authority override leaves the zero address here,
// against which no signature can ever verify.
func (s *Service) verifyAuthority(ctx context.Context, req MintRequest) error {
	signer, err := s.authority.AuthoritySigner(ctx)
	if err != nil {
		return err
	}

	hash := codec.SignedHash(req.Recipient, req.SkillIDs, req.SkillValues)
	if signer.IsZero() || !crypto.Verify(hash, req.Signature, signer) {
		s.emit(ctx, audit.Event{
			Action:   audit.ActionSignatureRejected,
			Subject:  req.Recipient.Hex(),
			Decision: audit.DecisionDenied,
			Reason:   dErrors.ReasonOf(ErrInvalidSignature),
		})
		return fmt.Errorf("mint for %s: %w", req.Recipient, ErrInvalidSignature)
	}
	return nil
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.recorder != nil {
		s.recorder.Emit(ctx, event)
	}
}

func outcomeOf(err error) string {
	switch dErrors.ReasonOf(err) {
	case "invalid_signature":
		return "invalid_signature"
	case "already_issued":
		return "already_issued"
	case "skill_arity_mismatch":
		return "arity_mismatch"
	default:
		return "error"
	}
}
