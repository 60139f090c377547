package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"soulbound/internal/ledger/models"
	"soulbound/pkg/domain"
	"soulbound/pkg/platform/sentinel"
	txctx "soulbound/pkg/platform/tx"
)

// Postgres persists the ledger in PostgreSQL. Every method joins an
// ambient transaction from context when one is present, so issuance can
// span the ledger and skill stores atomically. The tokens.owner unique
// constraint backs the one-token-per-holder cap at the storage layer.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (s *Postgres) q(ctx context.Context) txctx.Querier {
	if t, ok := txctx.From(ctx); ok {
		return t
	}
	return s.pool
}

func (s *Postgres) Token(ctx context.Context, id domain.TokenID) (models.Token, error) {
	var (
		owner    string
		mintedAt time.Time
	)
	err := s.q(ctx).QueryRow(ctx,
		`SELECT owner, minted_at FROM tokens WHERE id = $1`,
		int64(id),
	).Scan(&owner, &mintedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Token{}, fmt.Errorf("token %s: %w", id, sentinel.ErrNotFound)
		}
		return models.Token{}, fmt.Errorf("query token: %w", err)
	}
	addr, err := domain.ParseAddress(owner)
	if err != nil {
		return models.Token{}, fmt.Errorf("parse token owner: %w", err)
	}
	return models.Token{ID: id, Owner: addr, MintedAt: mintedAt}, nil
}

func (s *Postgres) BalanceOf(ctx context.Context, addr domain.Address) (uint64, error) {
	var count int64
	err := s.q(ctx).QueryRow(ctx,
		`SELECT count(*) FROM tokens WHERE owner = $1`,
		addr.Hex(),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("query balance: %w", err)
	}
	return uint64(count), nil
}

func (s *Postgres) TotalIssued(ctx context.Context) (uint64, error) {
	var total int64
	err := s.q(ctx).QueryRow(ctx,
		`SELECT total_issued FROM ledger_counters`,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("query issuance counter: %w", err)
	}
	return uint64(total), nil
}

// Mint advances the counter and inserts the token in one transaction,
// joining the ambient one when present. The counter row update serializes
// concurrent mints; the owner unique constraint turns a holder-cap race
// into sentinel.ErrConflict.
func (s *Postgres) Mint(ctx context.Context, to domain.Address, at time.Time) (models.Token, error) {
	if t, ok := txctx.From(ctx); ok {
		return s.mint(ctx, t, to, at)
	}
	var token models.Token
	err := pgx.BeginFunc(ctx, s.pool, func(t pgx.Tx) error {
		var err error
		token, err = s.mint(ctx, t, to, at)
		return err
	})
	return token, err
}

func (s *Postgres) mint(ctx context.Context, q txctx.Querier, to domain.Address, at time.Time) (models.Token, error) {
	var next int64
	err := q.QueryRow(ctx,
		`UPDATE ledger_counters SET total_issued = total_issued + 1 RETURNING total_issued - 1`,
	).Scan(&next)
	if err != nil {
		return models.Token{}, fmt.Errorf("advance issuance counter: %w", err)
	}

	token := models.Token{ID: domain.TokenID(next), Owner: to, MintedAt: at}
	_, err = q.Exec(ctx,
		`INSERT INTO tokens (id, owner, minted_at) VALUES ($1, $2, $3)`,
		int64(token.ID), to.Hex(), at,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return models.Token{}, fmt.Errorf("holder %s already has a token: %w", to, sentinel.ErrConflict)
		}
		return models.Token{}, fmt.Errorf("insert token: %w", err)
	}
	return token, nil
}

func (s *Postgres) Burn(ctx context.Context, id domain.TokenID) (models.Token, error) {
	var (
		owner    string
		mintedAt time.Time
	)
	err := s.q(ctx).QueryRow(ctx,
		`DELETE FROM tokens WHERE id = $1 RETURNING owner, minted_at`,
		int64(id),
	).Scan(&owner, &mintedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Token{}, fmt.Errorf("token %s: %w", id, sentinel.ErrNotFound)
		}
		return models.Token{}, fmt.Errorf("delete token: %w", err)
	}
	// token_approvals rows cascade with the token.
	addr, err := domain.ParseAddress(owner)
	if err != nil {
		return models.Token{}, fmt.Errorf("parse token owner: %w", err)
	}
	return models.Token{ID: id, Owner: addr, MintedAt: mintedAt}, nil
}

func (s *Postgres) Approved(ctx context.Context, id domain.TokenID) (domain.Address, error) {
	var spender *string
	err := s.q(ctx).QueryRow(ctx, `
		SELECT a.spender
		FROM tokens t
		LEFT JOIN token_approvals a ON a.token_id = t.id
		WHERE t.id = $1
	`, int64(id)).Scan(&spender)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ZeroAddress, fmt.Errorf("token %s: %w", id, sentinel.ErrNotFound)
		}
		return domain.ZeroAddress, fmt.Errorf("query approval: %w", err)
	}
	if spender == nil {
		return domain.ZeroAddress, nil
	}
	return domain.ParseAddress(*spender)
}

func (s *Postgres) SetApproved(ctx context.Context, id domain.TokenID, spender domain.Address) error {
	if spender.IsZero() {
		if _, err := s.Token(ctx, id); err != nil {
			return err
		}
		_, err := s.q(ctx).Exec(ctx,
			`DELETE FROM token_approvals WHERE token_id = $1`,
			int64(id),
		)
		if err != nil {
			return fmt.Errorf("clear approval: %w", err)
		}
		return nil
	}

	_, err := s.q(ctx).Exec(ctx, `
		INSERT INTO token_approvals (token_id, spender)
		VALUES ($1, $2)
		ON CONFLICT (token_id) DO UPDATE SET spender = excluded.spender
	`, int64(id), spender.Hex())
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("token %s: %w", id, sentinel.ErrNotFound)
		}
		return fmt.Errorf("set approval: %w", err)
	}
	return nil
}

func (s *Postgres) IsOperatorFor(ctx context.Context, owner, operator domain.Address) (bool, error) {
	var exists bool
	err := s.q(ctx).QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM operator_approvals WHERE owner = $1 AND operator = $2
		)
	`, owner.Hex(), operator.Hex()).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("query operator grant: %w", err)
	}
	return exists, nil
}

func (s *Postgres) SetOperator(ctx context.Context, owner, operator domain.Address, approved bool) error {
	if !approved {
		_, err := s.q(ctx).Exec(ctx,
			`DELETE FROM operator_approvals WHERE owner = $1 AND operator = $2`,
			owner.Hex(), operator.Hex(),
		)
		if err != nil {
			return fmt.Errorf("revoke operator grant: %w", err)
		}
		return nil
	}
	_, err := s.q(ctx).Exec(ctx, `
		INSERT INTO operator_approvals (owner, operator)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, owner.Hex(), operator.Hex())
	if err != nil {
		return fmt.Errorf("record operator grant: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
