package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"soulbound/pkg/domain"
	"soulbound/pkg/platform/sentinel"
	txctx "soulbound/pkg/platform/tx"
)

const administratorKey = "administrator"

// Postgres persists the administrator slot in the registry_config table.
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

func (s *Postgres) Administrator(ctx context.Context) (domain.Address, error) {
	var value string
	err := s.q(ctx).QueryRow(ctx,
		`SELECT value FROM registry_config WHERE key = $1`,
		administratorKey,
	).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ZeroAddress, fmt.Errorf("administrator: %w", sentinel.ErrNotFound)
		}
		return domain.ZeroAddress, fmt.Errorf("query administrator: %w", err)
	}
	addr, err := domain.ParseAddress(value)
	if err != nil {
		return domain.ZeroAddress, fmt.Errorf("parse administrator: %w", err)
	}
	return addr, nil
}

func (s *Postgres) SetAdministrator(ctx context.Context, addr domain.Address) error {
	_, err := s.q(ctx).Exec(ctx, `
		INSERT INTO registry_config (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value
	`, administratorKey, addr.Hex())
	if err != nil {
		return fmt.Errorf("set administrator: %w", err)
	}
	return nil
}

func (s *Postgres) Seed(ctx context.Context, addr domain.Address) error {
	_, err := s.q(ctx).Exec(ctx, `
		INSERT INTO registry_config (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key) DO NOTHING
	`, administratorKey, addr.Hex())
	if err != nil {
		return fmt.Errorf("seed administrator: %w", err)
	}
	return nil
}
