package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"soulbound/pkg/platform/sentinel"
	txctx "soulbound/pkg/platform/tx"
)

const baseLocatorKey = "base_locator"

// Postgres persists the base locator in the registry_config table,
// alongside the administrator slot.
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

func (s *Postgres) BaseLocator(ctx context.Context) (string, error) {
	var value string
	err := s.q(ctx).QueryRow(ctx,
		`SELECT value FROM registry_config WHERE key = $1`,
		baseLocatorKey,
	).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("base locator: %w", sentinel.ErrNotFound)
		}
		return "", fmt.Errorf("query base locator: %w", err)
	}
	return value, nil
}

func (s *Postgres) SetBaseLocator(ctx context.Context, base string) error {
	_, err := s.q(ctx).Exec(ctx, `
		INSERT INTO registry_config (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value
	`, baseLocatorKey, base)
	if err != nil {
		return fmt.Errorf("set base locator: %w", err)
	}
	return nil
}
