package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"soulbound/internal/skills/models"
	"soulbound/pkg/domain"
	"soulbound/pkg/platform/sentinel"
	txctx "soulbound/pkg/platform/tx"
)

// Postgres persists the skill catalog and attribute map. Values are
// NUMERIC(78,0) so a full 256-bit word survives the round trip. Every
// method joins an ambient transaction from context when one is present.
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

func (s *Postgres) Count(ctx context.Context) (uint64, error) {
	var count int64
	err := s.q(ctx).QueryRow(ctx, `SELECT count(*) FROM skills`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count skills: %w", err)
	}
	return uint64(count), nil
}

func (s *Postgres) Skill(ctx context.Context, id domain.SkillID) (models.Skill, error) {
	var name string
	err := s.q(ctx).QueryRow(ctx,
		`SELECT name FROM skills WHERE id = $1`,
		int64(id),
	).Scan(&name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Skill{}, fmt.Errorf("skill %s: %w", id, sentinel.ErrNotFound)
		}
		return models.Skill{}, fmt.Errorf("query skill: %w", err)
	}
	return models.Skill{ID: id, Name: name}, nil
}

func (s *Postgres) List(ctx context.Context) ([]models.Skill, error) {
	rows, err := s.q(ctx).Query(ctx, `SELECT id, name FROM skills ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list skills: %w", err)
	}
	defer rows.Close()

	var out []models.Skill
	for rows.Next() {
		var (
			id   int64
			name string
		)
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("scan skill: %w", err)
		}
		out = append(out, models.Skill{ID: domain.SkillID(id), Name: name})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate skills: %w", err)
	}
	return out, nil
}

// Append assigns the next position under the catalog's own max, so
// concurrent appends serialize on the unique primary key rather than a
// separate counter.
func (s *Postgres) Append(ctx context.Context, name string) (models.Skill, error) {
	var id int64
	err := s.q(ctx).QueryRow(ctx, `
		INSERT INTO skills (id, name)
		SELECT COALESCE(MAX(id) + 1, 0), $1 FROM skills
		RETURNING id
	`, name).Scan(&id)
	if err != nil {
		return models.Skill{}, fmt.Errorf("append skill: %w", err)
	}
	return models.Skill{ID: domain.SkillID(id), Name: name}, nil
}

func (s *Postgres) Rename(ctx context.Context, id domain.SkillID, name string) error {
	tag, err := s.q(ctx).Exec(ctx,
		`UPDATE skills SET name = $2 WHERE id = $1`,
		int64(id), name,
	)
	if err != nil {
		return fmt.Errorf("rename skill: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("skill %s: %w", id, sentinel.ErrNotFound)
	}
	return nil
}

func (s *Postgres) Value(ctx context.Context, tokenID domain.TokenID, skillID domain.SkillID) (*uint256.Int, error) {
	var raw string
	err := s.q(ctx).QueryRow(ctx,
		`SELECT value::text FROM skill_values WHERE token_id = $1 AND skill_id = $2`,
		int64(tokenID), int64(skillID),
	).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uint256.NewInt(0), nil
		}
		return nil, fmt.Errorf("query skill value: %w", err)
	}
	amount, err := uint256.FromDecimal(raw)
	if err != nil {
		return nil, fmt.Errorf("parse skill value: %w", err)
	}
	return amount, nil
}

func (s *Postgres) SetValue(ctx context.Context, tokenID domain.TokenID, skillID domain.SkillID, amount *uint256.Int) error {
	_, err := s.q(ctx).Exec(ctx, `
		INSERT INTO skill_values (token_id, skill_id, value)
		VALUES ($1, $2, $3::numeric)
		ON CONFLICT (token_id, skill_id) DO UPDATE SET value = excluded.value
	`, int64(tokenID), int64(skillID), amount.Dec())
	if err != nil {
		return fmt.Errorf("set skill value: %w", err)
	}
	return nil
}
