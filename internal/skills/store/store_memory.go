package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/holiman/uint256"

	"soulbound/internal/skills/models"
	"soulbound/pkg/domain"
	"soulbound/pkg/platform/sentinel"
)

type valueKey struct {
	token domain.TokenID
	skill domain.SkillID
}

// Memory is the in-memory skill store for tests and single-node runs.
type Memory struct {
	mu     sync.RWMutex
	names  []string
	values map[valueKey]*uint256.Int
}

func NewMemory() *Memory {
	return &Memory{values: make(map[valueKey]*uint256.Int)}
}

func (s *Memory) Count(_ context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return uint64(len(s.names)), nil
}

func (s *Memory) Skill(_ context.Context, id domain.SkillID) (models.Skill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if uint64(id) >= uint64(len(s.names)) {
		return models.Skill{}, fmt.Errorf("skill %s: %w", id, sentinel.ErrNotFound)
	}
	return models.Skill{ID: id, Name: s.names[id]}, nil
}

func (s *Memory) List(_ context.Context) ([]models.Skill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Skill, len(s.names))
	for i, name := range s.names {
		out[i] = models.Skill{ID: domain.SkillID(i), Name: name}
	}
	return out, nil
}

func (s *Memory) Append(_ context.Context, name string) (models.Skill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	skill := models.Skill{ID: domain.SkillID(len(s.names)), Name: name}
	s.names = append(s.names, name)
	return skill, nil
}

func (s *Memory) Rename(_ context.Context, id domain.SkillID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if uint64(id) >= uint64(len(s.names)) {
		return fmt.Errorf("skill %s: %w", id, sentinel.ErrNotFound)
	}
	s.names[id] = name
	return nil
}

func (s *Memory) Value(_ context.Context, tokenID domain.TokenID, skillID domain.SkillID) (*uint256.Int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.values[valueKey{tokenID, skillID}]; ok {
		return v.Clone(), nil
	}
	return uint256.NewInt(0), nil
}

func (s *Memory) SetValue(_ context.Context, tokenID domain.TokenID, skillID domain.SkillID, amount *uint256.Int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[valueKey{tokenID, skillID}] = amount.Clone()
	return nil
}
