package store

import (
	"context"
	"fmt"
	"sync"

	"soulbound/pkg/domain"
	"soulbound/pkg/platform/sentinel"
)

// Memory keeps the administrator slot in process memory.
type Memory struct {
	mu    sync.RWMutex
	admin domain.Address
	set   bool
}

func NewMemory() *Memory {
	return &Memory{}
}

func (s *Memory) Administrator(_ context.Context) (domain.Address, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.set {
		return domain.ZeroAddress, fmt.Errorf("administrator: %w", sentinel.ErrNotFound)
	}
	return s.admin, nil
}

func (s *Memory) SetAdministrator(_ context.Context, addr domain.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.admin = addr
	s.set = true
	return nil
}

func (s *Memory) Seed(_ context.Context, addr domain.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.set {
		return nil
	}
	s.admin = addr
	s.set = true
	return nil
}
