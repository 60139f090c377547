package store

import (
	"context"
	"fmt"
	"sync"

	"soulbound/pkg/platform/sentinel"
)

// Memory keeps the base locator in process memory.
type Memory struct {
	mu   sync.RWMutex
	base string
	set  bool
}

func NewMemory() *Memory {
	return &Memory{}
}

func (s *Memory) BaseLocator(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.set {
		return "", fmt.Errorf("base locator: %w", sentinel.ErrNotFound)
	}
	return s.base, nil
}

func (s *Memory) SetBaseLocator(_ context.Context, base string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.base = base
	s.set = true
	return nil
}
