package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"soulbound/internal/ledger/models"
	"soulbound/pkg/domain"
	"soulbound/pkg/platform/sentinel"
)

// Memory is the in-memory ledger for tests and single-node runs. A single
// RWMutex guards all maps; cross-store atomicity comes from the mutex
// runner serializing whole operations above this layer.
type Memory struct {
	mu          sync.RWMutex
	tokens      map[domain.TokenID]models.Token
	balances    map[domain.Address]uint64
	approved    map[domain.TokenID]domain.Address
	operators   map[domain.Address]map[domain.Address]bool
	totalIssued uint64
}

func NewMemory() *Memory {
	return &Memory{
		tokens:    make(map[domain.TokenID]models.Token),
		balances:  make(map[domain.Address]uint64),
		approved:  make(map[domain.TokenID]domain.Address),
		operators: make(map[domain.Address]map[domain.Address]bool),
	}
}

func (s *Memory) Token(_ context.Context, id domain.TokenID) (models.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	token, ok := s.tokens[id]
	if !ok {
		return models.Token{}, fmt.Errorf("token %s: %w", id, sentinel.ErrNotFound)
	}
	return token, nil
}

func (s *Memory) BalanceOf(_ context.Context, addr domain.Address) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.balances[addr], nil
}

func (s *Memory) TotalIssued(_ context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.totalIssued, nil
}

func (s *Memory) Mint(_ context.Context, to domain.Address, at time.Time) (models.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.balances[to] > 0 {
		return models.Token{}, fmt.Errorf("holder %s already has a token: %w", to, sentinel.ErrConflict)
	}
	id := domain.TokenID(s.totalIssued)
	if _, exists := s.tokens[id]; exists {
		return models.Token{}, fmt.Errorf("token id %s already exists: %w", id, sentinel.ErrConflict)
	}

	token := models.Token{ID: id, Owner: to, MintedAt: at}
	s.tokens[id] = token
	s.balances[to]++
	s.totalIssued++
	return token, nil
}

func (s *Memory) Burn(_ context.Context, id domain.TokenID) (models.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, ok := s.tokens[id]
	if !ok {
		return models.Token{}, fmt.Errorf("token %s: %w", id, sentinel.ErrNotFound)
	}
	delete(s.tokens, id)
	delete(s.approved, id)
	if s.balances[token.Owner] > 0 {
		s.balances[token.Owner]--
	}
	return token, nil
}

func (s *Memory) Approved(_ context.Context, id domain.TokenID) (domain.Address, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.tokens[id]; !ok {
		return domain.ZeroAddress, fmt.Errorf("token %s: %w", id, sentinel.ErrNotFound)
	}
	return s.approved[id], nil
}

func (s *Memory) SetApproved(_ context.Context, id domain.TokenID, spender domain.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tokens[id]; !ok {
		return fmt.Errorf("token %s: %w", id, sentinel.ErrNotFound)
	}
	if spender.IsZero() {
		delete(s.approved, id)
		return nil
	}
	s.approved[id] = spender
	return nil
}

func (s *Memory) IsOperatorFor(_ context.Context, owner, operator domain.Address) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.operators[owner][operator], nil
}

func (s *Memory) SetOperator(_ context.Context, owner, operator domain.Address, approved bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	grants, ok := s.operators[owner]
	if !ok {
		if !approved {
			return nil
		}
		grants = make(map[domain.Address]bool)
		s.operators[owner] = grants
	}
	if !approved {
		delete(grants, operator)
		return nil
	}
	grants[operator] = true
	return nil
}
