package memory

import (
	"context"
	"sync"

	"github.com/joshua-paul-1/fintrackr/internal/domain"
)

// BudgetStore is an in-memory domain.BudgetStore.
type BudgetStore struct {
	mu      sync.RWMutex
	budgets map[string]domain.Budget
}

// NewBudgetStore creates an empty store.
func NewBudgetStore() *BudgetStore {
	return &BudgetStore{budgets: make(map[string]domain.Budget)}
}

// UpsertBudget implements domain.BudgetStore.
func (s *BudgetStore) UpsertBudget(ctx context.Context, b domain.Budget) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, exists := s.budgets[b.OwnerID]
	s.budgets[b.OwnerID] = b
	return !exists, nil
}

// GetBudget implements domain.BudgetStore.
func (s *BudgetStore) GetBudget(ctx context.Context, ownerID string) (*domain.Budget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.budgets[ownerID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &b, nil
}

var _ domain.BudgetStore = (*BudgetStore)(nil)
