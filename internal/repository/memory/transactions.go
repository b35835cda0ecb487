// Package memory implements the FinTrackr stores in process memory. Data is
// lost on restart; it backs local development and tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/joshua-paul-1/fintrackr/internal/domain"
)

// TransactionStore is an in-memory domain.TransactionStore.
type TransactionStore struct {
	mu      sync.RWMutex
	ledgers map[string]*domain.Ledger
	now     func() time.Time
}

// NewTransactionStore creates an empty store.
func NewTransactionStore() *TransactionStore {
	return &TransactionStore{
		ledgers: make(map[string]*domain.Ledger),
		now:     time.Now,
	}
}

// AppendTransactions implements domain.TransactionStore.
func (s *TransactionStore) AppendTransactions(ctx context.Context, ownerID string, txs []domain.Transaction) (domain.AppendResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ledger, ok := s.ledgers[ownerID]
	if !ok {
		ledger = &domain.Ledger{OwnerID: ownerID}
		s.ledgers[ownerID] = ledger
	}
	ledger.Transactions = append(ledger.Transactions, txs...)
	ledger.LastUpdate = s.now().UTC()

	return domain.AppendResult{Created: !ok, Appended: len(txs)}, nil
}

// GetLedger implements domain.TransactionStore.
func (s *TransactionStore) GetLedger(ctx context.Context, ownerID string) (*domain.Ledger, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ledger, ok := s.ledgers[ownerID]
	if !ok {
		return nil, domain.ErrNotFound
	}

	// Return a copy to avoid external modifications
	cp := *ledger
	cp.Transactions = append([]domain.Transaction(nil), ledger.Transactions...)
	return &cp, nil
}

// DeleteLedger implements domain.TransactionStore.
func (s *TransactionStore) DeleteLedger(ctx context.Context, ownerID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.ledgers[ownerID]; !ok {
		return 0, nil
	}
	delete(s.ledgers, ownerID)
	return 1, nil
}

// TotalSpending implements domain.TransactionStore.
func (s *TransactionStore) TotalSpending(ctx context.Context, ownerID string) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ledger, ok := s.ledgers[ownerID]
	if !ok {
		return decimal.Zero, nil
	}
	return domain.TotalSpending(ledger.Transactions), nil
}

var _ domain.TransactionStore = (*TransactionStore)(nil)
