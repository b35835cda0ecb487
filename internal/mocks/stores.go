// Package mocks provides testify mocks of the store interfaces.
package mocks

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/joshua-paul-1/fintrackr/internal/domain"
)

// BudgetStore mocks domain.BudgetStore.
type BudgetStore struct {
	mock.Mock
}

func (m *BudgetStore) UpsertBudget(ctx context.Context, b domain.Budget) (bool, error) {
	args := m.Called(ctx, b)
	return args.Bool(0), args.Error(1)
}

func (m *BudgetStore) GetBudget(ctx context.Context, ownerID string) (*domain.Budget, error) {
	args := m.Called(ctx, ownerID)
	b, _ := args.Get(0).(*domain.Budget)
	return b, args.Error(1)
}

// TransactionStore mocks domain.TransactionStore.
type TransactionStore struct {
	mock.Mock
}

func (m *TransactionStore) AppendTransactions(ctx context.Context, ownerID string, txs []domain.Transaction) (domain.AppendResult, error) {
	args := m.Called(ctx, ownerID, txs)
	return args.Get(0).(domain.AppendResult), args.Error(1)
}

func (m *TransactionStore) GetLedger(ctx context.Context, ownerID string) (*domain.Ledger, error) {
	args := m.Called(ctx, ownerID)
	l, _ := args.Get(0).(*domain.Ledger)
	return l, args.Error(1)
}

func (m *TransactionStore) DeleteLedger(ctx context.Context, ownerID string) (int64, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *TransactionStore) TotalSpending(ctx context.Context, ownerID string) (decimal.Decimal, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// DocumentStore mocks domain.DocumentStore.
type DocumentStore struct {
	mock.Mock
}

func (m *DocumentStore) CreateDocument(ctx context.Context, doc *domain.Document) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *DocumentStore) GetDocument(ctx context.Context, ownerID, documentID string) (*domain.Document, error) {
	args := m.Called(ctx, ownerID, documentID)
	d, _ := args.Get(0).(*domain.Document)
	return d, args.Error(1)
}

func (m *DocumentStore) DeleteDocuments(ctx context.Context, ownerID string) ([]domain.Document, error) {
	args := m.Called(ctx, ownerID)
	docs, _ := args.Get(0).([]domain.Document)
	return docs, args.Error(1)
}

// FriendStore mocks domain.FriendStore.
type FriendStore struct {
	mock.Mock
}

func (m *FriendStore) CreateRelation(ctx context.Context, rel *domain.FriendRelation) error {
	args := m.Called(ctx, rel)
	return args.Error(0)
}

func (m *FriendStore) FindActiveRelation(ctx context.Context, senderSub, recipientEmail string) (*domain.FriendRelation, error) {
	args := m.Called(ctx, senderSub, recipientEmail)
	r, _ := args.Get(0).(*domain.FriendRelation)
	return r, args.Error(1)
}

func (m *FriendStore) ListReceivedPending(ctx context.Context, recipientEmail string) ([]domain.FriendRelation, error) {
	args := m.Called(ctx, recipientEmail)
	rels, _ := args.Get(0).([]domain.FriendRelation)
	return rels, args.Error(1)
}

func (m *FriendStore) ListSentPending(ctx context.Context, senderSub string) ([]domain.FriendRelation, error) {
	args := m.Called(ctx, senderSub)
	rels, _ := args.Get(0).([]domain.FriendRelation)
	return rels, args.Error(1)
}

func (m *FriendStore) ListAccepted(ctx context.Context, sub, email string) ([]domain.FriendRelation, error) {
	args := m.Called(ctx, sub, email)
	rels, _ := args.Get(0).([]domain.FriendRelation)
	return rels, args.Error(1)
}

func (m *FriendStore) FindAccepted(ctx context.Context, q domain.RelationQuery) (*domain.FriendRelation, error) {
	args := m.Called(ctx, q)
	r, _ := args.Get(0).(*domain.FriendRelation)
	return r, args.Error(1)
}

func (m *FriendStore) AcceptRelation(ctx context.Context, id, recipientEmail, recipientSub string, at time.Time) error {
	args := m.Called(ctx, id, recipientEmail, recipientSub, at)
	return args.Error(0)
}

func (m *FriendStore) DeletePendingRelation(ctx context.Context, id, recipientEmail string) error {
	args := m.Called(ctx, id, recipientEmail)
	return args.Error(0)
}

var (
	_ domain.BudgetStore      = (*BudgetStore)(nil)
	_ domain.TransactionStore = (*TransactionStore)(nil)
	_ domain.DocumentStore    = (*DocumentStore)(nil)
	_ domain.FriendStore      = (*FriendStore)(nil)
)
