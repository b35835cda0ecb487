package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// DocumentStore persists uploaded statement metadata.
type DocumentStore interface {
	CreateDocument(ctx context.Context, doc *Document) error
	// GetDocument returns ErrNotFound unless the document belongs to ownerID.
	GetDocument(ctx context.Context, ownerID, documentID string) (*Document, error)
	// DeleteDocuments removes every document of ownerID and returns what was removed.
	DeleteDocuments(ctx context.Context, ownerID string) ([]Document, error)
}

// TransactionStore holds one append-only ledger per user.
type TransactionStore interface {
	// AppendTransactions atomically appends txs to the ledger, creating it when absent.
	AppendTransactions(ctx context.Context, ownerID string, txs []Transaction) (AppendResult, error)
	// GetLedger returns ErrNotFound when the user has no ledger.
	GetLedger(ctx context.Context, ownerID string) (*Ledger, error)
	// DeleteLedger returns the number of ledger documents removed.
	DeleteLedger(ctx context.Context, ownerID string) (int64, error)
	TotalSpending(ctx context.Context, ownerID string) (decimal.Decimal, error)
}

// BudgetStore holds one budget per user.
type BudgetStore interface {
	// UpsertBudget sets or replaces the budget and reports whether it was created.
	UpsertBudget(ctx context.Context, b Budget) (bool, error)
	// GetBudget returns ErrNotFound when no budget is set.
	GetBudget(ctx context.Context, ownerID string) (*Budget, error)
}

// RelationQuery selects accepted relations. Empty fields match anything.
type RelationQuery struct {
	SenderEmail    string
	RecipientEmail string
}

// FriendStore holds friend relations.
type FriendStore interface {
	// CreateRelation returns ErrDuplicateRequest if an active relation exists
	// for the same sender and recipient.
	CreateRelation(ctx context.Context, rel *FriendRelation) error
	FindActiveRelation(ctx context.Context, senderSub, recipientEmail string) (*FriendRelation, error)
	ListReceivedPending(ctx context.Context, recipientEmail string) ([]FriendRelation, error)
	ListSentPending(ctx context.Context, senderSub string) ([]FriendRelation, error)
	ListAccepted(ctx context.Context, sub, email string) ([]FriendRelation, error)
	// FindAccepted returns the oldest accepted relation matching q or ErrNotFound.
	FindAccepted(ctx context.Context, q RelationQuery) (*FriendRelation, error)
	// AcceptRelation moves a pending relation addressed to recipientEmail to
	// accepted in one conditional write. ErrNotFound when nothing matched.
	AcceptRelation(ctx context.Context, id, recipientEmail, recipientSub string, at time.Time) error
	// DeletePendingRelation removes a pending relation addressed to recipientEmail.
	DeletePendingRelation(ctx context.Context, id, recipientEmail string) error
}
