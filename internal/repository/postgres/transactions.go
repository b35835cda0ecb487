package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/joshua-paul-1/fintrackr/internal/domain"
)

var _ domain.TransactionStore = (*TransactionRepository)(nil)

type TransactionRepository struct {
	db  *Connection
	now func() time.Time
}

func NewTransactionRepository(db *Connection) *TransactionRepository {
	return &TransactionRepository{
		db:  db,
		now: time.Now,
	}
}

// AppendTransactions appends in a single upsert so concurrent uploads for the
// same user are both kept.
func (r *TransactionRepository) AppendTransactions(ctx context.Context, ownerID string, txs []domain.Transaction) (domain.AppendResult, error) {
	if txs == nil {
		txs = []domain.Transaction{}
	}
	payload, err := json.Marshal(txs)
	if err != nil {
		return domain.AppendResult{}, fmt.Errorf("failed to encode transactions: %w", err)
	}

	query := `
		INSERT INTO transactions (sub, transactions, last_update)
		VALUES ($1, $2::jsonb, $3)
		ON CONFLICT (sub) DO UPDATE
		SET transactions = transactions.transactions || EXCLUDED.transactions,
		    last_update = EXCLUDED.last_update
		RETURNING (xmax = 0)`

	var created bool
	if err := r.db.QueryRow(ctx, query, ownerID, string(payload), r.now().UTC()).Scan(&created); err != nil {
		return domain.AppendResult{}, fmt.Errorf("failed to append transactions: %w", err)
	}

	return domain.AppendResult{Created: created, Appended: len(txs)}, nil
}

func (r *TransactionRepository) GetLedger(ctx context.Context, ownerID string) (*domain.Ledger, error) {
	query := `SELECT transactions, last_update FROM transactions WHERE sub = $1`

	var (
		raw    []byte
		ledger = domain.Ledger{OwnerID: ownerID}
	)
	err := r.db.QueryRow(ctx, query, ownerID).Scan(&raw, &ledger.LastUpdate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get ledger: %w", err)
	}

	if err := json.Unmarshal(raw, &ledger.Transactions); err != nil {
		return nil, fmt.Errorf("failed to decode ledger: %w", err)
	}

	return &ledger, nil
}

func (r *TransactionRepository) DeleteLedger(ctx context.Context, ownerID string) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM transactions WHERE sub = $1`, ownerID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete ledger: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *TransactionRepository) TotalSpending(ctx context.Context, ownerID string) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM((t->>'total')::numeric), 0)::text
		FROM transactions, jsonb_array_elements(transactions.transactions) AS t
		WHERE sub = $1`

	var total string
	if err := r.db.QueryRow(ctx, query, ownerID).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum spending: %w", err)
	}

	d, err := decimal.NewFromString(total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse spending %q: %w", total, err)
	}
	return d, nil
}
