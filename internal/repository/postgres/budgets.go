package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/joshua-paul-1/fintrackr/internal/domain"
)

var _ domain.BudgetStore = (*BudgetRepository)(nil)

type BudgetRepository struct {
	db *Connection
}

func NewBudgetRepository(db *Connection) *BudgetRepository {
	return &BudgetRepository{
		db: db,
	}
}

func (r *BudgetRepository) UpsertBudget(ctx context.Context, b domain.Budget) (bool, error) {
	query := `
		INSERT INTO budgets (sub, budget_amount, budget_period, last_updated)
		VALUES ($1, $2::numeric, $3, $4)
		ON CONFLICT (sub) DO UPDATE
		SET budget_amount = EXCLUDED.budget_amount,
		    budget_period = EXCLUDED.budget_period,
		    last_updated = EXCLUDED.last_updated
		RETURNING (xmax = 0)`

	var created bool
	err := r.db.QueryRow(ctx, query, b.OwnerID, b.Amount.String(), string(b.Period), b.LastUpdated).Scan(&created)
	if err != nil {
		return false, fmt.Errorf("failed to upsert budget: %w", err)
	}

	return created, nil
}

func (r *BudgetRepository) GetBudget(ctx context.Context, ownerID string) (*domain.Budget, error) {
	query := `SELECT budget_amount::text, budget_period, last_updated FROM budgets WHERE sub = $1`

	var (
		amount string
		period string
		b      = domain.Budget{OwnerID: ownerID}
	)
	err := r.db.QueryRow(ctx, query, ownerID).Scan(&amount, &period, &b.LastUpdated)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get budget: %w", err)
	}

	b.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("failed to parse budget amount %q: %w", amount, err)
	}
	b.Period = domain.Period(period)

	return &b, nil
}
