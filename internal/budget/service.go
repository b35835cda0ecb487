package budget

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/joshua-paul-1/fintrackr/internal/domain"
)

// SetResult is returned by Service.Set.
type SetResult struct {
	Budget  domain.Budget
	Created bool
	Message string
}

// Service manages per-user budgets.
type Service struct {
	budgets      domain.BudgetStore
	transactions domain.TransactionStore
	log          zerolog.Logger
	now          func() time.Time
}

// NewService creates a budget service.
func NewService(budgets domain.BudgetStore, transactions domain.TransactionStore, log zerolog.Logger) *Service {
	return &Service{
		budgets:      budgets,
		transactions: transactions,
		log:          log,
		now:          time.Now,
	}
}

// Set creates or replaces the budget of ownerID.
func (s *Service) Set(ctx context.Context, ownerID string, amount decimal.Decimal, period string) (SetResult, error) {
	if !amount.IsPositive() {
		return SetResult{}, domain.Validation("Budget amount is required and must be positive")
	}
	p, err := domain.ParsePeriod(period)
	if err != nil {
		return SetResult{}, err
	}

	b := domain.Budget{
		OwnerID:     ownerID,
		Amount:      amount,
		Period:      p,
		LastUpdated: s.now().UTC(),
	}

	created, err := s.budgets.UpsertBudget(ctx, b)
	if err != nil {
		return SetResult{}, domain.Upstream("Error setting budget", err)
	}

	verb := "Updated"
	if created {
		verb = "Created new"
	}
	msg := fmt.Sprintf("%s budget for user %s: %s (%s)", verb, ownerID, amount.String(), p)

	s.log.Info().Str("sub", ownerID).Str("period", string(p)).Bool("created", created).Msg("Budget saved")

	return SetResult{Budget: b, Created: created, Message: msg}, nil
}

// Get returns the budget of ownerID or domain.ErrNotFound.
func (s *Service) Get(ctx context.Context, ownerID string) (*domain.Budget, error) {
	b, err := s.budgets.GetBudget(ctx, ownerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, domain.Upstream("Error getting budget", err)
	}
	return b, nil
}

// Status evaluates the current spending of ownerID against the budget. The
// returned budget is nil when none is set.
func (s *Service) Status(ctx context.Context, ownerID string) (Status, *domain.Budget, error) {
	b, err := s.Get(ctx, ownerID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return Status{}, nil, err
	}

	spending, err := s.transactions.TotalSpending(ctx, ownerID)
	if err != nil {
		return Status{}, nil, domain.Upstream("Error getting budget status", err)
	}

	amount := decimal.NullDecimal{}
	if b != nil {
		amount = decimal.NewNullDecimal(b.Amount)
	}

	return Evaluate(spending, amount), b, nil
}
