package budget

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/joshua-paul-1/fintrackr/internal/domain"
	"github.com/joshua-paul-1/fintrackr/internal/mocks"
)

func newTestService(budgets *mocks.BudgetStore, txs *mocks.TransactionStore) *Service {
	s := NewService(budgets, txs, zerolog.New(io.Discard))
	s.now = func() time.Time { return time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC) }
	return s
}

func TestService_Set(t *testing.T) {
	ctx := context.Background()

	t.Run("creates budget with default period", func(t *testing.T) {
		budgets := &mocks.BudgetStore{}
		budgets.On("UpsertBudget", ctx, mock.MatchedBy(func(b domain.Budget) bool {
			return b.OwnerID == "sub-1" && b.Period == domain.PeriodMonthly && b.Amount.Equal(d("500"))
		})).Return(true, nil)

		res, err := newTestService(budgets, &mocks.TransactionStore{}).Set(ctx, "sub-1", d("500"), "")
		require.NoError(t, err)
		assert.True(t, res.Created)
		assert.Equal(t, domain.PeriodMonthly, res.Budget.Period)
		assert.Contains(t, res.Message, "Created new budget")
		budgets.AssertExpectations(t)
	})

	t.Run("updates existing budget", func(t *testing.T) {
		budgets := &mocks.BudgetStore{}
		budgets.On("UpsertBudget", ctx, mock.Anything).Return(false, nil)

		res, err := newTestService(budgets, &mocks.TransactionStore{}).Set(ctx, "sub-1", d("75.5"), "weekly")
		require.NoError(t, err)
		assert.False(t, res.Created)
		assert.Equal(t, domain.PeriodWeekly, res.Budget.Period)
		assert.Contains(t, res.Message, "Updated budget")
	})

	t.Run("rejects non-positive amounts", func(t *testing.T) {
		svc := newTestService(&mocks.BudgetStore{}, &mocks.TransactionStore{})
		for _, amount := range []string{"0", "-1"} {
			_, err := svc.Set(ctx, "sub-1", d(amount), "monthly")
			assert.Equal(t, domain.KindValidation, domain.KindOf(err))
		}
	})

	t.Run("rejects unknown period", func(t *testing.T) {
		_, err := newTestService(&mocks.BudgetStore{}, &mocks.TransactionStore{}).Set(ctx, "sub-1", d("10"), "daily")
		assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	})

	t.Run("store failure is upstream", func(t *testing.T) {
		budgets := &mocks.BudgetStore{}
		budgets.On("UpsertBudget", ctx, mock.Anything).Return(false, errors.New("connection reset"))

		_, err := newTestService(budgets, &mocks.TransactionStore{}).Set(ctx, "sub-1", d("10"), "monthly")
		assert.Equal(t, domain.KindUpstream, domain.KindOf(err))
	})
}

func TestService_Status(t *testing.T) {
	ctx := context.Background()

	t.Run("no budget", func(t *testing.T) {
		budgets := &mocks.BudgetStore{}
		budgets.On("GetBudget", ctx, "sub-1").Return(nil, domain.ErrNotFound)
		txs := &mocks.TransactionStore{}
		txs.On("TotalSpending", ctx, "sub-1").Return(d("250"), nil)

		status, b, err := newTestService(budgets, txs).Status(ctx, "sub-1")
		require.NoError(t, err)
		assert.Nil(t, b)
		assert.Equal(t, NoBudget, status.State)
		assert.True(t, d("250").Equal(status.TotalSpending))
	})

	t.Run("over budget", func(t *testing.T) {
		budgets := &mocks.BudgetStore{}
		budgets.On("GetBudget", ctx, "sub-1").Return(&domain.Budget{OwnerID: "sub-1", Amount: d("200"), Period: domain.PeriodMonthly}, nil)
		txs := &mocks.TransactionStore{}
		txs.On("TotalSpending", ctx, "sub-1").Return(d("250"), nil)

		status, b, err := newTestService(budgets, txs).Status(ctx, "sub-1")
		require.NoError(t, err)
		require.NotNil(t, b)
		assert.Equal(t, OverBudget, status.State)
		assert.True(t, d("50").Equal(status.Difference))
		assert.Equal(t, "125.0", status.Percentage)
	})

	t.Run("budget lookup failure", func(t *testing.T) {
		budgets := &mocks.BudgetStore{}
		budgets.On("GetBudget", ctx, "sub-1").Return(nil, errors.New("boom"))

		_, _, err := newTestService(budgets, &mocks.TransactionStore{}).Status(ctx, "sub-1")
		assert.Equal(t, domain.KindUpstream, domain.KindOf(err))
	})

	t.Run("spending lookup failure", func(t *testing.T) {
		budgets := &mocks.BudgetStore{}
		budgets.On("GetBudget", ctx, "sub-1").Return(nil, domain.ErrNotFound)
		txs := &mocks.TransactionStore{}
		txs.On("TotalSpending", ctx, "sub-1").Return(decimal.Zero, errors.New("boom"))

		_, _, err := newTestService(budgets, txs).Status(ctx, "sub-1")
		assert.Equal(t, domain.KindUpstream, domain.KindOf(err))
	})
}
