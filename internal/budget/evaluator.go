package budget

import (
	"github.com/shopspring/decimal"
)

// State is the outcome of comparing spending to a budget.
type State string

const (
	NoBudget     State = "no_budget"
	WithinBudget State = "within_budget"
	OverBudget   State = "over_budget"
)

var hundred = decimal.NewFromInt(100)

// Status is the evaluated budget position of a user.
type Status struct {
	State         State           `json:"status"`
	Message       string          `json:"message"`
	TotalSpending decimal.Decimal `json:"totalSpending"`
	BudgetAmount  decimal.Decimal `json:"budgetAmount"`
	Difference    decimal.Decimal `json:"difference"`
	Percentage    string          `json:"percentage,omitempty"`
}

// Evaluate compares totalSpending against budgetAmount. A missing or
// non-positive budget yields NoBudget. Difference is always reported as a
// non-negative amount; State tells which side of the budget it is on.
func Evaluate(totalSpending decimal.Decimal, budgetAmount decimal.NullDecimal) Status {
	if !budgetAmount.Valid || !budgetAmount.Decimal.IsPositive() {
		return Status{
			State:         NoBudget,
			Message:       "No budget set",
			TotalSpending: totalSpending,
			BudgetAmount:  decimal.Zero,
			Difference:    decimal.Zero,
		}
	}

	amount := budgetAmount.Decimal
	difference := amount.Sub(totalSpending)
	percentage := totalSpending.Mul(hundred).Div(amount).StringFixed(1)

	if difference.IsNegative() {
		return Status{
			State:         OverBudget,
			Message:       "Over Budget",
			TotalSpending: totalSpending,
			BudgetAmount:  amount,
			Difference:    difference.Abs(),
			Percentage:    percentage,
		}
	}

	return Status{
		State:         WithinBudget,
		Message:       "Within Budget",
		TotalSpending: totalSpending,
		BudgetAmount:  amount,
		Difference:    difference,
		Percentage:    percentage,
	}
}
