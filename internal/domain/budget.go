package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Period is the window a budget applies to.
type Period string

const (
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
	PeriodYearly  Period = "yearly"
)

// ParsePeriod validates a period. An empty value defaults to monthly.
func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case "":
		return PeriodMonthly, nil
	case PeriodWeekly, PeriodMonthly, PeriodYearly:
		return Period(s), nil
	default:
		return "", Validation("Budget period must be weekly, monthly or yearly")
	}
}

// Budget is the single live budget record of a user.
type Budget struct {
	OwnerID     string          `json:"-"`
	Amount      decimal.Decimal `json:"budgetAmount"`
	Period      Period          `json:"budgetPeriod"`
	LastUpdated time.Time       `json:"lastUpdated"`
}
