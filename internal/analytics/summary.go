package analytics

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/joshua-paul-1/fintrackr/internal/domain"
)

// maxMerchants bounds the merchant list sent to the model.
const maxMerchants = 15

// MerchantSpend is the aggregate spend at one merchant.
type MerchantSpend struct {
	Name  string          `json:"name"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

// MonthSpend is the aggregate spend in one calendar month (YYYY-MM).
type MonthSpend struct {
	Month string          `json:"month"`
	Total decimal.Decimal `json:"total"`
}

// Summary is a compact, deterministic view of a ledger.
type Summary struct {
	TotalSpending    decimal.Decimal `json:"totalSpending"`
	TransactionCount int             `json:"transactionCount"`
	TopMerchants     []MerchantSpend `json:"topMerchants"`
	Monthly          []MonthSpend    `json:"monthly"`
}

// Summarize aggregates txs by merchant and by month. Merchants are ordered by
// total descending, then name; months ascending. Undated entries count toward
// totals only.
func Summarize(txs []domain.Transaction) Summary {
	byMerchant := make(map[string]*MerchantSpend)
	byMonth := make(map[string]decimal.Decimal)

	s := Summary{TotalSpending: decimal.Zero}
	for _, tx := range txs {
		s.TotalSpending = s.TotalSpending.Add(tx.Total)
		s.TransactionCount++

		m, ok := byMerchant[tx.MerchantName]
		if !ok {
			m = &MerchantSpend{Name: tx.MerchantName, Total: decimal.Zero}
			byMerchant[tx.MerchantName] = m
		}
		m.Total = m.Total.Add(tx.Total)
		m.Count += tx.Count

		if tx.Date != nil {
			key := tx.Date.String()[:7]
			byMonth[key] = byMonth[key].Add(tx.Total)
		}
	}

	s.TopMerchants = make([]MerchantSpend, 0, len(byMerchant))
	for _, m := range byMerchant {
		s.TopMerchants = append(s.TopMerchants, *m)
	}
	sort.Slice(s.TopMerchants, func(i, j int) bool {
		a, b := s.TopMerchants[i], s.TopMerchants[j]
		if c := a.Total.Cmp(b.Total); c != 0 {
			return c > 0
		}
		return a.Name < b.Name
	})
	if len(s.TopMerchants) > maxMerchants {
		s.TopMerchants = s.TopMerchants[:maxMerchants]
	}

	s.Monthly = make([]MonthSpend, 0, len(byMonth))
	for month, total := range byMonth {
		s.Monthly = append(s.Monthly, MonthSpend{Month: month, Total: total})
	}
	sort.Slice(s.Monthly, func(i, j int) bool {
		return s.Monthly[i].Month < s.Monthly[j].Month
	})

	return s
}
