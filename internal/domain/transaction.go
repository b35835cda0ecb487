package domain

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

func init() {
	// Clients read totals and budgets as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// Transaction is one statement line owned by a user. Transactions are appended
// to a user's ledger and never mutated in place.
type Transaction struct {
	MerchantName string          `json:"name"`
	Total        decimal.Decimal `json:"total"`
	Count        int             `json:"count"`
	Date         *civil.Date     `json:"date"`
	Time         *civil.Time     `json:"time"`
	UploadedAt   time.Time       `json:"uploadDate"`
}

// Ledger is the per-user transaction document.
type Ledger struct {
	OwnerID      string        `json:"sub"`
	Transactions []Transaction `json:"transactions"`
	LastUpdate   time.Time     `json:"lastUpdate"`
}

// AppendResult describes the outcome of an atomic ledger append.
type AppendResult struct {
	Created  bool
	Appended int
}

// TotalSpending sums the totals of txs.
func TotalSpending(txs []Transaction) decimal.Decimal {
	sum := decimal.Zero
	for _, tx := range txs {
		sum = sum.Add(tx.Total)
	}
	return sum
}
