package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/joshua-paul-1/fintrackr/internal/api/middleware"
	"github.com/joshua-paul-1/fintrackr/internal/domain"
	"github.com/joshua-paul-1/fintrackr/internal/pipeline"
)

// Purger removes all stored data of a user.
type Purger interface {
	Purge(ctx context.Context, ownerID string) (pipeline.PurgeResult, error)
}

// TransactionsHandler handles transaction-related endpoints.
type TransactionsHandler struct {
	transactions domain.TransactionStore
	purger       Purger
	log          zerolog.Logger
}

// NewTransactionsHandler creates a new transactions handler.
func NewTransactionsHandler(transactions domain.TransactionStore, purger Purger, log zerolog.Logger) *TransactionsHandler {
	return &TransactionsHandler{
		transactions: transactions,
		purger:       purger,
		log:          log,
	}
}

// ListTransactions handles GET /api/transactions
func (h *TransactionsHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}

	ledger, err := h.transactions.GetLedger(r.Context(), id.Subject)
	if errors.Is(err, domain.ErrNotFound) {
		middleware.WriteJSON(w, http.StatusOK, []domain.Ledger{})
		return
	}
	if err != nil {
		fail(w, r, domain.Upstream("Error fetching transactions", err), "Failed to fetch transactions")
		return
	}

	// Return array directly for frontend compatibility
	middleware.WriteJSON(w, http.StatusOK, []domain.Ledger{*ledger})
}

type deleteResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	pipeline.PurgeResult
}

// DeleteTransactions handles DELETE /api/delete-transactions
func (h *TransactionsHandler) DeleteTransactions(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}

	res, err := h.purger.Purge(r.Context(), id.Subject)
	if err != nil {
		fail(w, r, err, "Failed to delete transactions")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, deleteResponse{
		Status:      "success",
		Message:     "All transactions and PDFs deleted successfully",
		PurgeResult: res,
	})
}
