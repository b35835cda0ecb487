package handlers

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/joshua-paul-1/fintrackr/internal/api/middleware"
	"github.com/joshua-paul-1/fintrackr/internal/budget"
	"github.com/joshua-paul-1/fintrackr/internal/domain"
)

// BudgetHandler handles budget endpoints.
type BudgetHandler struct {
	budgets *budget.Service
	log     zerolog.Logger
}

// NewBudgetHandler creates a new budget handler.
func NewBudgetHandler(budgets *budget.Service, log zerolog.Logger) *BudgetHandler {
	return &BudgetHandler{
		budgets: budgets,
		log:     log,
	}
}

type setBudgetResponse struct {
	Status       string          `json:"status"`
	Message      string          `json:"message"`
	BudgetAmount decimal.Decimal `json:"budgetAmount"`
	BudgetPeriod domain.Period   `json:"budgetPeriod"`
}

// SetBudget handles POST /api/set-budget
func (h *BudgetHandler) SetBudget(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}

	var req struct {
		BudgetAmount decimal.NullDecimal `json:"budgetAmount"`
		BudgetPeriod string              `json:"budgetPeriod"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if !req.BudgetAmount.Valid {
		middleware.WriteDomainError(w, domain.Validation("Budget amount is required and must be positive"))
		return
	}

	res, err := h.budgets.Set(r.Context(), id.Subject, req.BudgetAmount.Decimal, req.BudgetPeriod)
	if err != nil {
		fail(w, r, err, "Failed to set budget")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, setBudgetResponse{
		Status:       "success",
		Message:      res.Message,
		BudgetAmount: res.Budget.Amount,
		BudgetPeriod: res.Budget.Period,
	})
}

type getBudgetResponse struct {
	Status  string         `json:"status"`
	Message string         `json:"message,omitempty"`
	Budget  *domain.Budget `json:"budget,omitempty"`
}

// GetBudget handles GET /api/get-budget
func (h *BudgetHandler) GetBudget(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}

	b, err := h.budgets.Get(r.Context(), id.Subject)
	if errors.Is(err, domain.ErrNotFound) {
		middleware.WriteJSON(w, http.StatusOK, getBudgetResponse{
			Status:  "not_found",
			Message: "No budget set for this user",
		})
		return
	}
	if err != nil {
		fail(w, r, err, "Failed to get budget")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, getBudgetResponse{Status: "success", Budget: b})
}

type budgetStatusResponse struct {
	Status       string         `json:"status"`
	BudgetStatus budget.Status  `json:"budgetStatus"`
	Budget       *domain.Budget `json:"budget"`
}

// BudgetStatus handles GET /api/budget-status
func (h *BudgetHandler) BudgetStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}

	status, b, err := h.budgets.Status(r.Context(), id.Subject)
	if err != nil {
		fail(w, r, err, "Failed to get budget status")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, budgetStatusResponse{
		Status:       "success",
		BudgetStatus: status,
		Budget:       b,
	})
}
