package handlers

import (
	"net/http"
	"strings"

	"github.com/joshua-paul-1/fintrackr/internal/api/middleware"
)

// Public paths are served without a bearer credential.
const (
	PathHealth      = "/health"
	PathGoogleLogin = "/auth/google"
)

// PublicPaths lists the routes that skip authentication.
var PublicPaths = []string{PathHealth, PathGoogleLogin}

// Handlers groups every endpoint handler.
type Handlers struct {
	Auth         *AuthHandler
	Documents    *DocumentsHandler
	Transactions *TransactionsHandler
	Budget       *BudgetHandler
	Friends      *FriendsHandler
	Jobs         *JobsHandler
	Analytics    *AnalyticsHandler
}

// route registers a handler that only accepts method.
func route(mux *http.ServeMux, path, method string, h http.HandlerFunc) {
	mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == method {
			h(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})
}

// NewRouter creates the API mux.
func NewRouter(h Handlers) *http.ServeMux {
	mux := http.NewServeMux()

	// Auth endpoints
	route(mux, PathGoogleLogin, http.MethodPost, h.Auth.GoogleLogin)

	// Statement endpoints
	route(mux, "/api/upload-pdf", http.MethodPost, h.Documents.UploadPDF)
	route(mux, "/api/reprocess-pdf", http.MethodPost, h.Documents.ReprocessPDF)

	// Transactions endpoints
	route(mux, "/api/transactions", http.MethodGet, h.Transactions.ListTransactions)
	route(mux, "/api/delete-transactions", http.MethodDelete, h.Transactions.DeleteTransactions)

	// Budget endpoints
	route(mux, "/api/set-budget", http.MethodPost, h.Budget.SetBudget)
	route(mux, "/api/get-budget", http.MethodGet, h.Budget.GetBudget)
	route(mux, "/api/budget-status", http.MethodGet, h.Budget.BudgetStatus)

	// Friends endpoints
	route(mux, "/api/friends/send-request", http.MethodPost, h.Friends.SendRequest)
	route(mux, "/api/friends/requests", http.MethodGet, h.Friends.ListRequests)
	route(mux, "/api/friends/accept", http.MethodPost, h.Friends.Accept)
	route(mux, "/api/friends/ignore", http.MethodPost, h.Friends.Ignore)
	route(mux, "/api/leaderboard", http.MethodGet, h.Friends.Leaderboard)

	// Jobs endpoints
	route(mux, "/api/jobs", http.MethodGet, h.Jobs.ListJobs)
	mux.HandleFunc("/api/jobs/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			// Extract job ID from path
			jobID := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
			if jobID == "" {
				middleware.WriteError(w, http.StatusBadRequest, "Job ID is required")
				return
			}
			h.Jobs.GetJob(w, r, jobID)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	route(mux, "/api/analytics", http.MethodGet, h.Analytics.GetAnalytics)

	// Health check endpoint
	mux.HandleFunc(PathHealth, Health)

	return mux
}
