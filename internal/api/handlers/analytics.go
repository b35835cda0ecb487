package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/joshua-paul-1/fintrackr/internal/analytics"
	"github.com/joshua-paul-1/fintrackr/internal/api/middleware"
)

// Analyzer produces an analytics report for a user.
type Analyzer interface {
	Analyze(ctx context.Context, ownerID string) (*analytics.Report, error)
}

// AnalyticsHandler serves AI spending insights. A nil analyzer means the
// feature is disabled.
type AnalyticsHandler struct {
	analyzer Analyzer
	log      zerolog.Logger
}

// NewAnalyticsHandler creates a new analytics handler.
func NewAnalyticsHandler(analyzer Analyzer, log zerolog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyzer: analyzer,
		log:      log,
	}
}

type analyticsResponse struct {
	Status    string            `json:"status"`
	Message   string            `json:"message,omitempty"`
	Analytics *analytics.Report `json:"analytics"`
}

// GetAnalytics handles GET /api/analytics
func (h *AnalyticsHandler) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}

	if h.analyzer == nil {
		middleware.WriteError(w, http.StatusNotFound, "Analytics is not enabled")
		return
	}

	report, err := h.analyzer.Analyze(r.Context(), id.Subject)
	if err != nil {
		fail(w, r, err, "Failed to generate analytics")
		return
	}

	if report == nil {
		middleware.WriteJSON(w, http.StatusOK, analyticsResponse{
			Status:  "success",
			Message: "No transactions available for analysis",
		})
		return
	}

	middleware.WriteJSON(w, http.StatusOK, analyticsResponse{Status: "success", Analytics: report})
}

// Health handles GET /health
func Health(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}
