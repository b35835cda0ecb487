package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/joshua-paul-1/fintrackr/internal/api/middleware"
	"github.com/joshua-paul-1/fintrackr/internal/domain"
	"github.com/joshua-paul-1/fintrackr/internal/identity"
)

// SessionIssuer signs FinTrackr session tokens.
type SessionIssuer interface {
	Issue(id domain.Identity) (string, time.Time, error)
}

// AuthHandler exchanges a Google credential for a session token.
type AuthHandler struct {
	google   identity.Resolver
	sessions SessionIssuer
	log      zerolog.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(google identity.Resolver, sessions SessionIssuer, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		google:   google,
		sessions: sessions,
		log:      log,
	}
}

type loginResponse struct {
	Message   string          `json:"message"`
	User      domain.Identity `json:"user"`
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expiresAt"`
}

// GoogleLogin handles POST /auth/google
func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AccessToken string `json:"accessToken"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	token := strings.TrimSpace(req.AccessToken)
	if token == "" {
		middleware.WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	id, err := h.google.Resolve(r.Context(), token)
	if err != nil {
		h.log.Info().Err(err).Msg("Google sign-in rejected")
		middleware.WriteError(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	session, expiresAt, err := h.sessions.Issue(id)
	if err != nil {
		h.log.Error().Err(err).Str("sub", id.Subject).Msg("Failed to issue session token")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to sign in")
		return
	}

	h.log.Info().Str("sub", id.Subject).Msg("User signed in")

	middleware.WriteJSON(w, http.StatusOK, loginResponse{
		Message:   "Google authentication successful",
		User:      id,
		Token:     session,
		ExpiresAt: expiresAt,
	})
}
