package handlers

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/joshua-paul-1/fintrackr/internal/api/middleware"
	"github.com/joshua-paul-1/fintrackr/internal/friends"
	"github.com/joshua-paul-1/fintrackr/internal/leaderboard"
)

// FriendsHandler handles the social graph and leaderboard endpoints.
type FriendsHandler struct {
	friends     *friends.Service
	leaderboard *leaderboard.Aggregator
	log         zerolog.Logger
}

// NewFriendsHandler creates a new friends handler.
func NewFriendsHandler(svc *friends.Service, board *leaderboard.Aggregator, log zerolog.Logger) *FriendsHandler {
	return &FriendsHandler{
		friends:     svc,
		leaderboard: board,
		log:         log,
	}
}

// SendRequest handles POST /api/friends/send-request
func (h *FriendsHandler) SendRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}

	var req struct {
		RecipientEmail string `json:"recipientEmail"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	if _, err := h.friends.SendRequest(r.Context(), id, req.RecipientEmail); err != nil {
		fail(w, r, err, "Failed to send friend request")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, statusMessage{Message: "Friend request sent successfully"})
}

// ListRequests handles GET /api/friends/requests
func (h *FriendsHandler) ListRequests(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}

	rels, err := h.friends.ListRelations(r.Context(), id)
	if err != nil {
		fail(w, r, err, "Failed to list friend requests")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, rels)
}

type requestIDBody struct {
	RequestID string `json:"requestId"`
}

// Accept handles POST /api/friends/accept
func (h *FriendsHandler) Accept(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}

	var req requestIDBody
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.friends.Accept(r.Context(), id, req.RequestID); err != nil {
		fail(w, r, err, "Failed to accept friend request")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, statusMessage{Message: "Friend request accepted"})
}

// Ignore handles POST /api/friends/ignore
func (h *FriendsHandler) Ignore(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}

	var req requestIDBody
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.friends.Ignore(r.Context(), id, req.RequestID); err != nil {
		fail(w, r, err, "Failed to ignore friend request")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, statusMessage{Message: "Friend request ignored"})
}

type leaderboardResponse struct {
	Leaderboard []leaderboard.Entry `json:"leaderboard"`
}

// Leaderboard handles GET /api/leaderboard
func (h *FriendsHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}

	entries, err := h.leaderboard.Build(r.Context(), id)
	if err != nil {
		fail(w, r, err, "Failed to build leaderboard")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, leaderboardResponse{Leaderboard: entries})
}
