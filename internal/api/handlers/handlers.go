// Package handlers implements the FinTrackr HTTP endpoints.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/joshua-paul-1/fintrackr/internal/api/middleware"
	"github.com/joshua-paul-1/fintrackr/internal/domain"
	"github.com/joshua-paul-1/fintrackr/internal/logger"
)

// maxJSONBody bounds JSON request bodies.
const maxJSONBody = 1 << 20

// caller returns the authenticated identity or writes a 401.
func caller(w http.ResponseWriter, r *http.Request) (domain.Identity, bool) {
	id, ok := domain.IdentityFromContext(r.Context())
	if !ok {
		middleware.WriteDomainError(w, domain.ErrUnauthorized)
		return domain.Identity{}, false
	}
	return id, true
}

// decodeJSON reads a JSON body into dst or writes a 400.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody)).Decode(dst)
	if err != nil && !errors.Is(err, io.EOF) {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// fail logs err once with the request logger and writes the matching response.
func fail(w http.ResponseWriter, r *http.Request, err error, msg string) {
	log := logger.FromContext(r.Context())
	if middleware.StatusFor(domain.KindOf(err)) >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", r.URL.Path).Msg(msg)
	} else {
		log.Info().Err(err).Str("path", r.URL.Path).Msg(msg)
	}
	middleware.WriteDomainError(w, err)
}

// statusMessage is the common success body.
type statusMessage struct {
	Status  string `json:"status,omitempty"`
	Message string `json:"message"`
}
