// Package identity maps bearer credentials to a caller identity.
package identity

import (
	"context"
	"errors"
	"strings"

	"github.com/joshua-paul-1/fintrackr/internal/domain"
)

// Resolver maps an opaque bearer token to an identity. Every failure is
// reported as domain.ErrUnauthorized.
type Resolver interface {
	Resolve(ctx context.Context, token string) (domain.Identity, error)
}

// Chain tries each resolver in order and returns the first identity resolved.
type Chain []Resolver

// Resolve implements Resolver.
func (c Chain) Resolve(ctx context.Context, token string) (domain.Identity, error) {
	if token == "" {
		return domain.Identity{}, domain.ErrUnauthorized
	}

	var errs []error
	for _, r := range c {
		id, err := r.Resolve(ctx, token)
		if err == nil {
			return id, nil
		}
		if ctx.Err() != nil {
			return domain.Identity{}, unauthorized(ctx.Err())
		}
		errs = append(errs, err)
	}

	return domain.Identity{}, unauthorized(errors.Join(errs...))
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

func unauthorized(err error) error {
	return &domain.Error{Kind: domain.KindUnauthorized, Message: "Invalid token", Err: err}
}
