package identity

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/idtoken"

	"github.com/joshua-paul-1/fintrackr/internal/domain"
)

// Validator verifies a Google ID token for an audience.
type Validator interface {
	Validate(ctx context.Context, token, audience string) (*idtoken.Payload, error)
}

type validatorFunc func(ctx context.Context, token, audience string) (*idtoken.Payload, error)

func (f validatorFunc) Validate(ctx context.Context, token, audience string) (*idtoken.Payload, error) {
	return f(ctx, token, audience)
}

// Google resolves Google ID tokens issued for the configured client id.
type Google struct {
	clientID  string
	validator Validator
}

// NewGoogle creates a resolver that verifies tokens against Google's public keys.
func NewGoogle(clientID string) *Google {
	return NewGoogleWithValidator(clientID, validatorFunc(idtoken.Validate))
}

// NewGoogleWithValidator creates a resolver with a custom validator.
func NewGoogleWithValidator(clientID string, v Validator) *Google {
	return &Google{clientID: clientID, validator: v}
}

// Resolve implements Resolver.
func (g *Google) Resolve(ctx context.Context, token string) (domain.Identity, error) {
	if g.clientID == "" {
		return domain.Identity{}, unauthorized(errors.New("google sign-in is not configured"))
	}

	payload, err := g.validator.Validate(ctx, token, g.clientID)
	if err != nil {
		return domain.Identity{}, unauthorized(fmt.Errorf("failed to validate google token: %w", err))
	}
	if payload.Subject == "" {
		return domain.Identity{}, unauthorized(errors.New("google token has no subject"))
	}

	id := domain.Identity{Subject: payload.Subject}
	id.Email, _ = payload.Claims["email"].(string)
	id.Name, _ = payload.Claims["name"].(string)
	id.Picture, _ = payload.Claims["picture"].(string)

	if verified, ok := payload.Claims["email_verified"].(bool); ok && !verified {
		return domain.Identity{}, unauthorized(errors.New("google email is not verified"))
	}

	return id, nil
}

var _ Resolver = (*Google)(nil)
