package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/joshua-paul-1/fintrackr/internal/domain"
)

const tokenTypeSession = "session"

// Claims are the FinTrackr session token claims.
type Claims struct {
	jwt.RegisteredClaims
	Email     string `json:"email"`
	Name      string `json:"name,omitempty"`
	Picture   string `json:"picture,omitempty"`
	TokenType string `json:"typ"`
}

// Sessions issues and verifies HS256 session tokens.
type Sessions struct {
	secretKey []byte
	ttl       time.Duration
	issuer    string
	now       func() time.Time
}

// NewSessions creates a session token manager.
func NewSessions(secretKey string, ttl time.Duration, issuer string) *Sessions {
	return &Sessions{
		secretKey: []byte(secretKey),
		ttl:       ttl,
		issuer:    issuer,
		now:       time.Now,
	}
}

// Issue signs a session token for id.
func (s *Sessions) Issue(id domain.Identity) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.Subject,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Email:     id.Email,
		Name:      id.Name,
		Picture:   id.Picture,
		TokenType: tokenTypeSession,
	})

	tokenString, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign session token: %w", err)
	}

	return tokenString, expiresAt, nil
}

// Resolve implements Resolver.
func (s *Sessions) Resolve(ctx context.Context, tokenString string) (domain.Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("wrong signing method %v", t.Header["alg"])
		}
		return s.secretKey, nil
	},
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return domain.Identity{}, unauthorized(fmt.Errorf("failed to parse session token: %w", err))
	}
	if !token.Valid {
		return domain.Identity{}, unauthorized(errors.New("session token is invalid"))
	}
	if claims.TokenType != tokenTypeSession {
		return domain.Identity{}, unauthorized(fmt.Errorf("token type mismatch: %s", claims.TokenType))
	}
	if claims.Subject == "" {
		return domain.Identity{}, unauthorized(errors.New("session token has no subject"))
	}

	return domain.Identity{
		Subject: claims.Subject,
		Email:   claims.Email,
		Name:    claims.Name,
		Picture: claims.Picture,
	}, nil
}

var _ Resolver = (*Sessions)(nil)
