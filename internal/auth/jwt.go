package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/ecoroute/trip-planner/backend/internal/domain"
)

// accessClaims are the claims carried by a Supabase-style access token.
// The subject is the user id.
type accessClaims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// JWTVerifier validates HS256 access tokens signed with a shared secret.
type JWTVerifier struct {
	secret   []byte
	audience string
}

// NewJWTVerifier returns a verifier for tokens signed with secret. When
// audience is non-empty the token's aud claim must contain it.
func NewJWTVerifier(secret, audience string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret), audience: audience}
}

// Verify parses and validates token and returns the caller identity.
// Every failure wraps domain.ErrUnauthorized.
func (v *JWTVerifier) Verify(_ context.Context, token string) (domain.Identity, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	claims := &accessClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.Identity{}, fmt.Errorf("%w: token expired", domain.ErrUnauthorized)
		}
		return domain.Identity{}, fmt.Errorf("%w: invalid token: %w", domain.ErrUnauthorized, err)
	}
	if !parsed.Valid {
		return domain.Identity{}, fmt.Errorf("%w: invalid token", domain.ErrUnauthorized)
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("%w: token subject is not a user id", domain.ErrUnauthorized)
	}
	return domain.Identity{UserID: id, Email: claims.Email}, nil
}
