// Package auth establishes caller identity from bearer credentials.
// Two verifiers are provided: JWTVerifier checks HS256 access tokens locally
// against the project's JWT secret; SupabaseVerifier asks the Supabase auth
// service to resolve the token.
package auth

import (
	"fmt"
	"strings"

	"github.com/ecoroute/trip-planner/backend/internal/domain"
)

// BearerToken extracts the token from an Authorization header value of the
// form "Bearer <token>". The scheme is matched case-insensitively.
func BearerToken(header string) (string, error) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", fmt.Errorf("%w: missing bearer credential", domain.ErrUnauthorized)
	}
	token = strings.TrimSpace(token)
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", fmt.Errorf("%w: malformed bearer credential", domain.ErrUnauthorized)
	}
	return token, nil
}
