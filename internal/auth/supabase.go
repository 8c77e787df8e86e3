package auth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/supabase-community/supabase-go"

	"github.com/ecoroute/trip-planner/backend/internal/domain"
)

// SupabaseVerifier resolves tokens through the Supabase auth service.
type SupabaseVerifier struct {
	client *supabase.Client
}

// NewSupabaseVerifier creates a Supabase client for the project at url.
// Use the service role key so the backend can validate any user's token.
func NewSupabaseVerifier(url, serviceKey string) (*SupabaseVerifier, error) {
	client, err := supabase.NewClient(url, serviceKey, nil)
	if err != nil {
		return nil, fmt.Errorf("auth.NewSupabaseVerifier: %w", err)
	}
	return &SupabaseVerifier{client: client}, nil
}

// Verify asks the auth service who owns token. Rejections wrap
// domain.ErrUnauthorized; failing to reach the service wraps
// domain.ErrIdentityProvider.
func (v *SupabaseVerifier) Verify(_ context.Context, token string) (domain.Identity, error) {
	// GetUser takes no context; the request is bounded by the client's own timeout.
	user, err := v.client.Auth.WithToken(token).GetUser()
	if err != nil {
		if providerFailure(err) {
			return domain.Identity{}, fmt.Errorf("auth.SupabaseVerifier.Verify: %w: %w", domain.ErrIdentityProvider, err)
		}
		return domain.Identity{}, fmt.Errorf("%w: token rejected: %w", domain.ErrUnauthorized, err)
	}
	if user == nil || user.ID == uuid.Nil {
		return domain.Identity{}, fmt.Errorf("%w: token has no user", domain.ErrUnauthorized)
	}
	return domain.Identity{UserID: user.ID, Email: user.Email}, nil
}

// providerFailure reports whether a GetUser error came from the transport or a
// 5xx answer rather than a rejected token. gotrue returns *url.Error for the
// former and "response status code N: body" for any non-2xx status.
func providerFailure(err error) bool {
	var transport *url.Error
	if errors.As(err, &transport) {
		return true
	}
	return strings.HasPrefix(err.Error(), "response status code 5")
}
