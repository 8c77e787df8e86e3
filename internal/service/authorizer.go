package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/ecoroute/trip-planner/backend/internal/auth"
	"github.com/ecoroute/trip-planner/backend/internal/domain"
)

// IdentityVerifier resolves a bearer token to a caller identity.
// Implemented by auth.JWTVerifier and auth.SupabaseVerifier.
type IdentityVerifier interface {
	Verify(ctx context.Context, token string) (domain.Identity, error)
}

// OwnerLookup returns the owning user of a trip, or domain.ErrNotFound.
type OwnerLookup interface {
	OwnerOf(ctx context.Context, tripID uuid.UUID) (uuid.UUID, error)
}

// Authorizer establishes who the caller is and whether they own a trip.
type Authorizer struct {
	verifier IdentityVerifier
	owners   OwnerLookup
}

// NewAuthorizer constructs an Authorizer.
func NewAuthorizer(v IdentityVerifier, owners OwnerLookup) *Authorizer {
	return &Authorizer{verifier: v, owners: owners}
}

// Authenticate resolves the Authorization header to an identity.
// Missing, malformed or rejected credentials wrap domain.ErrUnauthorized.
// A provider outage keeps domain.ErrIdentityProvider.
func (a *Authorizer) Authenticate(ctx context.Context, header string) (domain.Identity, error) {
	token, err := auth.BearerToken(header)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("service.Authorizer.Authenticate: %w", err)
	}
	id, err := a.verifier.Verify(ctx, token)
	if err != nil {
		if !errors.Is(err, domain.ErrUnauthorized) && !errors.Is(err, domain.ErrIdentityProvider) {
			err = fmt.Errorf("%w: %w", domain.ErrUnauthorized, err)
		}
		return domain.Identity{}, fmt.Errorf("service.Authorizer.Authenticate: %w", err)
	}
	return id, nil
}

// Authorize authenticates the caller and then checks that they own tripID.
// Ownership is never looked up before identity is established.
func (a *Authorizer) Authorize(ctx context.Context, header string, tripID uuid.UUID) (domain.Identity, error) {
	id, err := a.Authenticate(ctx, header)
	if err != nil {
		return domain.Identity{}, err
	}

	owner, err := a.owners.OwnerOf(ctx, tripID)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("service.Authorizer.Authorize: %w", err)
	}
	if owner != id.UserID {
		return domain.Identity{}, fmt.Errorf("service.Authorizer.Authorize: %w: trip belongs to another user", domain.ErrForbidden)
	}
	return id, nil
}
