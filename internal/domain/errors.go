package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist, or exists but is not visible to the caller.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned when caller input fails validation
// (e.g. malformed tripId, end date before start date).
// Handlers should map this to HTTP 400. Never retried.
var ErrValidation = errors.New("validation error")

// ErrUnauthorized is returned when the bearer credential is missing, malformed,
// or rejected by the identity provider. Handlers should map this to HTTP 401.
var ErrUnauthorized = errors.New("unauthorized")

// ErrForbidden is returned when an authenticated caller does not own the trip.
// Handlers should map this to HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrGateway is returned when the completion gateway cannot be reached, answers
// with a non-success status, returns an undecodable body, or exceeds its deadline.
// Handlers should map this to HTTP 500.
var ErrGateway = errors.New("gateway error")

// ErrRateLimited is returned when the gateway reports a transient capacity
// problem (RESOURCE_EXHAUSTED / 429). Handlers should map this to HTTP 429 and
// mark the response retryable.
var ErrRateLimited = errors.New("rate limited")

// ErrExtraction is returned when no JSON object can be recovered from model output.
// It triggers the single repair round-trip and is never surfaced to callers directly.
var ErrExtraction = errors.New("extraction error")

// ErrPersistence is returned when writing the itinerary back to the trip fails,
// either because no row matched or because the store reported an error.
// Handlers should map this to HTTP 500.
var ErrPersistence = errors.New("persistence error")

// ErrIdentityProvider is returned when the identity provider cannot be reached
// to check a credential. Unlike ErrUnauthorized it says nothing about the
// credential itself. Handlers should map this to HTTP 500.
var ErrIdentityProvider = errors.New("identity provider unavailable")
