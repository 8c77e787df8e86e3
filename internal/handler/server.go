// Package handler implements the HTTP handlers for the trip planner API.
// All handlers are methods on Server and are registered on a chi router by
// Routes. Methods are split into files per resource (health.go,
// itinerary.go, trip.go) but share the same Server struct.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ecoroute/trip-planner/backend/internal/domain"
)

// Planner runs one itinerary planning invocation. Implemented by
// *service.PlannerService.
type Planner interface {
	Plan(ctx context.Context, authHeader string, body any) (domain.PlanResult, error)
}

// TripServicer defines the owner-scoped trip operations the trip handlers use.
// Defining the interface here (in the consumer package) lets handler tests
// inject a mock without touching the database or service layer.
type TripServicer interface {
	Create(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	GetByID(ctx context.Context, ownerID, id uuid.UUID) (domain.Trip, error)
	ListPaged(ctx context.Context, ownerID uuid.UUID, params domain.PaginationParams) ([]domain.Trip, int64, error)
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
}

// Authenticator resolves an Authorization header to a caller identity.
// Implemented by *service.Authorizer.
type Authenticator interface {
	Authenticate(ctx context.Context, header string) (domain.Identity, error)
}

// Server holds the dependencies shared by every handler.
type Server struct {
	planner Planner
	trips   TripServicer
	authn   Authenticator
	log     *slog.Logger
}

// NewServer constructs the Server with all its dependencies.
func NewServer(planner Planner, trips TripServicer, authn Authenticator, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{planner: planner, trips: trips, authn: authn, log: log}
}

// Routes returns a router with every API endpoint registered.
// Cross-cutting middleware (request id, logging, CORS, body limits) is applied
// by the caller.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/healthz", s.GetHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/itineraries", s.PlanItinerary)

		r.Route("/trips", func(r chi.Router) {
			r.Use(s.requireIdentity)
			r.Post("/", s.CreateTrip)
			r.Get("/", s.ListTrips)
			r.Get("/{id}", s.GetTrip)
			r.Delete("/{id}", s.DeleteTrip)
		})
	})
	return r
}

type identityKey struct{}

// requireIdentity authenticates the caller and stores the identity in the
// request context. Unauthenticated requests get 401; a provider outage gets 500.
func (s *Server) requireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := s.authn.Authenticate(r.Context(), r.Header.Get("Authorization"))
		if errors.Is(err, domain.ErrIdentityProvider) {
			s.internalError(w, r, err)
			return
		}
		if err != nil {
			s.log.DebugContext(r.Context(), "authentication failed", "error", err)
			writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized", "missing or invalid bearer token"))
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), identityKey{}, id)))
	})
}

// identityFrom returns the identity stored by requireIdentity.
func identityFrom(ctx context.Context) domain.Identity {
	id, _ := ctx.Value(identityKey{}).(domain.Identity)
	return id
}
