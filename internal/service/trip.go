// Package service contains the business logic for the trip planner API.
// Services validate inputs, enforce business rules, and orchestrate repo and
// gateway calls. No SQL lives here; services depend on interfaces.
package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/ecoroute/trip-planner/backend/internal/domain"
	"github.com/ecoroute/trip-planner/backend/internal/repo"
)

const maxTitleLen = 200

// TripService implements owner-scoped business logic for trip records.
type TripService struct {
	repo repo.TripRepo
}

// NewTripService constructs a TripService backed by the provided TripRepo.
func NewTripService(r repo.TripRepo) *TripService {
	return &TripService{repo: r}
}

// Create validates and persists a new draft trip owned by trip.UserID.
func (s *TripService) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	trip.Title = strings.TrimSpace(Sanitize(strings.TrimSpace(trip.Title), maxTitleLen))
	if trip.Title == "" {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w: title is required", domain.ErrValidation)
	}
	trip.Destination = strings.TrimSpace(Sanitize(strings.TrimSpace(trip.Destination), maxDestinationLen))
	if trip.Destination == "" {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w: destination is required", domain.ErrValidation)
	}
	if trip.StartDate.IsZero() || trip.EndDate.IsZero() {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w: start_date and end_date are required", domain.ErrValidation)
	}
	if trip.EndDate.Before(trip.StartDate) {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w: end_date must not be before start_date", domain.ErrValidation)
	}
	if trip.Travelers == 0 {
		trip.Travelers = 1
	}
	if trip.Travelers < 1 || trip.Travelers > maxTravelers {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w: travelers must be between 1 and %d", domain.ErrValidation, maxTravelers)
	}
	if trip.Budget != nil && (*trip.Budget < 0 || *trip.Budget > maxBudget) {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w: budget must be between 0 and %d", domain.ErrValidation, maxBudget)
	}
	if len(trip.Preferences) > maxPreferences {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w: at most %d preferences", domain.ErrValidation, maxPreferences)
	}
	prefs := make([]string, 0, len(trip.Preferences))
	for _, p := range trip.Preferences {
		if p = strings.TrimSpace(Sanitize(p, maxPreferenceLen)); p != "" {
			prefs = append(prefs, p)
		}
	}
	trip.Preferences = prefs
	trip.Status = domain.StatusDraft
	trip.AIItinerary = nil

	created, err := s.repo.Create(ctx, trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", err)
	}
	return created, nil
}

// GetByID returns one of the owner's trips.
func (s *TripService) GetByID(ctx context.Context, ownerID, id uuid.UUID) (domain.Trip, error) {
	trip, err := s.repo.GetByID(ctx, ownerID, id)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.GetByID: %w", err)
	}
	return trip, nil
}

// ListPaged returns one page of the owner's trips and the owner's total trip count.
func (s *TripService) ListPaged(ctx context.Context, ownerID uuid.UUID, params domain.PaginationParams) ([]domain.Trip, int64, error) {
	trips, total, err := s.repo.ListPaged(ctx, ownerID, params)
	if err != nil {
		return nil, 0, fmt.Errorf("service.TripService.ListPaged: %w", err)
	}
	if trips == nil {
		trips = []domain.Trip{}
	}
	return trips, total, nil
}

// Delete removes one of the owner's trips.
func (s *TripService) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, ownerID, id); err != nil {
		return fmt.Errorf("service.TripService.Delete: %w", err)
	}
	return nil
}
