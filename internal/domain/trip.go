// Package domain contains the core data types for the trip planner.
// This package has no dependencies on other internal packages and is imported
// by every other internal package (repo, service, handler).
package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// TripStatus is the lifecycle state of a trip record.
type TripStatus string

const (
	StatusDraft     TripStatus = "draft"
	StatusPlanned   TripStatus = "planned"
	StatusActive    TripStatus = "active"
	StatusCompleted TripStatus = "completed"
)

// Trip is a caller-owned travel record. The itinerary planner only reads
// UserID and writes AIItinerary and Status; everything else belongs to the
// trip CRUD endpoints.
type Trip struct {
	ID          uuid.UUID       `json:"id"`
	UserID      uuid.UUID       `json:"user_id"`
	Title       string          `json:"title"`
	Destination string          `json:"destination"`
	StartDate   time.Time       `json:"start_date"`
	EndDate     time.Time       `json:"end_date"`
	Travelers   int             `json:"travelers"`
	Budget      *float64        `json:"budget,omitempty"`
	Preferences []string        `json:"preferences"`
	Status      TripStatus      `json:"status"`
	AIItinerary json.RawMessage `json:"ai_itinerary,omitempty"` // nil until a plan has been generated
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Identity is the authenticated caller, as established from a bearer credential.
type Identity struct {
	UserID uuid.UUID
	Email  string
}
