package domain

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// DateLayout is the wire format for trip dates (YYYY-MM-DD).
const DateLayout = "2006-01-02"

// MaxTripDays is the longest trip the planner accepts.
const MaxTripDays = 90

// TripRequest is a validated, sanitized planning request. It is built per call
// from caller-supplied JSON and never persisted directly.
type TripRequest struct {
	TripID      uuid.UUID
	Destination string
	StartDate   time.Time
	EndDate     time.Time
	Travelers   int
	Budget      *float64 // nil means flexible
	Preferences []string
}

// DurationDays returns ceil((end-start) / 1 day). A same-day trip is 0.
func (r TripRequest) DurationDays() int {
	return int(math.Ceil(r.EndDate.Sub(r.StartDate).Hours() / 24))
}

// Body renders the request back into its decoded-JSON wire shape.
// Feeding the result to the validator yields the same TripRequest.
func (r TripRequest) Body() map[string]any {
	prefs := make([]any, len(r.Preferences))
	for i, p := range r.Preferences {
		prefs[i] = p
	}
	body := map[string]any{
		"tripId":      r.TripID.String(),
		"destination": r.Destination,
		"startDate":   r.StartDate.Format(DateLayout),
		"endDate":     r.EndDate.Format(DateLayout),
		"travelers":   float64(r.Travelers),
		"budget":      nil,
		"preferences": prefs,
	}
	if r.Budget != nil {
		body["budget"] = *r.Budget
	}
	return body
}
