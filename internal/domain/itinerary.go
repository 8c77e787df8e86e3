package domain

import "github.com/google/uuid"

// Itinerary is a parsed, well-formed itinerary object as produced by the model:
// overview, bestTimeToVisit, ecoFriendlySpots, dailyItinerary, accommodation,
// transportation, budgetBreakdown, packingList, localTips, weather,
// sustainabilityTips. It is stored opaquely.
type Itinerary map[string]any

// ItineraryError is the placeholder document persisted when no itinerary could
// be recovered. It keeps the trip in a defined, displayable state.
type ItineraryError struct {
	Error      string  `json:"error"`
	RawContent *string `json:"rawContent"`
}

// NewItineraryError builds a placeholder; an empty raw string is stored as null.
func NewItineraryError(message, raw string) ItineraryError {
	e := ItineraryError{Error: message}
	if raw != "" {
		e.RawContent = &raw
	}
	return e
}

// PlanResult is the outcome of one planning invocation.
// Exactly one of Itinerary or Placeholder is set.
type PlanResult struct {
	TripID      uuid.UUID
	Itinerary   Itinerary
	Placeholder *ItineraryError
	Status      TripStatus
	Repaired    bool // true when the repair round-trip produced the itinerary
}

// Document returns whichever document variant was produced.
func (p PlanResult) Document() any {
	if p.Placeholder != nil {
		return p.Placeholder
	}
	return p.Itinerary
}

// Failed reports whether the plan ended with the error placeholder.
func (p PlanResult) Failed() bool {
	return p.Placeholder != nil
}
