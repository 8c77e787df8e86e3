package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ecoroute/trip-planner/backend/internal/domain"
)

const itinerarySavedMessage = "Itinerary generated successfully"

// PlanResponse is the body of POST /api/itineraries. Success responses carry
// Itinerary and Message; failures carry Error and, when the caller should try
// again, Retryable.
type PlanResponse struct {
	Success   bool   `json:"success"`
	Itinerary any    `json:"itinerary,omitempty"`
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
}

// PlanItinerary handles POST /api/itineraries.
//
// The planning call runs on a context detached from the request so a client
// disconnect cannot abandon it between the gateway call and the write back.
// The gateway's own deadline still bounds it.
func (s *Server) PlanItinerary(w http.ResponseWriter, r *http.Request) {
	var body any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, PlanResponse{Error: "request body too large"})
			return
		}
		writeJSON(w, http.StatusBadRequest, PlanResponse{Error: "request body must be valid JSON"})
		return
	}

	result, err := s.planner.Plan(context.WithoutCancel(r.Context()), r.Header.Get("Authorization"), body)
	if err != nil {
		status, resp := planFailure(err)
		if status >= http.StatusInternalServerError {
			s.log.ErrorContext(r.Context(), "itinerary planning failed", "error", err)
		}
		writeJSON(w, status, resp)
		return
	}

	if result.Failed() {
		writeJSON(w, http.StatusOK, PlanResponse{Error: result.Placeholder.Error, Retryable: true})
		return
	}
	writeJSON(w, http.StatusOK, PlanResponse{
		Success:   true,
		Itinerary: result.Itinerary,
		Message:   itinerarySavedMessage,
	})
}

// planFailure maps a planner error to its HTTP status and response body.
func planFailure(err error) (int, PlanResponse) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, PlanResponse{Error: unwrapMessage(err)}
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, PlanResponse{Error: "Unauthorized"}
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, PlanResponse{Error: "You do not have access to this trip"}
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, PlanResponse{Error: "Trip not found"}
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests, PlanResponse{
			Error:     "The AI service is busy. Please try again in a moment.",
			Retryable: true,
		}
	case errors.Is(err, domain.ErrIdentityProvider):
		return http.StatusInternalServerError, PlanResponse{Error: "Unable to verify credentials right now"}
	case errors.Is(err, domain.ErrPersistence):
		return http.StatusInternalServerError, PlanResponse{Error: "Failed to save itinerary"}
	default:
		return http.StatusInternalServerError, PlanResponse{Error: "Failed to generate itinerary"}
	}
}
