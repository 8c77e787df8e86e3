package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/ecoroute/trip-planner/backend/internal/domain"
)

var validate = validator.New()

// CreateTripRequest is the body of POST /api/trips.
type CreateTripRequest struct {
	Title       string             `json:"title" validate:"required"`
	Destination string             `json:"destination" validate:"required"`
	StartDate   openapi_types.Date `json:"start_date"`
	EndDate     openapi_types.Date `json:"end_date"`
	Travelers   int                `json:"travelers,omitempty"`
	Budget      *float64           `json:"budget,omitempty"`
	Preferences []string           `json:"preferences,omitempty"`
}

// Trip is the API representation of a trip record.
type Trip struct {
	ID          openapi_types.UUID `json:"id"`
	Title       string             `json:"title"`
	Destination string             `json:"destination"`
	StartDate   openapi_types.Date `json:"start_date"`
	EndDate     openapi_types.Date `json:"end_date"`
	Travelers   int                `json:"travelers"`
	Budget      *float64           `json:"budget"`
	Preferences []string           `json:"preferences"`
	Status      string             `json:"status"`
	AIItinerary json.RawMessage    `json:"ai_itinerary"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// Pagination describes the page returned by a list endpoint.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

// TripList is the body of GET /api/trips.
type TripList struct {
	Data       []Trip     `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// CreateTrip handles POST /api/trips.
func (s *Server) CreateTrip(w http.ResponseWriter, r *http.Request) {
	var body CreateTripRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		msg := "request body must be valid JSON"
		var dateErr *time.ParseError
		if errors.As(err, &dateErr) {
			msg = "start_date and end_date must be dates in YYYY-MM-DD format"
		}
		writeJSON(w, http.StatusBadRequest, errorBody("validation_error", msg))
		return
	}
	trip, err := requestToTrip(body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("validation_error", err.Error()))
		return
	}
	trip.UserID = identityFrom(r.Context()).UserID

	created, err := s.trips.Create(r.Context(), trip)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			writeJSON(w, http.StatusBadRequest, validationBody(err))
			return
		}
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, tripToResponse(created))
}

// ListTrips handles GET /api/trips.
// Supports ?page= and ?limit= query parameters (defaults: page=1, limit=20, max=100).
func (s *Server) ListTrips(w http.ResponseWriter, r *http.Request) {
	params := domain.NewPaginationParams(queryInt(r, "page"), queryInt(r, "limit"))
	trips, total, err := s.trips.ListPaged(r.Context(), identityFrom(r.Context()).UserID, params)
	if err != nil {
		s.internalError(w, r, err)
		return
	}

	data := make([]Trip, len(trips))
	for i, t := range trips {
		data[i] = tripToResponse(t)
	}
	writeJSON(w, http.StatusOK, TripList{
		Data:       data,
		Pagination: Pagination{Page: params.Page, Limit: params.Limit, Total: int(total)},
	})
}

// GetTrip handles GET /api/trips/{id}.
func (s *Server) GetTrip(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	trip, err := s.trips.GetByID(r.Context(), identityFrom(r.Context()).UserID, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, notFoundBody("trip not found"))
			return
		}
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tripToResponse(trip))
}

// DeleteTrip handles DELETE /api/trips/{id}.
func (s *Server) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.trips.Delete(r.Context(), identityFrom(r.Context()).UserID, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, notFoundBody("trip not found"))
			return
		}
		s.internalError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	s.log.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	writeJSON(w, http.StatusInternalServerError, errorBody("internal_error", "internal server error"))
}

// --- mapping helpers --------------------------------------------------------

// requestToTrip converts a CreateTripRequest into a domain.Trip.
// Returns an error if required fields are missing. Malformed dates never get
// this far; openapi_types.Date rejects them while decoding.
func requestToTrip(body CreateTripRequest) (domain.Trip, error) {
	if err := validate.Struct(body); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return domain.Trip{}, fieldError(fieldErrs[0])
		}
		return domain.Trip{}, err
	}
	// A zero Date means the field was absent.
	if body.StartDate.IsZero() {
		return domain.Trip{}, errors.New("start_date is required")
	}
	if body.EndDate.IsZero() {
		return domain.Trip{}, errors.New("end_date is required")
	}
	return domain.Trip{
		Title:       body.Title,
		Destination: body.Destination,
		StartDate:   body.StartDate.Time,
		EndDate:     body.EndDate.Time,
		Travelers:   body.Travelers,
		Budget:      body.Budget,
		Preferences: body.Preferences,
	}, nil
}

func fieldError(fe validator.FieldError) error {
	return errors.New(jsonFieldNames[fe.Field()] + " is " + fe.Tag())
}

var jsonFieldNames = map[string]string{
	"Title":       "title",
	"Destination": "destination",
}

// tripToResponse converts a domain.Trip into its API representation.
func tripToResponse(t domain.Trip) Trip {
	prefs := t.Preferences
	if prefs == nil {
		prefs = []string{}
	}
	itinerary := t.AIItinerary
	if len(itinerary) == 0 {
		itinerary = json.RawMessage("null")
	}
	return Trip{
		ID:          t.ID,
		Title:       t.Title,
		Destination: t.Destination,
		StartDate:   openapi_types.Date{Time: t.StartDate},
		EndDate:     openapi_types.Date{Time: t.EndDate},
		Travelers:   t.Travelers,
		Budget:      t.Budget,
		Preferences: prefs,
		Status:      string(t.Status),
		AIItinerary: itinerary,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// pathID parses the {id} URL parameter, writing a 400 response when it is not a UUID.
func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("validation_error", "id must be a valid UUID"))
		return uuid.Nil, false
	}
	return id, true
}

// queryInt returns the named query parameter as an int, or nil when it is
// absent or not a number.
func queryInt(r *http.Request, key string) *int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return nil
	}
	return &n
}
