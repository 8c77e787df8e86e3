package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecoroute/trip-planner/backend/internal/domain"
	"github.com/ecoroute/trip-planner/backend/internal/handler"
	"github.com/ecoroute/trip-planner/backend/internal/middleware"
)

// plannerFunc adapts a function to handler.Planner.
type plannerFunc func(ctx context.Context, authHeader string, body any) (domain.PlanResult, error)

func (f plannerFunc) Plan(ctx context.Context, authHeader string, body any) (domain.PlanResult, error) {
	return f(ctx, authHeader, body)
}

var _ handler.Planner = plannerFunc(nil)

func newPlanHandler(p handler.Planner) http.Handler {
	return handler.NewServer(p, nil, nil, nil).Routes()
}

func postItinerary(t *testing.T, h http.Handler, body string) (*httptest.ResponseRecorder, handler.PlanResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/itineraries", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer token")
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	var resp handler.PlanResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return rec, resp
}

const planBody = `{"tripId":"3f2b8c1e-9d4a-4e6f-8a7b-1c2d3e4f5a6b","destination":"Paris","startDate":"2025-06-01","endDate":"2025-06-03"}`

func TestPlanItinerary_200(t *testing.T) {
	var gotHeader string
	var gotBody any
	p := plannerFunc(func(ctx context.Context, header string, body any) (domain.PlanResult, error) {
		gotHeader, gotBody = header, body
		return domain.PlanResult{
			TripID:    uuid.New(),
			Itinerary: domain.Itinerary{"overview": "Two days in Paris"},
			Status:    domain.StatusPlanned,
		}, nil
	})

	rec, resp := postItinerary(t, newPlanHandler(p), planBody)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.Message)
	assert.Equal(t, map[string]any{"overview": "Two days in Paris"}, resp.Itinerary)
	assert.Equal(t, "Bearer token", gotHeader)
	assert.Equal(t, "Paris", gotBody.(map[string]any)["destination"])
}

func TestPlanItinerary_200_Placeholder(t *testing.T) {
	p := plannerFunc(func(context.Context, string, any) (domain.PlanResult, error) {
		ph := domain.NewItineraryError("Failed to parse AI response. Please regenerate the itinerary.", "garbage")
		return domain.PlanResult{Placeholder: &ph, Status: domain.StatusDraft}, nil
	})

	rec, resp := postItinerary(t, newPlanHandler(p), planBody)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, resp.Success)
	assert.True(t, resp.Retryable)
	assert.Contains(t, resp.Error, "regenerate")
	assert.Nil(t, resp.Itinerary)
}

func TestPlanItinerary_ErrorMapping(t *testing.T) {
	cases := []struct {
		err       error
		status    int
		retryable bool
		message   string
	}{
		{fmt.Errorf("service.PlannerService.Plan: %w: tripId is required", domain.ErrValidation), http.StatusBadRequest, false, "tripId is required"},
		{fmt.Errorf("wrap: %w", domain.ErrUnauthorized), http.StatusUnauthorized, false, ""},
		{fmt.Errorf("wrap: %w", domain.ErrForbidden), http.StatusForbidden, false, ""},
		{fmt.Errorf("wrap: %w", domain.ErrNotFound), http.StatusNotFound, false, ""},
		{fmt.Errorf("wrap: %w: quota", domain.ErrRateLimited), http.StatusTooManyRequests, true, ""},
		{fmt.Errorf("wrap: %w", domain.ErrGateway), http.StatusInternalServerError, false, ""},
		{fmt.Errorf("wrap: %w", domain.ErrPersistence), http.StatusInternalServerError, false, ""},
		{fmt.Errorf("wrap: %w", domain.ErrIdentityProvider), http.StatusInternalServerError, false, "Unable to verify credentials right now"},
	}
	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			p := plannerFunc(func(context.Context, string, any) (domain.PlanResult, error) {
				return domain.PlanResult{}, tc.err
			})

			rec, resp := postItinerary(t, newPlanHandler(p), planBody)

			assert.Equal(t, tc.status, rec.Code)
			assert.False(t, resp.Success)
			assert.Equal(t, tc.retryable, resp.Retryable)
			assert.NotEmpty(t, resp.Error)
			if tc.message != "" {
				assert.Equal(t, tc.message, resp.Error)
			}
		})
	}
}

func TestPlanItinerary_400_MalformedJSON(t *testing.T) {
	called := false
	p := plannerFunc(func(context.Context, string, any) (domain.PlanResult, error) {
		called = true
		return domain.PlanResult{}, nil
	})

	rec, resp := postItinerary(t, newPlanHandler(p), `{"tripId":`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, resp.Success)
	assert.False(t, called)
}

func TestPlanItinerary_413_BodyTooLarge(t *testing.T) {
	p := plannerFunc(func(context.Context, string, any) (domain.PlanResult, error) {
		t.Fatal("planner must not be called")
		return domain.PlanResult{}, nil
	})
	h := middleware.NewMaxBodySizeHandler(64)(newPlanHandler(p))

	// Body without Content-Length so the limit is enforced while reading.
	req := httptest.NewRequest(http.MethodPost, "/api/itineraries", strings.NewReader(`{"destination":"`+strings.Repeat("x", 200)+`"}`))
	req.ContentLength = -1
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestPlanItinerary_DetachedContext(t *testing.T) {
	p := plannerFunc(func(ctx context.Context, _ string, _ any) (domain.PlanResult, error) {
		assert.NoError(t, ctx.Err(), "planning must not inherit request cancellation")
		return domain.PlanResult{Itinerary: domain.Itinerary{}, Status: domain.StatusPlanned}, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPost, "/api/itineraries", strings.NewReader(planBody)).WithContext(ctx)
	rec := httptest.NewRecorder()

	newPlanHandler(p).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
