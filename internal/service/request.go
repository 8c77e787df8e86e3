package service

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/ecoroute/trip-planner/backend/internal/domain"
)

const (
	maxDestinationLen = 200
	maxPreferenceLen  = 50
	maxPreferences    = 15
	maxTravelers      = 20
	maxBudget         = 100_000_000
)

var fields = validator.New()

// ValidateTripRequest turns an arbitrary decoded JSON body into a sanitized
// TripRequest. Rules are checked in order and the first failure wins; every
// failure wraps domain.ErrValidation with a human-readable reason.
// It has no side effects, and re-validating req.Body() returns req unchanged.
func ValidateTripRequest(body any) (domain.TripRequest, error) {
	m, ok := body.(map[string]any)
	if !ok {
		return invalid("request body must be a JSON object")
	}

	var req domain.TripRequest

	rawID, present := m["tripId"]
	if !present || rawID == nil || rawID == "" {
		return invalid("tripId is required")
	}
	idStr, ok := rawID.(string)
	if !ok || fields.Var(strings.ToLower(idStr), "uuid") != nil {
		return invalid("tripId must be a valid UUID")
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return invalid("tripId must be a valid UUID")
	}
	req.TripID = id

	dest, _ := m["destination"].(string)
	dest = strings.TrimSpace(dest)
	if dest == "" {
		return invalid("destination is required")
	}
	if len([]rune(dest)) > maxDestinationLen {
		return invalid(fmt.Sprintf("destination must be at most %d characters", maxDestinationLen))
	}
	req.Destination = strings.TrimSpace(Sanitize(dest, maxDestinationLen))
	if req.Destination == "" {
		return invalid("destination is required")
	}

	if req.StartDate, err = parseDate(m, "startDate"); err != nil {
		return domain.TripRequest{}, err
	}
	if req.EndDate, err = parseDate(m, "endDate"); err != nil {
		return domain.TripRequest{}, err
	}
	if req.EndDate.Before(req.StartDate) {
		return invalid("endDate must not be before startDate")
	}
	if req.DurationDays() > domain.MaxTripDays {
		return invalid(fmt.Sprintf("trip duration must not exceed %d days", domain.MaxTripDays))
	}

	req.Travelers = 1
	if v, ok := m["travelers"]; ok && v != nil {
		n, ok := toNumber(v)
		if !ok || n != math.Trunc(n) || n < 1 || n > maxTravelers {
			return invalid(fmt.Sprintf("travelers must be an integer between 1 and %d", maxTravelers))
		}
		req.Travelers = int(n)
	}

	if v, ok := m["budget"]; ok && v != nil {
		n, ok := toNumber(v)
		if !ok || n < 0 || n > maxBudget {
			return invalid(fmt.Sprintf("budget must be a number between 0 and %d", maxBudget))
		}
		req.Budget = &n
	}

	req.Preferences = []string{}
	if v, ok := m["preferences"]; ok && v != nil {
		items, ok := v.([]any)
		if !ok {
			return invalid("preferences must be an array")
		}
		if len(items) > maxPreferences {
			return invalid(fmt.Sprintf("preferences must have at most %d entries", maxPreferences))
		}
		req.Preferences = lo.FilterMap(items, func(item any, _ int) (string, bool) {
			s, ok := item.(string)
			if !ok {
				return "", false
			}
			s = strings.TrimSpace(Sanitize(s, maxPreferenceLen))
			return s, s != ""
		})
	}

	return req, nil
}

// Sanitize truncates s to max characters and strips '<', '>', '{' and '}'.
// It is idempotent.
func Sanitize(s string, max int) string {
	if r := []rune(s); len(r) > max {
		s = string(r[:max])
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '<', '>', '{', '}':
			return -1
		}
		return r
	}, s)
}

func parseDate(m map[string]any, key string) (time.Time, error) {
	raw, present := m[key]
	if !present || raw == nil || raw == "" {
		return time.Time{}, fmt.Errorf("%w: %s is required", domain.ErrValidation, key)
	}
	s, ok := raw.(string)
	if !ok || fields.Var(s, "datetime="+domain.DateLayout) != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be a valid date (YYYY-MM-DD)", domain.ErrValidation, key)
	}
	t, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be a valid date (YYYY-MM-DD)", domain.ErrValidation, key)
	}
	return t, nil
}

// toNumber coerces JSON numbers and numeric strings to a finite float64.
func toNumber(v any) (float64, bool) {
	var n float64
	switch x := v.(type) {
	case float64:
		n = x
	case int:
		n = float64(x)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		n = f
	default:
		return 0, false
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

func invalid(reason string) (domain.TripRequest, error) {
	return domain.TripRequest{}, fmt.Errorf("%w: %s", domain.ErrValidation, reason)
}
