package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecoroute/trip-planner/backend/internal/service"
)

func TestBuildPrompt_Details(t *testing.T) {
	req, err := service.ValidateTripRequest(parisBody())
	require.NoError(t, err)

	p := service.BuildPrompt(req, req.DurationDays())

	assert.Contains(t, p, "trip to Paris")
	assert.Contains(t, p, "2025-06-01 to 2025-06-03 (2 days)")
	assert.Contains(t, p, "Travelers: 2 travelers")
	assert.Contains(t, p, "Budget: 1500 (total for the whole trip)")
	assert.Contains(t, p, "Interests: food, museums")
	assert.Contains(t, p, "exactly 2 entries")
}

func TestBuildPrompt_Defaults(t *testing.T) {
	body := parisBody()
	body["endDate"] = "2025-06-02"
	delete(body, "travelers")
	delete(body, "budget")
	delete(body, "preferences")
	req, err := service.ValidateTripRequest(body)
	require.NoError(t, err)

	p := service.BuildPrompt(req, req.DurationDays())

	assert.Contains(t, p, "(1 day)")
	assert.Contains(t, p, "Travelers: 1 traveler\n")
	assert.Contains(t, p, "Budget: flexible")
	assert.Contains(t, p, "Interests: General sightseeing")
	assert.Contains(t, p, "exactly 1 entry")
}

func TestBuildPrompt_Constraints(t *testing.T) {
	req, err := service.ValidateTripRequest(parisBody())
	require.NoError(t, err)

	p := service.BuildPrompt(req, 2)

	for _, field := range []string{
		"overview", "bestTimeToVisit", "ecoFriendlySpots", "dailyItinerary", "accommodation",
		"transportation", "budgetBreakdown", "packingList", "localTips", "weather", "sustainabilityTips",
	} {
		assert.Contains(t, p, `"`+field+`"`)
	}
	assert.Contains(t, p, "plain number")
	assert.Contains(t, p, "230 * 6")
	assert.Contains(t, p, "Do not use markdown or code fences")
}

func TestBuildPrompt_Pure(t *testing.T) {
	req, err := service.ValidateTripRequest(parisBody())
	require.NoError(t, err)

	assert.Equal(t, service.BuildPrompt(req, 2), service.BuildPrompt(req, 2))
}
