package metrics_test

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecoroute/trip-planner/backend/internal/metrics"
)

func TestCollector_ExposesRecordedMetrics(t *testing.T) {
	c := metrics.NewCollector("planner")

	c.PlanOutcome("planned")
	c.PlanOutcome("placeholder")
	c.GatewayCall("primary", 1200*time.Millisecond, nil)
	c.GatewayCall("repair", 300*time.Millisecond, errors.New("boom"))

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	out := string(body)
	assert.Contains(t, out, `planner_itinerary_plans_total{outcome="planned"} 1`)
	assert.Contains(t, out, `planner_itinerary_plans_total{outcome="placeholder"} 1`)
	assert.Contains(t, out, `planner_gateway_calls_total{result="error",stage="repair"} 1`)
	assert.Contains(t, out, `planner_gateway_call_duration_seconds_count{stage="primary"} 1`)
}

func TestNewCollector_Twice(t *testing.T) {
	assert.NotPanics(t, func() {
		metrics.NewCollector("a")
		metrics.NewCollector("a")
	})
}
