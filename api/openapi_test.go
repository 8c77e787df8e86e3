package api_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecoroute/trip-planner/backend/api"
)

func TestHandler_ServesDocument(t *testing.T) {
	rec := httptest.NewRecorder()
	api.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/openapi.yaml", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/yaml", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.Contains(t, body, "openapi: 3.0.3")
	for _, path := range []string{"/healthz:", "/api/itineraries:", "/api/trips:", "/api/trips/{id}:"} {
		assert.Contains(t, body, path)
	}
}
