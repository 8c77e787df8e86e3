package itinerary_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecoroute/trip-planner/backend/internal/itinerary"
)

func TestNormalize_Multiplication(t *testing.T) {
	got := itinerary.Normalize(`{"hotel": 230 * 6, "food": 1.5*3}`)

	assert.Equal(t, `{"hotel": 1380, "food": 5}`, got)
}

func TestNormalize_ParentheticalNote(t *testing.T) {
	got := itinerary.Normalize(`{"taxi": 2000 (Taxi fare), "bus": 40 (day pass)}`)

	assert.Equal(t, `{"taxi": 2000, "bus": 40}`, got)
}

func TestNormalize_TrailingCommas(t *testing.T) {
	got := itinerary.Normalize("{\"a\": [1, 2,\n], \"b\": {\"c\": 1, },}")

	var v map[string]any
	require.NoError(t, json.Unmarshal([]byte(got), &v))
	assert.Equal(t, []any{1.0, 2.0}, v["a"])
	assert.Equal(t, map[string]any{"c": 1.0}, v["b"])
}

func TestNormalize_ControlCharacters(t *testing.T) {
	got := itinerary.Normalize("{\"a\": \"line\x01one\nnext\",\x00 \"b\": \"del\x7f\"}")

	var v map[string]any
	require.NoError(t, json.Unmarshal([]byte(got), &v))
	assert.Equal(t, "lineonenext", v["a"])
	assert.Equal(t, "del", v["b"])
}

// String contents are opaque to the value rewrites, even when they contain
// something that looks like a member value.
func TestNormalize_LeavesStringsAlone(t *testing.T) {
	inputs := []string{
		`{"note": "cost is 2 * 3 apples"}`,
		`{"note": "x: 2 * 3, y"}`,
		`{"note": "fare: 2000 (Taxi fare), ok"}`,
		`{"note": "tricky \": 4 * 5, \" quote"}`,
		`{"note": "brace: 7 (x)}"}`,
		`{"list": ["a, ]", "b,}"]}`,
	}
	for _, in := range inputs {
		assert.Equal(t, in, itinerary.Normalize(in), "input %q", in)
	}
}

func TestNormalize_NarrowRewritesOnly(t *testing.T) {
	inputs := []string{
		`{"a": 2 * 3 * 4}`,         // more than two operands
		`{"a": 2 * x}`,             // non-numeric operand
		`{"a": 2000 (Taxi) extra}`, // note not followed by a separator
		`{"a": [230 * 6]}`,         // array element, not a member value
		`{"a": "5" * 2}`,           // string operand
	}
	for _, in := range inputs {
		assert.Equal(t, in, itinerary.Normalize(in), "input %q", in)
	}
}

func TestNormalize_ValidJSONRoundTrips(t *testing.T) {
	in := `{
  "overview": "Three days in Paris: food, art (and a river cruise).",
  "budgetBreakdown": {"accommodation": 1200, "food": 450.5, "total": -3e2},
  "dailyItinerary": [{"day": 1, "activities": [{"cost": 0, "tip": "a * b"}]}],
  "packingList": ["shoes", "umbrella"],
  "weather": {"note": "\"mild\" \\ 20C"}
}`
	var want, got any
	require.NoError(t, json.Unmarshal([]byte(in), &want))
	require.NoError(t, json.Unmarshal([]byte(itinerary.Normalize(in)), &got))
	assert.Equal(t, want, got)
}

func TestNormalize_MultiplicationRoundsHalfUp(t *testing.T) {
	assert.Equal(t, `{"a": 3, "b": -4}`, itinerary.Normalize(`{"a": 2.5 * 1, "b": -4.5 * 1}`))
}

func TestNormalize_OverflowingProductLeftAlone(t *testing.T) {
	in := `{"a": 1e308 * 10}`

	assert.Equal(t, in, itinerary.Normalize(in))
}
