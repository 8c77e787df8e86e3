package service

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ecoroute/trip-planner/backend/internal/domain"
)

// systemPrompt frames every completion request.
const systemPrompt = "You are an expert sustainable travel planner. You always answer with one valid JSON object and nothing else."

// itinerarySchema is the example output embedded in every planning prompt.
const itinerarySchema = `{
  "overview": "Short summary of the trip",
  "bestTimeToVisit": "When and why",
  "ecoFriendlySpots": [
    {"name": "Place", "description": "What it is", "sustainabilityFeature": "Why it is eco-friendly"}
  ],
  "dailyItinerary": [
    {
      "day": 1,
      "title": "Theme of the day",
      "activities": [
        {"time": "09:00", "activity": "What to do", "location": "Where", "cost": 25, "ecoTip": "How to do it sustainably"}
      ]
    }
  ],
  "accommodation": {"name": "Hotel name", "type": "eco-lodge", "pricePerNight": 120, "ecoRating": "Green Key certified", "description": "Why it fits"},
  "transportation": {"gettingThere": "Train from ...", "localTransport": "Metro and bikes", "carbonFootprint": "Estimated 45 kg CO2"},
  "budgetBreakdown": {"accommodation": 360, "food": 150, "activities": 100, "transportation": 80, "total": 690},
  "packingList": ["Reusable water bottle"],
  "localTips": ["Tip"],
  "weather": {"summary": "Expected conditions", "averageTemperature": "22°C"},
  "sustainabilityTips": ["Tip"]
}`

// BuildPrompt renders a validated request into the planning instruction.
// It is a pure function of its inputs.
func BuildPrompt(req domain.TripRequest, days int) string {
	budget := "flexible"
	if req.Budget != nil {
		budget = strconv.FormatFloat(*req.Budget, 'f', -1, 64) + " (total for the whole trip)"
	}

	interests := "General sightseeing"
	if len(req.Preferences) > 0 {
		interests = strings.Join(req.Preferences, ", ")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Create a detailed, eco-friendly travel itinerary for a trip to %s.\n\n", req.Destination)
	b.WriteString("Trip details:\n")
	fmt.Fprintf(&b, "- Dates: %s to %s (%s)\n",
		req.StartDate.Format(domain.DateLayout), req.EndDate.Format(domain.DateLayout), plural(days, "day", "days"))
	fmt.Fprintf(&b, "- Travelers: %s\n", plural(req.Travelers, "traveler", "travelers"))
	fmt.Fprintf(&b, "- Budget: %s\n", budget)
	fmt.Fprintf(&b, "- Interests: %s\n\n", interests)

	b.WriteString("Respond with a single JSON object that follows this structure exactly (field names and shapes):\n")
	b.WriteString(itinerarySchema)
	b.WriteString("\n\nRules:\n")
	fmt.Fprintf(&b, "- dailyItinerary must contain exactly %s, numbered from 1.\n", plural(days, "entry", "entries"))
	b.WriteString("- Every cost, price and budget field must be a plain number such as 1380. ")
	b.WriteString("Never write arithmetic expressions (230 * 6), currency symbols, units or parenthetical notes (2000 (Taxi fare)) in numeric fields.\n")
	b.WriteString("- Prefer low-carbon transport, locally owned businesses and certified sustainable accommodation.\n")
	b.WriteString("- Do not use markdown or code fences. Return only the JSON object, with no text before or after it.\n")
	return b.String()
}

// repairPrompt asks the model to fix its own malformed output, which is
// quoted verbatim.
func repairPrompt(raw string) string {
	return "The following is invalid JSON. Return the corrected JSON only, preserving its structure and content. " +
		"All numeric fields must be plain numbers: evaluate any arithmetic and drop any parenthetical notes. " +
		"Do not use markdown or code fences.\n\n" + raw
}

func plural(n int, one, many string) string {
	if n == 1 {
		return "1 " + one
	}
	return fmt.Sprintf("%d %s", n, many)
}
