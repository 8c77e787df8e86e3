// Package itinerary recovers a JSON itinerary object from free-form model output.
//
// Models are told to answer with a single bare JSON object, but routinely wrap
// it in markdown fences, add commentary around it, or emit near-miss syntax
// such as trailing commas and arithmetic in numeric fields. Extract tolerates
// those and nothing more; anything else is an extraction failure.
package itinerary

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ecoroute/trip-planner/backend/internal/domain"
)

// Extract pulls the outermost JSON object out of raw model text, normalizes
// near-miss syntax and parses it. Failures wrap domain.ErrExtraction.
func Extract(raw string) (domain.Itinerary, error) {
	span, err := Slice(StripFences(raw))
	if err != nil {
		return nil, err
	}

	var doc domain.Itinerary
	if err := json.Unmarshal([]byte(Normalize(span)), &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrExtraction, err)
	}
	return doc, nil
}

// StripFences removes markdown code-fence markers and surrounding whitespace.
func StripFences(raw string) string {
	s := strings.ReplaceAll(raw, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// Slice returns the text from the first '{' to the last '}' inclusive,
// dropping any leading or trailing commentary.
func Slice(text string) (string, error) {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end < 0 || start > end {
		return "", fmt.Errorf("%w: no JSON object found in model output", domain.ErrExtraction)
	}
	return text[start : end+1], nil
}
