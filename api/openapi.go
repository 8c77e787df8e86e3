// Package api embeds the OpenAPI document for the trip planner API.
// The HTTP server serves it at /openapi.yaml.
package api

import (
	_ "embed"
	"net/http"
)

// OpenAPI contains the raw bytes of openapi.yaml, embedded at compile time.
//
//go:embed openapi.yaml
var OpenAPI []byte

// Handler serves the embedded document.
func Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(OpenAPI)
	})
}
