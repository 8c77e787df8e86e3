package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ecoroute/trip-planner/backend/internal/domain"
)

// ErrorResponse is the error envelope used by the trip routes.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries a machine-readable code and a human-readable message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func errorBody(code, message string) ErrorResponse {
	return ErrorResponse{Error: ErrorDetail{Code: code, Message: message}}
}

// notFoundBody returns an ErrorResponse for a missing resource.
// The caller supplies the message because the handler knows what was being
// looked up.
func notFoundBody(message string) ErrorResponse {
	return errorBody("not_found", message)
}

// validationBody returns an ErrorResponse for a domain validation failure.
func validationBody(err error) ErrorResponse {
	return errorBody("validation_error", unwrapMessage(err))
}

// writeJSON encodes v with the given status. Encoding errors are ignored
// because the status line has already been sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// unwrapMessage extracts the human-readable part from a wrapped validation error.
// e.g. "service.PlannerService.Plan: validation error: tripId is required" → "tripId is required"
func unwrapMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	marker := domain.ErrValidation.Error() + ": "
	if i := strings.LastIndex(msg, marker); i >= 0 {
		return msg[i+len(marker):]
	}
	return msg
}
