// Package apiserver contains the REST handlers served by the API
// server. Handlers decode and validate input shape, delegate to the
// services and translate service errors to HTTP statuses; all policy
// lives in the services.
package apiserver

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"studychat/internal/apperrors"
)

// ErrorResponse is the JSON body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSONResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	writeJSONResponse(w, statusCode, ErrorResponse{Error: message})
}

// writeServiceError maps a service error to its HTTP status. Internal
// errors are logged with their cause and reported with a generic body.
func writeServiceError(w http.ResponseWriter, err error) {
	switch apperrors.CodeOf(err) {
	case apperrors.CodeValidation:
		writeJSONError(w, err.Error(), http.StatusBadRequest)
	case apperrors.CodeConflict:
		writeJSONError(w, err.Error(), http.StatusConflict)
	case apperrors.CodeNotFound:
		writeJSONError(w, err.Error(), http.StatusNotFound)
	case apperrors.CodePermissionDenied:
		writeJSONError(w, err.Error(), http.StatusForbidden)
	case apperrors.CodeUnauthenticated:
		writeJSONError(w, err.Error(), http.StatusUnauthorized)
	default:
		log.Printf("internal error: %v", err)
		writeJSONError(w, "internal server error", http.StatusInternalServerError)
	}
}

// parseUintVar reads a numeric path variable.
func parseUintVar(r *http.Request, name string) (uint, bool) {
	value, ok := mux.Vars(r)[name]
	if !ok {
		return 0, false
	}
	parsed, err := strconv.ParseUint(value, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(parsed), true
}
