// internal/common/http/response.go
package http

import (
	"encoding/json"
	"net/http"

	"gemini-gateway/internal/models"
)

// WriteJSON encodes v as the response body with the given status.
func WriteJSON(w http.ResponseWriter, status int, v interface{}) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

// WriteOutput writes a 200 {"output": text} body.
func WriteOutput(w http.ResponseWriter, text string) error {
	return WriteJSON(w, http.StatusOK, models.GenerationResult{Output: text})
}

// WriteErrorMessage writes a {"error": message} body.
func WriteErrorMessage(w http.ResponseWriter, status int, message string) error {
	return WriteJSON(w, status, models.ErrorResult{Error: message})
}
