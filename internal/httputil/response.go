package httputil

import (
	"encoding/json"
	"log"
	"net/http"
)

// Envelope is the JSON shape every endpoint responds with.
type Envelope struct {
	Success bool     `json:"success"`
	Message string   `json:"message,omitempty"`
	Data    any      `json:"data,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

// RespondJSON sends a raw JSON response with the given status code.
// Logs encoding errors to avoid silent failures.
func RespondJSON(w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("ERROR: failed to encode JSON response: %v", err)
	}
}

// RespondData sends a success envelope wrapping the given payload.
func RespondData(w http.ResponseWriter, data any, statusCode int) {
	RespondJSON(w, Envelope{Success: true, Data: data}, statusCode)
}

// RespondMessage sends a success envelope carrying only a message.
func RespondMessage(w http.ResponseWriter, message string, statusCode int) {
	RespondJSON(w, Envelope{Success: true, Message: message}, statusCode)
}

// RespondError sends a failure envelope with the given message and status code.
func RespondError(w http.ResponseWriter, message string, statusCode int) {
	RespondJSON(w, Envelope{Success: false, Message: message}, statusCode)
}

// RespondValidationErrors sends a failure envelope with per-field messages.
func RespondValidationErrors(w http.ResponseWriter, message string, errs []string, statusCode int) {
	RespondJSON(w, Envelope{Success: false, Message: message, Errors: errs}, statusCode)
}
