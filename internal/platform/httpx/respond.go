// Package httpx provides JSON response utilities and the standard error
// envelope shared by every endpoint.
package httpx

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/nimbus-hr/nimbus-hr/internal/shared"
)

// ErrorBody is the error half of the standard envelope.
type ErrorBody struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Path       string `json:"path"`
	Timestamp  string `json:"timestamp"`
}

// Meta carries the request identifiers of the current context scope.
type Meta struct {
	CorrelationID string `json:"correlationId"`
	RequestID     string `json:"requestId"`
}

// ErrorEnvelope is the body rendered for every failed request.
type ErrorEnvelope struct {
	Error ErrorBody `json:"error"`
	Meta  Meta      `json:"meta"`
}

// JSON sends a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// Error renders the standard error envelope, pulling correlation and request
// ids from the request's context scope.
func Error(w http.ResponseWriter, r *http.Request, status int, message string) {
	rc := shared.RequestContextFrom(r.Context())
	JSON(w, status, ErrorEnvelope{
		Error: ErrorBody{
			StatusCode: status,
			Message:    message,
			Path:       r.URL.Path,
			Timestamp:  time.Now().UTC().Format(time.RFC3339),
		},
		Meta: Meta{
			CorrelationID: rc.CorrelationID(),
			RequestID:     rc.RequestID(),
		},
	})
}

// DecodeJSON decodes the request body into target.
func DecodeJSON(r *http.Request, target any) error {
	return json.NewDecoder(r.Body).Decode(target)
}
