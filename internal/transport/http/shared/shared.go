// Package shared centralizes JSON response writing so every handler emits the
// same envelopes.
package shared

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "github.com/NoahSaso/checkmark/pkg/domain-errors"
)

// WriteJSON writes a JSON body with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteSuccess writes the plain success envelope.
func WriteSuccess(w http.ResponseWriter) {
	WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// WriteError translates a domain error into its HTTP status and error
// envelope. Uncoded errors surface as opaque internal errors.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	message := "internal server error"
	var coded *dErrors.Error
	if errors.As(err, &coded) {
		message = coded.Message
	}
	if code == dErrors.CodeInternal || code == dErrors.CodeInvariantViolation {
		// Do not leak internals; operators read the logs.
		message = "internal server error"
	}
	WriteJSON(w, dErrors.ToHTTPStatus(code), map[string]string{"error": message})
}
