package httputil

import (
	"encoding/json"
	"net/http"

	dErrors "smartsearch/pkg/domain-errors"
)

// WriteJSON serializes v with a status code. Encoding failures are silently
// dropped because the header is already committed.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError maps a domain error to an HTTP error response. Internal error
// details never leak to callers; every other code includes the domain message
// as error_description.
func WriteError(w http.ResponseWriter, err error) {
	status := dErrors.HTTPStatus(err)
	body := map[string]string{
		"error": string(dErrors.CodeOf(err)),
	}
	if status != http.StatusInternalServerError {
		if msg := dErrors.MessageOf(err); msg != "" {
			body["error_description"] = msg
		}
	}
	WriteJSON(w, status, body)
}
