// Package httputil centralizes JSON encoding, decoding, and domain error
// translation for the HTTP handlers.
package httputil

import (
	"encoding/json"
	"net/http"

	domainerrors "lpa/pkg/domain-errors"
)

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error       string            `json:"error"`
	Description string            `json:"error_description,omitempty"`
	Fields      map[string]string `json:"fields,omitempty"`
}

// WriteError renders a coded error envelope. Internal errors keep their
// message out of the response body.
func WriteError(w http.ResponseWriter, err error) {
	de := domainerrors.AsError(err)
	body := errorBody{Error: string(de.Code), Fields: de.Fields}
	if de.Code != domainerrors.CodeInternal {
		body.Description = de.Message
	}
	WriteJSON(w, domainerrors.HTTPStatus(de), body)
}

// Decode unmarshals a JSON request body, mapping malformed payloads to a
// bad-request domain error.
func Decode[T any](r *http.Request) (T, error) {
	var v T
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		return v, domainerrors.Wrap(domainerrors.CodeBadRequest, "malformed request body", err)
	}
	return v, nil
}
