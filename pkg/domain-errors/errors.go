// Package domainerrors carries coded, user-facing errors from services to the
// transport layer. Infrastructure facts live in pkg/platform/sentinel; this
// package is for errors the caller is expected to act on.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeBadRequest        Code = "bad_request"
	CodeUnauthorized      Code = "unauthorized"
	CodeNotFound          Code = "not_found"
	CodeDuplicate         Code = "duplicate_submission"
	CodeIncompleteAnswers Code = "incomplete_answers"
	CodeStoreUnavailable  Code = "store_unavailable"
	CodeInternal          Code = "internal"
)

// Error pairs a machine-readable code with a human-readable message. Fields
// holds optional structured detail (e.g. the first unanswered question id) so
// clients can act without parsing the message.
type Error struct {
	Code    Code              `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
	wrapped error
}

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches an underlying cause without leaking it into the message.
func Wrap(code Code, message string, err error) *Error {
	return &Error{Code: code, Message: message, wrapped: err}
}

// WithField returns a copy of the error carrying one structured detail field.
func (e *Error) WithField(key, value string) *Error {
	fields := make(map[string]string, len(e.Fields)+1)
	for k, v := range e.Fields {
		fields[k] = v
	}
	fields[key] = value
	return &Error{Code: e.Code, Message: e.Message, Fields: fields, wrapped: e.wrapped}
}

func (e *Error) Error() string {
	if e.wrapped != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.wrapped)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.wrapped }

// Is reports whether err (or anything it wraps) carries the given code.
func Is(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// HTTPStatus maps an error code to its response status. Unknown errors are 500s.
func HTTPStatus(err error) int {
	var de *Error
	if !errors.As(err, &de) {
		return http.StatusInternalServerError
	}
	switch de.Code {
	case CodeBadRequest:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeNotFound:
		return http.StatusNotFound
	case CodeDuplicate:
		return http.StatusConflict
	case CodeIncompleteAnswers:
		return http.StatusUnprocessableEntity
	case CodeStoreUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// AsError extracts the coded error, or wraps err as an internal one so the
// transport layer always has a code to render.
func AsError(err error) *Error {
	var de *Error
	if errors.As(err, &de) {
		return de
	}
	return &Error{Code: CodeInternal, Message: "internal error", wrapped: err}
}
