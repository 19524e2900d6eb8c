// Package apperr defines the error classes shared by every service. Callers
// match them with errors.Is; the HTTP layer maps each class to a status code.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrPolicyViolation = errors.New("policy violation")
	ErrConflict        = errors.New("already exists")
	ErrBadCredential   = errors.New("wrong credentials provided")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrInvalidInput    = errors.New("invalid input")
)

// Error carries a user-visible message on top of one of the sentinel classes.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func New(kind error, message string) error {
	return &Error{Kind: kind, Message: message}
}

func Newf(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func NotFound(message string) error        { return New(ErrNotFound, message) }
func PolicyViolation(message string) error { return New(ErrPolicyViolation, message) }
func Conflict(message string) error        { return New(ErrConflict, message) }
func BadCredential(message string) error   { return New(ErrBadCredential, message) }
func Unauthorized(message string) error    { return New(ErrUnauthorized, message) }
func InvalidInput(message string) error    { return New(ErrInvalidInput, message) }

// HTTPStatus maps an error to its response code. Unclassified errors are internal.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrPolicyViolation):
		return http.StatusForbidden
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrBadCredential), errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the text safe to show a client.
func Message(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	if HTTPStatus(err) == http.StatusInternalServerError {
		return "something went wrong"
	}
	return err.Error()
}
