// Package apperrors defines the error kinds shared by repositories, services
// and HTTP handlers. Callers wrap them with fmt.Errorf("...: %w", kind) and
// classify with errors.Is.
package apperrors

import (
	"errors"
	"net/http"
)

var (
	ErrUnauthenticated   = errors.New("unauthenticated")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrNotFound          = errors.New("not found")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrValidation        = errors.New("validation failed")
	ErrConflict          = errors.New("conflict")
)

// Kind pairs an error kind with its HTTP status and wire code.
type Kind struct {
	Err    error
	Status int
	Code   string
}

var kinds = []Kind{
	{ErrUnauthenticated, http.StatusUnauthorized, "UNAUTHENTICATED"},
	{ErrUnauthorized, http.StatusForbidden, "UNAUTHORIZED"},
	{ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
	{ErrInvalidTransition, http.StatusUnprocessableEntity, "INVALID_TRANSITION"},
	{ErrValidation, http.StatusBadRequest, "VALIDATION_ERROR"},
	{ErrConflict, http.StatusConflict, "CONFLICT"},
}

// Classify returns the kind err belongs to. Unclassified errors are internal.
func Classify(err error) Kind {
	for _, k := range kinds {
		if errors.Is(err, k.Err) {
			return k
		}
	}
	return Kind{Err: err, Status: http.StatusInternalServerError, Code: "INTERNAL"}
}
