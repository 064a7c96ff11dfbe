// Package apperrors holds the failure categories the assessment core reports
// to its callers. Callers match them with errors.Is.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
	ErrConflict   = errors.New("conflict")
	ErrValidation = errors.New("validation failed")

	// ErrAttemptsExhausted is reported when a learner has used every attempt a
	// quiz allows.
	ErrAttemptsExhausted = fmt.Errorf("%w: no attempts remaining", ErrForbidden)

	// ErrQuizLinked is reported when a quiz already belongs to another lesson
	ErrQuizLinked = fmt.Errorf("%w: quiz already belongs to another lesson", ErrConflict)
)

// HTTPStatus maps an error onto the status code the presentation layer answers with.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrValidation):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
