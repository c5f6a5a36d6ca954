package server

import (
	"errors"
	"net/http"

	"github.com/jonathan/applicant-tracker/internal/tracking"
)

// mapServiceError translates the tracking error taxonomy to HTTP status
// codes. Transition and validation errors are surfaced verbatim.
func mapServiceError(err error) (int, string) {
	var notFound *tracking.ErrNotFound
	if errors.As(err, &notFound) {
		return http.StatusNotFound, notFound.Error()
	}

	var invalidTransition *tracking.ErrInvalidTransition
	if errors.As(err, &invalidTransition) {
		return http.StatusConflict, invalidTransition.Error()
	}

	var invalidRating *tracking.ErrInvalidRating
	if errors.As(err, &invalidRating) {
		return http.StatusBadRequest, invalidRating.Error()
	}

	var duplicate *tracking.ErrDuplicateApplication
	if errors.As(err, &duplicate) {
		return http.StatusConflict, duplicate.Error()
	}

	var notAccepting *tracking.ErrJobNotAcceptingApplications
	if errors.As(err, &notAccepting) {
		return http.StatusConflict, notAccepting.Error()
	}

	var forbidden *tracking.ErrForbidden
	if errors.As(err, &forbidden) {
		return http.StatusForbidden, forbidden.Error()
	}

	var invalidApplication *tracking.ErrInvalidApplication
	if errors.As(err, &invalidApplication) {
		return http.StatusBadRequest, invalidApplication.Error()
	}

	return http.StatusInternalServerError, "internal server error"
}
