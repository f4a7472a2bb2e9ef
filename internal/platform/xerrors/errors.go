// Package xerrors defines the domain error taxonomy shared by all services.
// Expected domain conditions are reported as sentinel errors so callers can
// branch with errors.Is instead of string matching.
package xerrors

import (
	"errors"
	"net/http"
)

var (
	// ErrNotFound reports an unknown id (test, center, add-on, code, grant...).
	ErrNotFound = errors.New("not found")
	// ErrMalformed reports a badly shaped assessment code or numeric input.
	ErrMalformed = errors.New("malformed input")
	// ErrExpired reports an assessment code or grant past its validity window.
	ErrExpired = errors.New("expired")
	// ErrAlreadyUsed reports an assessment code that was already redeemed.
	ErrAlreadyUsed = errors.New("already used")
	// ErrInvalidInput reports an out-of-range amount or a guarded division.
	ErrInvalidInput = errors.New("invalid input")
	// ErrExternalFailure reports a verification/payment/notification
	// collaborator error.
	ErrExternalFailure = errors.New("external collaborator failure")
	// ErrConflict reports a state transition that is not allowed from the
	// record's current state.
	ErrConflict = errors.New("conflict")
)

// HTTPStatus maps a domain error to the status code handlers should return.
// Unrecognized errors map to 500.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrMalformed), errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrExpired), errors.Is(err, ErrAlreadyUsed):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrExternalFailure):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
