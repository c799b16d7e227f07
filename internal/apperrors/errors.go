// Package apperrors defines the error kinds shared by the services and the
// HTTP layer. Producers wrap a kind with fmt.Errorf("%w: ...") and callers
// classify with errors.Is.
package apperrors

import (
	"errors"
	"net/http"
)

var (
	ErrValidation        = errors.New("validation error")
	ErrNotFound          = errors.New("not found")
	ErrSignatureMismatch = errors.New("payment signature mismatch")
	ErrStorage           = errors.New("storage error")
	ErrGateway           = errors.New("payment gateway error")
	ErrNotification      = errors.New("notification error")
)

// HTTPStatus maps an error to the status code returned to clients.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrSignatureMismatch):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the message safe to show to a client. Server side
// failures get a generic message so no internal detail leaks.
func PublicMessage(err error) string {
	if HTTPStatus(err) >= http.StatusInternalServerError {
		switch {
		case errors.Is(err, ErrGateway):
			return "Payment service unavailable"
		default:
			return "Internal server error"
		}
	}
	return err.Error()
}
