package api

import (
	"errors"
	"net/http"

	"github.com/BobDeng1974/DNNCam/internal/backend"
	"github.com/BobDeng1974/DNNCam/internal/registers"
)

// API error codes.
const (
	CodeInvalidRange = "INVALID_RANGE"
	CodeUnavailable  = "UNAVAILABLE"
	CodeBadRequest   = "BAD_REQUEST"
	CodeInternal     = "INTERNAL"
)

// toAPIError maps a store error to an HTTP status, code and message.
func toAPIError(err error) (int, string, string) {
	switch {
	case errors.Is(err, registers.ErrOutOfRange):
		return http.StatusBadRequest, CodeInvalidRange, "Address outside the register range"
	case errors.Is(err, backend.ErrTimeout):
		return http.StatusServiceUnavailable, CodeUnavailable, "Lens controller timed out"
	case errors.Is(err, backend.ErrFault):
		return http.StatusServiceUnavailable, CodeUnavailable, "Lens controller rejected the command"
	case errors.Is(err, registers.ErrRemoteUnavailable):
		return http.StatusServiceUnavailable, CodeUnavailable, "Lens controller unavailable"
	default:
		return http.StatusInternalServerError, CodeInternal, "Internal server error"
	}
}
