package services

import "errors"

// Sentinel errors returned by the service layer. Handlers map them onto HTTP
// status codes; everything else is treated as an internal error.
var (
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("permission denied")
	ErrUnauthenticated = errors.New("authentication required")
	ErrConflict        = errors.New("already exists")
	ErrValidation      = errors.New("invalid argument")
)
