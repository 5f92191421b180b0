package models

import "errors"

// Error taxonomy shared across services and handlers. Handlers translate
// these to HTTP statuses; anything unrecognized becomes a generic 500.
var (
	ErrValidation      = errors.New("invalid input")
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("access to this resource is forbidden")
	ErrConflict        = errors.New("duplicate unique field")
	ErrNotFound        = errors.New("resource not found")
	ErrRateLimited     = errors.New("too many attempts, try again later")
	ErrStorage         = errors.New("failed to store uploaded file")
	ErrAnalysisFailed  = errors.New("analysis failed")
)
