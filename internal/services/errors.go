package services

import "errors"

// Sentinel errors shared by the service layer. Handlers translate these
// into the matching HTTP responses; everything else is a 500.
var (
	ErrNotFound           = errors.New("not found")
	ErrDuplicate          = errors.New("already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = errors.New("account disabled")
)

// ValidationError carries field-level messages up to the handler, which
// renders them as a 400 with a fields map.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "validation failed"
}
