package domain

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrValidation        = errors.New("validation failed")
	ErrForbidden         = errors.New("forbidden")
	ErrGateway           = errors.New("payment gateway failure")
	ErrUnavailable       = errors.New("payment runtime unavailable")
	ErrInvalidTransition = errors.New("invalid status transition")
)
