package domain

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrInsufficientSeats = errors.New("insufficient seats")
	ErrForbidden         = errors.New("forbidden")
	ErrConflict          = errors.New("concurrent modification, retry")
	ErrInvalidInput      = errors.New("invalid input")
)
