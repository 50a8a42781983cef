package criteria

import "errors"

var (
	ErrNotFound         = errors.New("criterion not found")
	ErrInvalidRange     = errors.New("criterion value range is invalid: min must be below max")
	ErrNegativeWeight   = errors.New("criterion default weight must not be negative")
	ErrInvalidDirection = errors.New("criterion direction must be increase or decrease")
	ErrNameRequired     = errors.New("criterion name is required")
)
