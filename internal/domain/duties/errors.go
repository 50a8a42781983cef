package duties

import "errors"

var (
	ErrNotFound          = errors.New("routine duty not found")
	ErrNameRequired      = errors.New("duty name is required")
	ErrInvalidDifficulty = errors.New("duty default difficulty must be between 1 and 10")
)
