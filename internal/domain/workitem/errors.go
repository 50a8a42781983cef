package workitem

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("work item not found")
	ErrUnknownState  = errors.New("unknown work item state")
	ErrTitleRequired = errors.New("work item title is required")
)

type TransitionError struct {
	From string
	To   string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("illegal transition from %s to %s", e.From, e.To)
}
