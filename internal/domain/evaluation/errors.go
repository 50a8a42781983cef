package evaluation

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound          = errors.New("evaluation not found")
	ErrDutyNotFound      = errors.New("duty evaluation not found")
	ErrCycleNotFound     = errors.New("evaluation cycle not found")
	ErrAlreadyApproved   = errors.New("evaluation is already approved")
	ErrNotYetApproved    = errors.New("evaluation is not approved")
	ErrLocked            = errors.New("evaluation is approved and locked against edits")
	ErrInvalidDifficulty = errors.New("difficulty must be between 1 and 10")
	ErrInvalidCycleDates = errors.New("cycle end date must not precede start date")
	ErrCycleNameRequired = errors.New("cycle name is required")
	ErrNoEntries         = errors.New("at least one score entry is required")
)

type UnknownCriterionError struct {
	CriterionID string
}

func (e *UnknownCriterionError) Error() string {
	return fmt.Sprintf("unknown criterion %s", e.CriterionID)
}

type ScoreOutOfRangeError struct {
	Criterion string
	Unit      string
	Min       float64
	Max       float64
	Value     float64
}

func (e *ScoreOutOfRangeError) Error() string {
	unit := e.Unit
	if unit != "" {
		unit = " " + unit
	}
	return fmt.Sprintf("score %v for %q is outside the allowed range %v-%v%s", e.Value, e.Criterion, e.Min, e.Max, unit)
}

type IncompleteScoringError struct {
	UnscoredDuties []string
}

func (e *IncompleteScoringError) Error() string {
	return fmt.Sprintf("cannot approve: unscored duties: %s", strings.Join(e.UnscoredDuties, ", "))
}
