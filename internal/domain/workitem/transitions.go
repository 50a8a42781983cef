package workitem

import "time"

// transitionTable maps each state to the targets a caller may move it to.
// Terminal states are present with no targets so the transition function
// stays total. Overdue is a regular entry even though it is only ever
// entered by the deadline sweeper, never through Transition.
var transitionTable = map[string][]string{
	StateNew:             {StateAssigned},
	StateAssigned:        {StateAccepted, StateRejected},
	StateAccepted:        {StateInProgress, StateSuspended},
	StateInProgress:      {StatePendingApproval, StateSuspended},
	StatePendingApproval: {StateCompleted, StateInProgress},
	StateSuspended:       {StateInProgress},
	StateOverdue:         {StateInProgress, StatePendingApproval, StateSuspended},
	StateRejected:        {},
	StateCompleted:       {},
}

func KnownState(state string) bool {
	_, ok := transitionTable[state]
	return ok
}

func IsTerminal(state string) bool {
	targets, ok := transitionTable[state]
	return ok && len(targets) == 0
}

func AllowedTargets(state string) []string {
	targets := transitionTable[state]
	out := make([]string, len(targets))
	copy(out, targets)
	return out
}

func CanTransition(from, to string) bool {
	for _, target := range transitionTable[from] {
		if target == to {
			return true
		}
	}
	return false
}

// Transition validates the move and returns the record with the new state
// and one appended history entry. The input record is not mutated.
func Transition(record TaskStateRecord, to, actorID, reason, note string, at time.Time) (TaskStateRecord, error) {
	if !KnownState(to) {
		return record, ErrUnknownState
	}
	if !CanTransition(record.CurrentState, to) {
		return record, &TransitionError{From: record.CurrentState, To: to}
	}

	entry := TransitionEntry{
		FromState: record.CurrentState,
		ToState:   to,
		ActorID:   actorID,
		At:        at,
		Reason:    reason,
		Note:      note,
	}
	next := TaskStateRecord{
		WorkItemID:   record.WorkItemID,
		CurrentState: to,
		History:      append(append([]TransitionEntry{}, record.History...), entry),
	}
	return next, nil
}
