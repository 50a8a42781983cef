package workitem

import "time"

type WorkItem struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Details    string     `json:"details"`
	AssignerID string     `json:"assignerId"`
	AssigneeID string     `json:"assigneeId"`
	DutyID     string     `json:"dutyId,omitempty"`
	Deadline   *time.Time `json:"deadline,omitempty"`
	State      string     `json:"state"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// TaskStateRecord shadows one work item. Its history is the sole audit
// trail for lifecycle changes: entries are appended, never edited.
type TaskStateRecord struct {
	WorkItemID   string            `json:"workItemId"`
	CurrentState string            `json:"currentState"`
	History      []TransitionEntry `json:"history"`
}

type TransitionEntry struct {
	FromState string    `json:"fromState"`
	ToState   string    `json:"toState"`
	ActorID   string    `json:"actorId"`
	At        time.Time `json:"at"`
	Reason    string    `json:"reason"`
	Note      string    `json:"note"`
}
