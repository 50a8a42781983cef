package workitem

const (
	StateNew             = "new"
	StateAssigned        = "assigned"
	StateAccepted        = "accepted"
	StateRejected        = "rejected"
	StateInProgress      = "in_progress"
	StatePendingApproval = "pending_approval"
	StateCompleted       = "completed"
	StateOverdue         = "overdue"
	StateSuspended       = "suspended"
)

// SystemActorID stamps history entries written by schedulers rather than
// a signed-in user.
const SystemActorID = "system"
