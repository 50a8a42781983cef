package evaluation

const (
	StatusUnapproved = "unapproved"
	StatusApproved   = "approved"

	CycleStatusDraft  = "draft"
	CycleStatusActive = "active"
	CycleStatusClosed = "closed"

	DifficultyMin = 1
	DifficultyMax = 10
)
