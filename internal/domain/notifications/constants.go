package notifications

const (
	TypeWorkItemAssigned   = "work_item_assigned"
	TypeWorkItemTransition = "work_item_transition"
	TypeWorkItemOverdue    = "work_item_overdue"
	TypeEvaluationApproved = "evaluation_approved"
	TypeEvaluationRevoked  = "evaluation_revoked"
	TypeFeedbackReceived   = "feedback_received"
)
