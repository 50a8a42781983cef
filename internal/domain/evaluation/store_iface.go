package evaluation

import (
	"context"
	"time"
)

type StoreAPI interface {
	InsertEvaluation(ctx context.Context, eval KPIEvaluation, duties []DutyEvaluation) (string, error)
	GetEvaluation(ctx context.Context, id string) (KPIEvaluation, error)
	ListEvaluations(ctx context.Context, cycleID, employeeID string, limit, offset int) ([]KPIEvaluation, error)
	SoftDeleteEvaluation(ctx context.Context, id string) error

	GetDuty(ctx context.Context, id string) (DutyEvaluation, error)
	UpdateDutyScores(ctx context.Context, duty DutyEvaluation) error
	SoftDeleteDuty(ctx context.Context, id string) error
	RecomputeTotal(ctx context.Context, evaluationID string) (float64, error)

	SetApproval(ctx context.Context, id, status, remarks string, approvedAt *time.Time) error
	SetFeedback(ctx context.Context, id, text string) error

	InsertCycle(ctx context.Context, cycle EvaluationCycle) (string, error)
	GetCycle(ctx context.Context, id string) (EvaluationCycle, error)
	ListCycles(ctx context.Context) ([]EvaluationCycle, error)
	UpdateCycle(ctx context.Context, cycle EvaluationCycle) error
}
