package evaluation

import "time"

// ScoreEntry carries a value scored against one criterion. Name, bounds,
// direction, unit and weight are copied from the catalog at scoring time
// so later catalog edits never rewrite history.
type ScoreEntry struct {
	CriterionID   string  `json:"criterionId"`
	Name          string  `json:"name"`
	Direction     string  `json:"direction"`
	Unit          string  `json:"unit"`
	ValueMin      float64 `json:"valueMin"`
	ValueMax      float64 `json:"valueMax"`
	Weight        float64 `json:"weight"`
	ValueAchieved float64 `json:"valueAchieved"`
	Note          string  `json:"note,omitempty"`
}

type DutyEvaluation struct {
	ID            string       `json:"id"`
	EvaluationID  string       `json:"evaluationId"`
	DutyID        string       `json:"dutyId"`
	DutyName      string       `json:"dutyName"`
	EmployeeID    string       `json:"employeeId"`
	Difficulty    int          `json:"difficulty"`
	Entries       []ScoreEntry `json:"entries"`
	CriteriaTotal float64      `json:"criteriaTotal"`
	DutyScore     float64      `json:"dutyScore"`
	WorkItemCount int          `json:"workItemCount"`
	Notes         string       `json:"notes,omitempty"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}

func (d DutyEvaluation) Scored() bool {
	return len(d.Entries) > 0
}

type KPIEvaluation struct {
	ID          string           `json:"id"`
	CycleID     string           `json:"cycleId"`
	EmployeeID  string           `json:"employeeId"`
	EvaluatorID string           `json:"evaluatorId"`
	TotalScore  float64          `json:"totalScore"`
	Status      string           `json:"status"`
	Remarks     string           `json:"remarks,omitempty"`
	Feedback    string           `json:"feedback,omitempty"`
	ApprovedAt  *time.Time       `json:"approvedAt,omitempty"`
	Duties      []DutyEvaluation `json:"duties,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
}

// IsEditable reports whether duty scores under this evaluation may still
// change. Callers enforce it; privileged paths may bypass deliberately.
func (e KPIEvaluation) IsEditable() bool {
	return e.Status != StatusApproved
}

// CycleCriterion is one row of a cycle's canonical criterion
// configuration, the set the drift reconciler diffs against.
type CycleCriterion struct {
	CriterionID string  `json:"criterionId"`
	Name        string  `json:"name"`
	Direction   string  `json:"direction"`
	Unit        string  `json:"unit"`
	ValueMin    float64 `json:"valueMin"`
	ValueMax    float64 `json:"valueMax"`
	Weight      float64 `json:"weight"`
}

type EvaluationCycle struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	StartDate time.Time        `json:"startDate"`
	EndDate   time.Time        `json:"endDate"`
	Status    string           `json:"status"`
	Criteria  []CycleCriterion `json:"criteria"`
	CreatedAt time.Time        `json:"createdAt"`
}

// SubmittedScore is the scorer's input for one criterion. Weight overrides
// the criterion's default when set.
type SubmittedScore struct {
	CriterionID string   `json:"criterionId"`
	Value       float64  `json:"value"`
	Weight      *float64 `json:"weight,omitempty"`
	Note        string   `json:"note,omitempty"`
}

// DutySeed is the routine-duty collaborator's data used when an
// evaluation is first created.
type DutySeed struct {
	DutyID            string
	Name              string
	DefaultDifficulty int
}
