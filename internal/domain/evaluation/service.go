package evaluation

import (
	"context"
	"time"

	"hospadmin/internal/domain/criteria"
)

// CriterionProvider supplies current catalog definitions for snapshot
// stamping. The catalog store satisfies it.
type CriterionProvider interface {
	ListByIDs(ctx context.Context, ids []string) ([]criteria.CriterionDefinition, error)
}

type Service struct {
	store   StoreAPI
	catalog CriterionProvider
}

func NewService(store StoreAPI, catalog CriterionProvider) *Service {
	return &Service{store: store, catalog: catalog}
}

const seedDifficulty = 5

// CreateEvaluation opens one KPI evaluation for an employee in a cycle and
// seeds one duty evaluation per assigned routine duty.
func (s *Service) CreateEvaluation(ctx context.Context, cycleID, employeeID, evaluatorID string, seeds []DutySeed) (KPIEvaluation, error) {
	if _, err := s.store.GetCycle(ctx, cycleID); err != nil {
		return KPIEvaluation{}, err
	}

	duties := make([]DutyEvaluation, 0, len(seeds))
	for _, seed := range seeds {
		difficulty := seed.DefaultDifficulty
		if difficulty == 0 {
			difficulty = seedDifficulty
		}
		if !ValidDifficulty(difficulty) {
			return KPIEvaluation{}, ErrInvalidDifficulty
		}
		duties = append(duties, DutyEvaluation{
			DutyID:     seed.DutyID,
			DutyName:   seed.Name,
			EmployeeID: employeeID,
			Difficulty: difficulty,
		})
	}

	id, err := s.store.InsertEvaluation(ctx, KPIEvaluation{
		CycleID:     cycleID,
		EmployeeID:  employeeID,
		EvaluatorID: evaluatorID,
	}, duties)
	if err != nil {
		return KPIEvaluation{}, err
	}
	return s.store.GetEvaluation(ctx, id)
}

func (s *Service) Get(ctx context.Context, id string) (KPIEvaluation, error) {
	return s.store.GetEvaluation(ctx, id)
}

func (s *Service) List(ctx context.Context, cycleID, employeeID string, limit, offset int) ([]KPIEvaluation, error) {
	return s.store.ListEvaluations(ctx, cycleID, employeeID, limit, offset)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.SoftDeleteEvaluation(ctx, id)
}

func (s *Service) GetDuty(ctx context.Context, id string) (DutyEvaluation, error) {
	return s.store.GetDuty(ctx, id)
}

// Score validates and persists a whole batch of criterion values for one
// duty evaluation. Any failure rejects the batch; nothing is written.
// The owning evaluation's total is re-aggregated in the same transaction,
// so the caller sees a consistent parent on return.
func (s *Service) Score(ctx context.Context, dutyEvalID string, scores []SubmittedScore, difficulty *int, note *string, force bool) (DutyEvaluation, error) {
	duty, err := s.store.GetDuty(ctx, dutyEvalID)
	if err != nil {
		return DutyEvaluation{}, err
	}
	if err := s.checkEditable(ctx, duty.EvaluationID, force); err != nil {
		return DutyEvaluation{}, err
	}

	ids := make([]string, 0, len(scores))
	for _, score := range scores {
		ids = append(ids, score.CriterionID)
	}
	defs, err := s.catalog.ListByIDs(ctx, ids)
	if err != nil {
		return DutyEvaluation{}, err
	}
	defsByID := make(map[string]criteria.CriterionDefinition, len(defs))
	for _, def := range defs {
		defsByID[def.ID] = def
	}

	entries, err := BuildEntries(scores, defsByID)
	if err != nil {
		return DutyEvaluation{}, err
	}

	if difficulty != nil {
		if !ValidDifficulty(*difficulty) {
			return DutyEvaluation{}, ErrInvalidDifficulty
		}
		duty.Difficulty = *difficulty
	}
	if note != nil {
		duty.Notes = *note
	}

	duty.Entries = entries
	duty.CriteriaTotal = ComputeCriteriaTotal(entries)
	duty.DutyScore = ComputeDutyScore(duty.Difficulty, duty.CriteriaTotal)

	if err := s.store.UpdateDutyScores(ctx, duty); err != nil {
		return DutyEvaluation{}, err
	}
	return s.store.GetDuty(ctx, dutyEvalID)
}

// ClampScore pulls one recorded entry back inside its snapshot bounds.
// This is the explicit UI convenience path; Score never clamps.
func (s *Service) ClampScore(ctx context.Context, dutyEvalID, criterionID string, force bool) (DutyEvaluation, error) {
	duty, err := s.store.GetDuty(ctx, dutyEvalID)
	if err != nil {
		return DutyEvaluation{}, err
	}
	if err := s.checkEditable(ctx, duty.EvaluationID, force); err != nil {
		return DutyEvaluation{}, err
	}

	found := false
	for i, entry := range duty.Entries {
		if entry.CriterionID == criterionID {
			duty.Entries[i].ValueAchieved = ClampValue(entry.ValueAchieved, entry.ValueMin, entry.ValueMax)
			found = true
		}
	}
	if !found {
		return DutyEvaluation{}, &UnknownCriterionError{CriterionID: criterionID}
	}

	duty.CriteriaTotal = ComputeCriteriaTotal(duty.Entries)
	duty.DutyScore = ComputeDutyScore(duty.Difficulty, duty.CriteriaTotal)
	if err := s.store.UpdateDutyScores(ctx, duty); err != nil {
		return DutyEvaluation{}, err
	}
	return s.store.GetDuty(ctx, dutyEvalID)
}

func (s *Service) DeleteDuty(ctx context.Context, dutyEvalID string, force bool) error {
	duty, err := s.store.GetDuty(ctx, dutyEvalID)
	if err != nil {
		return err
	}
	if err := s.checkEditable(ctx, duty.EvaluationID, force); err != nil {
		return err
	}
	return s.store.SoftDeleteDuty(ctx, dutyEvalID)
}

func (s *Service) RecomputeTotal(ctx context.Context, evaluationID string) (float64, error) {
	return s.store.RecomputeTotal(ctx, evaluationID)
}

// Approve locks the evaluation. Every duty must carry at least one score
// entry; the error names the ones that do not.
func (s *Service) Approve(ctx context.Context, id, remarks string) (KPIEvaluation, error) {
	eval, err := s.store.GetEvaluation(ctx, id)
	if err != nil {
		return KPIEvaluation{}, err
	}
	if eval.Status == StatusApproved {
		return KPIEvaluation{}, ErrAlreadyApproved
	}

	var unscored []string
	for _, duty := range eval.Duties {
		if !duty.Scored() {
			unscored = append(unscored, duty.DutyName)
		}
	}
	if len(unscored) > 0 {
		return KPIEvaluation{}, &IncompleteScoringError{UnscoredDuties: unscored}
	}

	now := time.Now().UTC()
	if err := s.store.SetApproval(ctx, id, StatusApproved, remarks, &now); err != nil {
		return KPIEvaluation{}, err
	}
	return s.store.GetEvaluation(ctx, id)
}

// Revoke reopens an approved evaluation. Recorded scores are kept; only
// the handler's role check makes this privileged.
func (s *Service) Revoke(ctx context.Context, id string) (KPIEvaluation, error) {
	eval, err := s.store.GetEvaluation(ctx, id)
	if err != nil {
		return KPIEvaluation{}, err
	}
	if eval.Status != StatusApproved {
		return KPIEvaluation{}, ErrNotYetApproved
	}
	if err := s.store.SetApproval(ctx, id, StatusUnapproved, eval.Remarks, nil); err != nil {
		return KPIEvaluation{}, err
	}
	return s.store.GetEvaluation(ctx, id)
}

func (s *Service) SubmitFeedback(ctx context.Context, id, text string) (KPIEvaluation, error) {
	eval, err := s.store.GetEvaluation(ctx, id)
	if err != nil {
		return KPIEvaluation{}, err
	}
	if eval.Status != StatusApproved {
		return KPIEvaluation{}, ErrNotYetApproved
	}
	if err := s.store.SetFeedback(ctx, id, text); err != nil {
		return KPIEvaluation{}, err
	}
	return s.store.GetEvaluation(ctx, id)
}

func (s *Service) checkEditable(ctx context.Context, evaluationID string, force bool) error {
	if force {
		return nil
	}
	eval, err := s.store.GetEvaluation(ctx, evaluationID)
	if err != nil {
		return err
	}
	if !eval.IsEditable() {
		return ErrLocked
	}
	return nil
}
