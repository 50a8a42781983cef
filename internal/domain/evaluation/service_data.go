package evaluation

import (
	"context"
	"strings"

	"hospadmin/internal/domain/criteria"
)

func (s *Service) CreateCycle(ctx context.Context, cycle EvaluationCycle) (EvaluationCycle, error) {
	if err := validateCycle(cycle); err != nil {
		return EvaluationCycle{}, err
	}
	if cycle.Status == "" {
		cycle.Status = CycleStatusDraft
	}
	id, err := s.store.InsertCycle(ctx, cycle)
	if err != nil {
		return EvaluationCycle{}, err
	}
	return s.store.GetCycle(ctx, id)
}

func (s *Service) GetCycle(ctx context.Context, id string) (EvaluationCycle, error) {
	return s.store.GetCycle(ctx, id)
}

func (s *Service) ListCycles(ctx context.Context) ([]EvaluationCycle, error) {
	return s.store.ListCycles(ctx)
}

// UpdateCycle stores a new cycle configuration. Evaluations already scored
// under the old criterion list are left alone; the reconciler resolves the
// drift per duty when a caller asks it to.
func (s *Service) UpdateCycle(ctx context.Context, cycle EvaluationCycle) (EvaluationCycle, error) {
	if err := validateCycle(cycle); err != nil {
		return EvaluationCycle{}, err
	}
	if err := s.store.UpdateCycle(ctx, cycle); err != nil {
		return EvaluationCycle{}, err
	}
	return s.store.GetCycle(ctx, cycle.ID)
}

type ReconcilePreview struct {
	Changes CriteriaChanges `json:"changes"`
	Warning string          `json:"warning"`
}

// PreviewReconcile reports the drift between a duty's recorded entries and
// its cycle's current configuration without touching anything.
func (s *Service) PreviewReconcile(ctx context.Context, dutyEvalID string) (ReconcilePreview, error) {
	duty, eval, err := s.dutyWithParent(ctx, dutyEvalID)
	if err != nil {
		return ReconcilePreview{}, err
	}
	cycle, err := s.store.GetCycle(ctx, eval.CycleID)
	if err != nil {
		return ReconcilePreview{}, err
	}

	changes := DetectChanges(duty.Entries, cycle.Criteria)
	return ReconcilePreview{Changes: changes, Warning: FormatWarning(changes)}, nil
}

// ReconcileDuty merges the cycle's current criterion configuration into
// the duty's entries and recomputes both score levels. Scores recorded for
// removed criteria are lost; callers surface the preview warning first.
func (s *Service) ReconcileDuty(ctx context.Context, dutyEvalID string, force bool) (DutyEvaluation, error) {
	duty, eval, err := s.dutyWithParent(ctx, dutyEvalID)
	if err != nil {
		return DutyEvaluation{}, err
	}
	if !force && !eval.IsEditable() {
		return DutyEvaluation{}, ErrLocked
	}
	cycle, err := s.store.GetCycle(ctx, eval.CycleID)
	if err != nil {
		return DutyEvaluation{}, err
	}

	duty.Entries = Merge(duty.Entries, cycle.Criteria)
	duty.CriteriaTotal = ComputeCriteriaTotal(duty.Entries)
	duty.DutyScore = ComputeDutyScore(duty.Difficulty, duty.CriteriaTotal)

	if err := s.store.UpdateDutyScores(ctx, duty); err != nil {
		return DutyEvaluation{}, err
	}
	return s.store.GetDuty(ctx, dutyEvalID)
}

func (s *Service) dutyWithParent(ctx context.Context, dutyEvalID string) (DutyEvaluation, KPIEvaluation, error) {
	duty, err := s.store.GetDuty(ctx, dutyEvalID)
	if err != nil {
		return DutyEvaluation{}, KPIEvaluation{}, err
	}
	eval, err := s.store.GetEvaluation(ctx, duty.EvaluationID)
	if err != nil {
		return DutyEvaluation{}, KPIEvaluation{}, err
	}
	return duty, eval, nil
}

func validateCycle(cycle EvaluationCycle) error {
	if strings.TrimSpace(cycle.Name) == "" {
		return ErrCycleNameRequired
	}
	if cycle.EndDate.Before(cycle.StartDate) {
		return ErrInvalidCycleDates
	}
	for _, crit := range cycle.Criteria {
		if strings.TrimSpace(crit.Name) == "" {
			return criteria.ErrNameRequired
		}
		if crit.Direction != criteria.DirectionIncrease && crit.Direction != criteria.DirectionDecrease {
			return criteria.ErrInvalidDirection
		}
		if crit.ValueMin >= crit.ValueMax {
			return criteria.ErrInvalidRange
		}
		if crit.Weight < 0 {
			return criteria.ErrNegativeWeight
		}
	}
	return nil
}
