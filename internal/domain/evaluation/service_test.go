package evaluation

import (
	"context"
	"errors"
	"testing"
	"time"

	"hospadmin/internal/domain/criteria"
)

type fakeStore struct {
	evaluations map[string]*KPIEvaluation
	duties      map[string]*DutyEvaluation
	cycles      map[string]*EvaluationCycle
	updateCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		evaluations: map[string]*KPIEvaluation{},
		duties:      map[string]*DutyEvaluation{},
		cycles:      map[string]*EvaluationCycle{},
	}
}

func (f *fakeStore) InsertEvaluation(_ context.Context, eval KPIEvaluation, duties []DutyEvaluation) (string, error) {
	eval.ID = "eval-1"
	eval.Status = StatusUnapproved
	f.evaluations[eval.ID] = &eval
	for i := range duties {
		duty := duties[i]
		duty.ID = duty.DutyID + "-eval"
		duty.EvaluationID = eval.ID
		f.duties[duty.ID] = &duty
	}
	return eval.ID, nil
}

func (f *fakeStore) GetEvaluation(_ context.Context, id string) (KPIEvaluation, error) {
	eval, ok := f.evaluations[id]
	if !ok {
		return KPIEvaluation{}, ErrNotFound
	}
	out := *eval
	out.Duties = nil
	for _, duty := range f.duties {
		if duty.EvaluationID == id {
			out.Duties = append(out.Duties, *duty)
		}
	}
	return out, nil
}

func (f *fakeStore) ListEvaluations(_ context.Context, _, _ string, _, _ int) ([]KPIEvaluation, error) {
	return nil, nil
}

func (f *fakeStore) SoftDeleteEvaluation(_ context.Context, id string) error {
	delete(f.evaluations, id)
	return nil
}

func (f *fakeStore) GetDuty(_ context.Context, id string) (DutyEvaluation, error) {
	duty, ok := f.duties[id]
	if !ok {
		return DutyEvaluation{}, ErrDutyNotFound
	}
	return *duty, nil
}

func (f *fakeStore) UpdateDutyScores(_ context.Context, duty DutyEvaluation) error {
	f.updateCalls++
	stored, ok := f.duties[duty.ID]
	if !ok {
		return ErrDutyNotFound
	}
	*stored = duty
	f.recomputeTotal(duty.EvaluationID)
	return nil
}

func (f *fakeStore) SoftDeleteDuty(_ context.Context, id string) error {
	duty, ok := f.duties[id]
	if !ok {
		return ErrDutyNotFound
	}
	delete(f.duties, id)
	f.recomputeTotal(duty.EvaluationID)
	return nil
}

func (f *fakeStore) RecomputeTotal(_ context.Context, evaluationID string) (float64, error) {
	f.recomputeTotal(evaluationID)
	eval, ok := f.evaluations[evaluationID]
	if !ok {
		return 0, ErrNotFound
	}
	return eval.TotalScore, nil
}

func (f *fakeStore) recomputeTotal(evaluationID string) {
	eval, ok := f.evaluations[evaluationID]
	if !ok {
		return
	}
	total := 0.0
	for _, duty := range f.duties {
		if duty.EvaluationID == evaluationID {
			total += duty.DutyScore
		}
	}
	eval.TotalScore = total
}

func (f *fakeStore) SetApproval(_ context.Context, id, status, remarks string, approvedAt *time.Time) error {
	eval, ok := f.evaluations[id]
	if !ok {
		return ErrNotFound
	}
	eval.Status = status
	eval.Remarks = remarks
	eval.ApprovedAt = approvedAt
	return nil
}

func (f *fakeStore) SetFeedback(_ context.Context, id, text string) error {
	eval, ok := f.evaluations[id]
	if !ok {
		return ErrNotFound
	}
	eval.Feedback = text
	return nil
}

func (f *fakeStore) InsertCycle(_ context.Context, cycle EvaluationCycle) (string, error) {
	cycle.ID = "cycle-1"
	f.cycles[cycle.ID] = &cycle
	return cycle.ID, nil
}

func (f *fakeStore) GetCycle(_ context.Context, id string) (EvaluationCycle, error) {
	cycle, ok := f.cycles[id]
	if !ok {
		return EvaluationCycle{}, ErrCycleNotFound
	}
	return *cycle, nil
}

func (f *fakeStore) ListCycles(_ context.Context) ([]EvaluationCycle, error) {
	return nil, nil
}

func (f *fakeStore) UpdateCycle(_ context.Context, cycle EvaluationCycle) error {
	stored, ok := f.cycles[cycle.ID]
	if !ok {
		return ErrCycleNotFound
	}
	*stored = cycle
	return nil
}

type fakeCatalog struct {
	defs map[string]criteria.CriterionDefinition
}

func (f *fakeCatalog) ListByIDs(_ context.Context, ids []string) ([]criteria.CriterionDefinition, error) {
	var out []criteria.CriterionDefinition
	for _, id := range ids {
		if def, ok := f.defs[id]; ok {
			out = append(out, def)
		}
	}
	return out, nil
}

func newTestService(t *testing.T) (*Service, *fakeStore) {
	t.Helper()
	store := newFakeStore()
	store.cycles["cycle-1"] = &EvaluationCycle{ID: "cycle-1", Name: "Q3", Status: CycleStatusActive}
	catalog := &fakeCatalog{defs: testDefs()}
	return NewService(store, catalog), store
}

func seedEvaluation(t *testing.T, svc *Service) KPIEvaluation {
	t.Helper()
	eval, err := svc.CreateEvaluation(context.Background(), "cycle-1", "emp-1", "mgr-1", []DutySeed{
		{DutyID: "d1", Name: "Ward rounds", DefaultDifficulty: 8},
		{DutyID: "d2", Name: "Night shifts"},
	})
	if err != nil {
		t.Fatalf("create evaluation: %v", err)
	}
	return eval
}

func TestCreateEvaluationSeedsDuties(t *testing.T) {
	svc, _ := newTestService(t)
	eval := seedEvaluation(t, svc)

	if len(eval.Duties) != 2 {
		t.Fatalf("expected 2 seeded duties, got %d", len(eval.Duties))
	}
	byName := map[string]DutyEvaluation{}
	for _, duty := range eval.Duties {
		byName[duty.DutyName] = duty
	}
	if byName["Ward rounds"].Difficulty != 8 {
		t.Fatalf("expected duty default difficulty 8, got %d", byName["Ward rounds"].Difficulty)
	}
	if byName["Night shifts"].Difficulty != seedDifficulty {
		t.Fatalf("expected fallback difficulty %d, got %d", seedDifficulty, byName["Night shifts"].Difficulty)
	}
	if eval.TotalScore != 0 || eval.Status != StatusUnapproved {
		t.Fatalf("new evaluation should start unapproved at zero: %+v", eval)
	}
}

func TestCreateEvaluationUnknownCycle(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.CreateEvaluation(context.Background(), "nope", "emp-1", "mgr-1", nil)
	if !errors.Is(err, ErrCycleNotFound) {
		t.Fatalf("expected ErrCycleNotFound, got %v", err)
	}
}

func TestScoreComputesAndCascades(t *testing.T) {
	svc, store := newTestService(t)
	seedEvaluation(t, svc)

	difficulty := 8
	duty, err := svc.Score(context.Background(), "d1-eval", []SubmittedScore{
		{CriterionID: "c1", Value: 80},
		{CriterionID: "c2", Value: 3},
	}, &difficulty, nil, false)
	if err != nil {
		t.Fatalf("score: %v", err)
	}

	if duty.CriteriaTotal != 90 {
		t.Fatalf("expected criteria total 90, got %v", duty.CriteriaTotal)
	}
	if duty.DutyScore != 7.2 {
		t.Fatalf("expected duty score 7.2, got %v", duty.DutyScore)
	}

	eval, err := svc.Get(context.Background(), "eval-1")
	if err != nil {
		t.Fatalf("get evaluation: %v", err)
	}
	if eval.TotalScore != 7.2 {
		t.Fatalf("parent total not re-aggregated: %v", eval.TotalScore)
	}
	if store.updateCalls != 1 {
		t.Fatalf("expected one store write, got %d", store.updateCalls)
	}
}

func TestScoreRejectsBatchWithoutWriting(t *testing.T) {
	svc, store := newTestService(t)
	seedEvaluation(t, svc)

	_, err := svc.Score(context.Background(), "d1-eval", []SubmittedScore{
		{CriterionID: "c1", Value: 50},
		{CriterionID: "c2", Value: 999},
	}, nil, nil, false)

	var oor *ScoreOutOfRangeError
	if !errors.As(err, &oor) {
		t.Fatalf("expected ScoreOutOfRangeError, got %v", err)
	}
	if store.updateCalls != 0 {
		t.Fatal("rejected batch must not write")
	}
	duty, _ := svc.GetDuty(context.Background(), "d1-eval")
	if len(duty.Entries) != 0 {
		t.Fatalf("entries leaked from rejected batch: %+v", duty.Entries)
	}
}

func TestScoreLockedAfterApproval(t *testing.T) {
	svc, _ := newTestService(t)
	seedEvaluation(t, svc)

	scoreAll(t, svc)
	if _, err := svc.Approve(context.Background(), "eval-1", "solid quarter"); err != nil {
		t.Fatalf("approve: %v", err)
	}

	_, err := svc.Score(context.Background(), "d1-eval", []SubmittedScore{{CriterionID: "c1", Value: 10}}, nil, nil, false)
	if !errors.Is(err, ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}

	// Privileged force bypasses the lock.
	if _, err := svc.Score(context.Background(), "d1-eval", []SubmittedScore{{CriterionID: "c1", Value: 10}}, nil, nil, true); err != nil {
		t.Fatalf("forced score: %v", err)
	}
}

func TestScoreInvalidDifficulty(t *testing.T) {
	svc, _ := newTestService(t)
	seedEvaluation(t, svc)

	difficulty := 11
	_, err := svc.Score(context.Background(), "d1-eval", []SubmittedScore{{CriterionID: "c1", Value: 10}}, &difficulty, nil, false)
	if !errors.Is(err, ErrInvalidDifficulty) {
		t.Fatalf("expected ErrInvalidDifficulty, got %v", err)
	}
}

func TestApproveRequiresAllDutiesScored(t *testing.T) {
	svc, _ := newTestService(t)
	seedEvaluation(t, svc)

	if _, err := svc.Score(context.Background(), "d1-eval", []SubmittedScore{{CriterionID: "c1", Value: 10}}, nil, nil, false); err != nil {
		t.Fatalf("score: %v", err)
	}

	_, err := svc.Approve(context.Background(), "eval-1", "")
	var incomplete *IncompleteScoringError
	if !errors.As(err, &incomplete) {
		t.Fatalf("expected IncompleteScoringError, got %v", err)
	}
	if len(incomplete.UnscoredDuties) != 1 || incomplete.UnscoredDuties[0] != "Night shifts" {
		t.Fatalf("expected Night shifts named, got %v", incomplete.UnscoredDuties)
	}
}

func TestApproveIdempotenceGuard(t *testing.T) {
	svc, _ := newTestService(t)
	seedEvaluation(t, svc)
	scoreAll(t, svc)

	eval, err := svc.Approve(context.Background(), "eval-1", "well done")
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if eval.Status != StatusApproved || eval.ApprovedAt == nil || eval.Remarks != "well done" {
		t.Fatalf("approval not recorded: %+v", eval)
	}

	if _, err := svc.Approve(context.Background(), "eval-1", "again"); !errors.Is(err, ErrAlreadyApproved) {
		t.Fatalf("expected ErrAlreadyApproved, got %v", err)
	}
}

func TestRevokeReopensAndKeepsScores(t *testing.T) {
	svc, _ := newTestService(t)
	seedEvaluation(t, svc)
	scoreAll(t, svc)

	if _, err := svc.Approve(context.Background(), "eval-1", ""); err != nil {
		t.Fatalf("approve: %v", err)
	}
	eval, err := svc.Revoke(context.Background(), "eval-1")
	if err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if eval.Status != StatusUnapproved || eval.ApprovedAt != nil {
		t.Fatalf("revoke did not reopen: %+v", eval)
	}
	for _, duty := range eval.Duties {
		if !duty.Scored() {
			t.Fatalf("revoke dropped scores for %s", duty.DutyName)
		}
	}

	if _, err := svc.Revoke(context.Background(), "eval-1"); !errors.Is(err, ErrNotYetApproved) {
		t.Fatalf("expected ErrNotYetApproved, got %v", err)
	}
}

func TestSubmitFeedbackRequiresApproval(t *testing.T) {
	svc, _ := newTestService(t)
	seedEvaluation(t, svc)

	if _, err := svc.SubmitFeedback(context.Background(), "eval-1", "thanks"); !errors.Is(err, ErrNotYetApproved) {
		t.Fatalf("expected ErrNotYetApproved, got %v", err)
	}

	scoreAll(t, svc)
	if _, err := svc.Approve(context.Background(), "eval-1", ""); err != nil {
		t.Fatalf("approve: %v", err)
	}
	eval, err := svc.SubmitFeedback(context.Background(), "eval-1", "thanks")
	if err != nil {
		t.Fatalf("feedback: %v", err)
	}
	if eval.Feedback != "thanks" {
		t.Fatalf("feedback not stored: %+v", eval)
	}
}

func TestDeleteDutyCascadesTotal(t *testing.T) {
	svc, _ := newTestService(t)
	seedEvaluation(t, svc)
	scoreAll(t, svc)

	before, _ := svc.Get(context.Background(), "eval-1")
	if before.TotalScore == 0 {
		t.Fatal("expected nonzero total before delete")
	}

	if err := svc.DeleteDuty(context.Background(), "d2-eval", false); err != nil {
		t.Fatalf("delete duty: %v", err)
	}
	after, _ := svc.Get(context.Background(), "eval-1")
	if after.TotalScore >= before.TotalScore {
		t.Fatalf("total did not drop: %v -> %v", before.TotalScore, after.TotalScore)
	}
}

func TestClampScorePullsValueInside(t *testing.T) {
	svc, _ := newTestService(t)
	seedEvaluation(t, svc)
	scoreAll(t, svc)

	// Simulate drift: tighten the cycle config, reconcile, then clamp.
	duty, err := svc.ClampScore(context.Background(), "d1-eval", "c1", false)
	if err != nil {
		t.Fatalf("clamp: %v", err)
	}
	for _, entry := range duty.Entries {
		if entry.ValueAchieved < entry.ValueMin || entry.ValueAchieved > entry.ValueMax {
			t.Fatalf("entry %s still out of bounds: %+v", entry.Name, entry)
		}
	}

	if _, err := svc.ClampScore(context.Background(), "d1-eval", "nope", false); err == nil {
		t.Fatal("expected error for unknown criterion")
	}
}

func TestReconcileDutyMergesCycleConfig(t *testing.T) {
	svc, store := newTestService(t)
	seedEvaluation(t, svc)
	scoreAll(t, svc)

	store.cycles["cycle-1"].Criteria = []CycleCriterion{
		{CriterionID: "c1", Name: "Patients seen", Direction: criteria.DirectionIncrease, Unit: "patients", ValueMin: 0, ValueMax: 100, Weight: 2.0},
		{CriterionID: "c3", Name: "Training hours", Direction: criteria.DirectionIncrease, Unit: "hours", ValueMin: 0, ValueMax: 40, Weight: 1.0},
	}

	preview, err := svc.PreviewReconcile(context.Background(), "d1-eval")
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if !preview.Changes.HasChanges {
		t.Fatal("expected drift detected")
	}

	duty, err := svc.ReconcileDuty(context.Background(), "d1-eval", false)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if len(duty.Entries) != 2 {
		t.Fatalf("expected 2 entries after merge, got %d", len(duty.Entries))
	}
	// 80 x 2.0 carried, new criterion contributes zero.
	if duty.CriteriaTotal != 160 {
		t.Fatalf("expected criteria total 160, got %v", duty.CriteriaTotal)
	}

	eval, _ := svc.Get(context.Background(), "eval-1")
	if eval.TotalScore == 0 {
		t.Fatal("parent total not recomputed after reconcile")
	}
}

func TestReconcileLockedEvaluation(t *testing.T) {
	svc, store := newTestService(t)
	seedEvaluation(t, svc)
	scoreAll(t, svc)
	if _, err := svc.Approve(context.Background(), "eval-1", ""); err != nil {
		t.Fatalf("approve: %v", err)
	}
	store.cycles["cycle-1"].Criteria = []CycleCriterion{
		{CriterionID: "c1", Name: "Patients seen", Direction: criteria.DirectionIncrease, ValueMin: 0, ValueMax: 100, Weight: 1.0},
	}

	if _, err := svc.ReconcileDuty(context.Background(), "d1-eval", false); !errors.Is(err, ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
	if _, err := svc.ReconcileDuty(context.Background(), "d1-eval", true); err != nil {
		t.Fatalf("forced reconcile: %v", err)
	}
}

func TestCycleValidation(t *testing.T) {
	svc, _ := newTestService(t)
	start := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	_, err := svc.CreateCycle(context.Background(), EvaluationCycle{Name: "Q3", StartDate: start, EndDate: end})
	if !errors.Is(err, ErrInvalidCycleDates) {
		t.Fatalf("expected ErrInvalidCycleDates, got %v", err)
	}

	_, err = svc.CreateCycle(context.Background(), EvaluationCycle{Name: "  ", StartDate: start, EndDate: start})
	if !errors.Is(err, ErrCycleNameRequired) {
		t.Fatalf("expected ErrCycleNameRequired, got %v", err)
	}

	_, err = svc.CreateCycle(context.Background(), EvaluationCycle{
		Name: "Q3", StartDate: start, EndDate: start,
		Criteria: []CycleCriterion{{Name: "A", Direction: "sideways", ValueMin: 0, ValueMax: 1}},
	})
	if !errors.Is(err, criteria.ErrInvalidDirection) {
		t.Fatalf("expected invalid direction error, got %v", err)
	}
}

func scoreAll(t *testing.T, svc *Service) {
	t.Helper()
	difficulty := 8
	if _, err := svc.Score(context.Background(), "d1-eval", []SubmittedScore{
		{CriterionID: "c1", Value: 80},
		{CriterionID: "c2", Value: 3},
	}, &difficulty, nil, false); err != nil {
		t.Fatalf("score d1: %v", err)
	}
	if _, err := svc.Score(context.Background(), "d2-eval", []SubmittedScore{
		{CriterionID: "c1", Value: 40},
	}, nil, nil, false); err != nil {
		t.Fatalf("score d2: %v", err)
	}
}
