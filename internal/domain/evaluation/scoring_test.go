package evaluation

import (
	"errors"
	"testing"

	"hospadmin/internal/domain/criteria"
)

func TestComputeCriteriaTotalSignedSum(t *testing.T) {
	entries := []ScoreEntry{
		{Name: "Patients seen", Direction: criteria.DirectionIncrease, ValueAchieved: 80, Weight: 1.2},
		{Name: "Complaints", Direction: criteria.DirectionDecrease, ValueAchieved: 3, Weight: 2.0},
	}

	total := ComputeCriteriaTotal(entries)
	if total != 90 {
		t.Fatalf("expected total 90, got %v", total)
	}
}

func TestComputeCriteriaTotalEmpty(t *testing.T) {
	if total := ComputeCriteriaTotal(nil); total != 0 {
		t.Fatalf("expected 0 for no entries, got %v", total)
	}
}

func TestComputeCriteriaTotalCanGoNegative(t *testing.T) {
	entries := []ScoreEntry{
		{Direction: criteria.DirectionIncrease, ValueAchieved: 10, Weight: 1},
		{Direction: criteria.DirectionDecrease, ValueAchieved: 50, Weight: 1},
	}
	if total := ComputeCriteriaTotal(entries); total != -40 {
		t.Fatalf("expected -40, got %v", total)
	}
}

func TestComputeDutyScore(t *testing.T) {
	if score := ComputeDutyScore(8, 90); score != 7.2 {
		t.Fatalf("expected 7.2, got %v", score)
	}
	if score := ComputeDutyScore(10, 100); score != 10 {
		t.Fatalf("expected 10, got %v", score)
	}
	if score := ComputeDutyScore(1, 0); score != 0 {
		t.Fatalf("expected 0, got %v", score)
	}
}

func TestComputeDutyScoreNoFloatDrift(t *testing.T) {
	// 0.1+0.2 style inputs must still come out exact.
	entries := []ScoreEntry{
		{Direction: criteria.DirectionIncrease, ValueAchieved: 0.1, Weight: 1},
		{Direction: criteria.DirectionIncrease, ValueAchieved: 0.2, Weight: 1},
	}
	total := ComputeCriteriaTotal(entries)
	if total != 0.3 {
		t.Fatalf("expected exact 0.3, got %v", total)
	}
}

func TestValidDifficulty(t *testing.T) {
	for _, d := range []int{1, 5, 10} {
		if !ValidDifficulty(d) {
			t.Fatalf("expected difficulty %d to be valid", d)
		}
	}
	for _, d := range []int{0, -1, 11} {
		if ValidDifficulty(d) {
			t.Fatalf("expected difficulty %d to be invalid", d)
		}
	}
}

func testDefs() map[string]criteria.CriterionDefinition {
	return map[string]criteria.CriterionDefinition{
		"c1": {ID: "c1", Name: "Patients seen", Direction: criteria.DirectionIncrease, Unit: "patients", ValueMin: 0, ValueMax: 100, DefaultWeight: 1.2},
		"c2": {ID: "c2", Name: "Complaints", Direction: criteria.DirectionDecrease, Unit: "complaints", ValueMin: 0, ValueMax: 20, DefaultWeight: 2.0},
	}
}

func TestBuildEntriesStampsSnapshot(t *testing.T) {
	entries, err := BuildEntries([]SubmittedScore{
		{CriterionID: "c1", Value: 80},
		{CriterionID: "c2", Value: 3, Note: "two resolved amicably"},
	}, testDefs())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	first := entries[0]
	if first.Name != "Patients seen" || first.Direction != criteria.DirectionIncrease {
		t.Fatalf("snapshot fields not copied: %+v", first)
	}
	if first.Weight != 1.2 {
		t.Fatalf("expected default weight 1.2, got %v", first.Weight)
	}
	if first.ValueMin != 0 || first.ValueMax != 100 {
		t.Fatalf("bounds not copied: %+v", first)
	}
	if entries[1].Note != "two resolved amicably" {
		t.Fatalf("note not carried: %+v", entries[1])
	}
}

func TestBuildEntriesWeightOverride(t *testing.T) {
	weight := 3.5
	entries, err := BuildEntries([]SubmittedScore{
		{CriterionID: "c1", Value: 10, Weight: &weight},
	}, testDefs())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entries[0].Weight != 3.5 {
		t.Fatalf("expected overridden weight 3.5, got %v", entries[0].Weight)
	}
}

func TestBuildEntriesUnknownCriterion(t *testing.T) {
	_, err := BuildEntries([]SubmittedScore{
		{CriterionID: "c1", Value: 10},
		{CriterionID: "missing", Value: 1},
	}, testDefs())

	var unknown *UnknownCriterionError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownCriterionError, got %v", err)
	}
	if unknown.CriterionID != "missing" {
		t.Fatalf("expected offending id missing, got %q", unknown.CriterionID)
	}
}

func TestBuildEntriesOutOfRangeRejectsWholeBatch(t *testing.T) {
	_, err := BuildEntries([]SubmittedScore{
		{CriterionID: "c1", Value: 50},
		{CriterionID: "c2", Value: 21},
	}, testDefs())

	var oor *ScoreOutOfRangeError
	if !errors.As(err, &oor) {
		t.Fatalf("expected ScoreOutOfRangeError, got %v", err)
	}
	if oor.Criterion != "Complaints" || oor.Min != 0 || oor.Max != 20 || oor.Value != 21 {
		t.Fatalf("error not populated from snapshot: %+v", oor)
	}
}

func TestBuildEntriesBoundaryValuesAccepted(t *testing.T) {
	if _, err := BuildEntries([]SubmittedScore{{CriterionID: "c1", Value: 0}}, testDefs()); err != nil {
		t.Fatalf("min boundary rejected: %v", err)
	}
	if _, err := BuildEntries([]SubmittedScore{{CriterionID: "c1", Value: 100}}, testDefs()); err != nil {
		t.Fatalf("max boundary rejected: %v", err)
	}
}

func TestBuildEntriesEmptyBatch(t *testing.T) {
	if _, err := BuildEntries(nil, testDefs()); !errors.Is(err, ErrNoEntries) {
		t.Fatalf("expected ErrNoEntries, got %v", err)
	}
}

func TestClampValue(t *testing.T) {
	if v := ClampValue(-5, 0, 10); v != 0 {
		t.Fatalf("expected clamp to 0, got %v", v)
	}
	if v := ClampValue(15, 0, 10); v != 10 {
		t.Fatalf("expected clamp to 10, got %v", v)
	}
	if v := ClampValue(7, 0, 10); v != 7 {
		t.Fatalf("expected 7 untouched, got %v", v)
	}
}
