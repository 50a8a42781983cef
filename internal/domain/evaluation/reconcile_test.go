package evaluation

import (
	"strings"
	"testing"

	"hospadmin/internal/domain/criteria"
)

func TestDetectChangesUnchanged(t *testing.T) {
	current := []ScoreEntry{
		{Name: "A", Direction: criteria.DirectionIncrease, ValueMin: 0, ValueMax: 10},
	}
	configured := []CycleCriterion{
		{Name: "A", Direction: criteria.DirectionIncrease, ValueMin: 0, ValueMax: 10},
	}

	changes := DetectChanges(current, configured)
	if changes.HasChanges {
		t.Fatalf("expected no changes, got %+v", changes)
	}
}

func TestDetectChangesAddRemove(t *testing.T) {
	current := []ScoreEntry{
		{Name: "A", Direction: criteria.DirectionIncrease, ValueMin: 0, ValueMax: 10},
		{Name: "B", Direction: criteria.DirectionIncrease, ValueMin: 0, ValueMax: 10},
	}
	configured := []CycleCriterion{
		{Name: "A", Direction: criteria.DirectionIncrease, ValueMin: 0, ValueMax: 10},
		{Name: "C", Direction: criteria.DirectionIncrease, ValueMin: 0, ValueMax: 5},
	}

	changes := DetectChanges(current, configured)
	if !changes.HasChanges {
		t.Fatal("expected changes")
	}
	if len(changes.Added) != 1 || changes.Added[0] != "C" {
		t.Fatalf("expected C added, got %v", changes.Added)
	}
	if len(changes.Removed) != 1 || changes.Removed[0] != "B" {
		t.Fatalf("expected B removed, got %v", changes.Removed)
	}
	if len(changes.Modified) != 0 {
		t.Fatalf("expected nothing modified, got %v", changes.Modified)
	}
}

func TestDetectChangesModifiedBounds(t *testing.T) {
	current := []ScoreEntry{
		{Name: "A", Direction: criteria.DirectionIncrease, ValueMin: 0, ValueMax: 10},
	}
	configured := []CycleCriterion{
		{Name: "A", Direction: criteria.DirectionIncrease, ValueMin: 0, ValueMax: 20},
	}

	changes := DetectChanges(current, configured)
	if len(changes.Modified) != 1 || changes.Modified[0] != "A" {
		t.Fatalf("expected A modified, got %+v", changes)
	}
}

func TestDetectChangesModifiedDirection(t *testing.T) {
	current := []ScoreEntry{
		{Name: "A", Direction: criteria.DirectionIncrease, ValueMin: 0, ValueMax: 10},
	}
	configured := []CycleCriterion{
		{Name: "A", Direction: criteria.DirectionDecrease, ValueMin: 0, ValueMax: 10},
	}

	if changes := DetectChanges(current, configured); len(changes.Modified) != 1 {
		t.Fatalf("expected direction flip detected, got %+v", changes)
	}
}

func TestMergeCarriesValueAndDropsRemoved(t *testing.T) {
	current := []ScoreEntry{
		{Name: "A", ValueAchieved: 7, Note: "good month", Weight: 1, ValueMin: 0, ValueMax: 10},
		{Name: "B", ValueAchieved: 3, Weight: 1, ValueMin: 0, ValueMax: 10},
	}
	configured := []CycleCriterion{
		{CriterionID: "a2", Name: "A", Direction: criteria.DirectionIncrease, ValueMin: 0, ValueMax: 20, Weight: 2},
		{CriterionID: "c1", Name: "C", Direction: criteria.DirectionDecrease, ValueMin: 0, ValueMax: 5, Weight: 1},
	}

	merged := Merge(current, configured)
	if len(merged) != 2 {
		t.Fatalf("expected 2 merged entries, got %d", len(merged))
	}

	a := merged[0]
	if a.Name != "A" {
		t.Fatalf("expected configured order, got %q first", a.Name)
	}
	if a.ValueAchieved != 7 || a.Note != "good month" {
		t.Fatalf("value or note not carried: %+v", a)
	}
	if a.ValueMax != 20 || a.Weight != 2 || a.CriterionID != "a2" {
		t.Fatalf("new configuration not applied: %+v", a)
	}

	c := merged[1]
	if c.Name != "C" || c.ValueAchieved != 0 || c.Note != "" {
		t.Fatalf("new criterion should start clean: %+v", c)
	}

	for _, entry := range merged {
		if entry.Name == "B" {
			t.Fatal("removed criterion B survived the merge")
		}
	}
}

func TestMergeKeepsOutOfBoundsValue(t *testing.T) {
	// Tightened bounds do not rewrite an already recorded value.
	current := []ScoreEntry{
		{Name: "A", ValueAchieved: 90, ValueMin: 0, ValueMax: 100},
	}
	configured := []CycleCriterion{
		{Name: "A", ValueMin: 0, ValueMax: 50},
	}

	merged := Merge(current, configured)
	if merged[0].ValueAchieved != 90 {
		t.Fatalf("carried value was altered: %v", merged[0].ValueAchieved)
	}
	if merged[0].ValueMax != 50 {
		t.Fatalf("new bounds not applied: %v", merged[0].ValueMax)
	}
}

func TestFormatWarning(t *testing.T) {
	msg := FormatWarning(CriteriaChanges{})
	if !strings.Contains(msg, "unchanged") {
		t.Fatalf("expected unchanged message, got %q", msg)
	}

	msg = FormatWarning(CriteriaChanges{
		Added:      []string{"C"},
		Removed:    []string{"B"},
		HasChanges: true,
	})
	if !strings.Contains(msg, "1 added (C)") {
		t.Fatalf("added part missing: %q", msg)
	}
	if !strings.Contains(msg, "scores will be lost") {
		t.Fatalf("loss warning missing: %q", msg)
	}
}
