package evaluation

import (
	"fmt"
	"strings"
)

// Criteria drift: an administrator can edit a cycle's criterion
// configuration after duties have already been scored under the old one.
// The functions here diff and merge the two sets. They are pure; whether
// and when a merged result is persisted is the caller's decision.
//
// Matching is by display name. Snapshots copy criterion fields by value,
// so the name is the only identity that survives a configuration edit; a
// rename is indistinguishable from remove plus add.

type CriteriaChanges struct {
	Added      []string `json:"added"`
	Removed    []string `json:"removed"`
	Modified   []string `json:"modified"`
	HasChanges bool     `json:"hasChanges"`
}

func DetectChanges(current []ScoreEntry, configured []CycleCriterion) CriteriaChanges {
	currentByName := make(map[string]ScoreEntry, len(current))
	for _, entry := range current {
		currentByName[entry.Name] = entry
	}
	configuredNames := make(map[string]bool, len(configured))

	changes := CriteriaChanges{}
	for _, crit := range configured {
		configuredNames[crit.Name] = true
		entry, ok := currentByName[crit.Name]
		if !ok {
			changes.Added = append(changes.Added, crit.Name)
			continue
		}
		if entry.ValueMin != crit.ValueMin || entry.ValueMax != crit.ValueMax ||
			entry.Direction != crit.Direction || entry.Unit != crit.Unit {
			changes.Modified = append(changes.Modified, crit.Name)
		}
	}
	for _, entry := range current {
		if !configuredNames[entry.Name] {
			changes.Removed = append(changes.Removed, entry.Name)
		}
	}

	changes.HasChanges = len(changes.Added)+len(changes.Removed)+len(changes.Modified) > 0
	return changes
}

// Merge rebuilds the entry list in the configured order. Entries matching
// by name keep their achieved value and note but take the new bounds,
// direction, unit and weight; new criteria start at zero. Entries whose
// criterion was removed are dropped, which loses their recorded scores.
// Carried-forward values are not re-validated against the new bounds; a
// value outside them stays visible until the next explicit score call.
func Merge(current []ScoreEntry, configured []CycleCriterion) []ScoreEntry {
	currentByName := make(map[string]ScoreEntry, len(current))
	for _, entry := range current {
		currentByName[entry.Name] = entry
	}

	merged := make([]ScoreEntry, 0, len(configured))
	for _, crit := range configured {
		entry := ScoreEntry{
			CriterionID: crit.CriterionID,
			Name:        crit.Name,
			Direction:   crit.Direction,
			Unit:        crit.Unit,
			ValueMin:    crit.ValueMin,
			ValueMax:    crit.ValueMax,
			Weight:      crit.Weight,
		}
		if prior, ok := currentByName[crit.Name]; ok {
			entry.ValueAchieved = prior.ValueAchieved
			entry.Note = prior.Note
		}
		merged = append(merged, entry)
	}
	return merged
}

// FormatWarning renders the diff for the confirmation prompt shown before
// a merge is committed.
func FormatWarning(changes CriteriaChanges) string {
	if !changes.HasChanges {
		return "criteria configuration is unchanged"
	}

	var parts []string
	if len(changes.Added) > 0 {
		parts = append(parts, fmt.Sprintf("%d added (%s)", len(changes.Added), strings.Join(changes.Added, ", ")))
	}
	if len(changes.Removed) > 0 {
		parts = append(parts, fmt.Sprintf("%d removed (%s) - their recorded scores will be lost", len(changes.Removed), strings.Join(changes.Removed, ", ")))
	}
	if len(changes.Modified) > 0 {
		parts = append(parts, fmt.Sprintf("%d modified (%s)", len(changes.Modified), strings.Join(changes.Modified, ", ")))
	}
	return "criteria configuration changed: " + strings.Join(parts, "; ")
}
