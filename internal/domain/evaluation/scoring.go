package evaluation

import (
	"github.com/shopspring/decimal"

	"hospadmin/internal/domain/criteria"
)

var hundred = decimal.NewFromInt(100)

// ComputeCriteriaTotal is the signed weighted sum over the entries:
// increase criteria add value x weight, decrease criteria subtract it.
// The arithmetic runs on decimals so repeated rescoring never drifts.
func ComputeCriteriaTotal(entries []ScoreEntry) float64 {
	total := decimal.Zero
	for _, entry := range entries {
		contribution := decimal.NewFromFloat(entry.ValueAchieved).Mul(decimal.NewFromFloat(entry.Weight))
		if entry.Direction == criteria.DirectionDecrease {
			total = total.Sub(contribution)
		} else {
			total = total.Add(contribution)
		}
	}
	return total.InexactFloat64()
}

// ComputeDutyScore scales the criteria total by difficulty over 100.
func ComputeDutyScore(difficulty int, criteriaTotal float64) float64 {
	return decimal.NewFromInt(int64(difficulty)).
		Mul(decimal.NewFromFloat(criteriaTotal)).
		Div(hundred).
		InexactFloat64()
}

func ValidDifficulty(difficulty int) bool {
	return difficulty >= DifficultyMin && difficulty <= DifficultyMax
}

// BuildEntries validates a submitted batch against the current catalog
// definitions and stamps each entry with its snapshot. Any failure rejects
// the whole batch; values are never clamped here.
func BuildEntries(submitted []SubmittedScore, defs map[string]criteria.CriterionDefinition) ([]ScoreEntry, error) {
	if len(submitted) == 0 {
		return nil, ErrNoEntries
	}

	entries := make([]ScoreEntry, 0, len(submitted))
	for _, score := range submitted {
		def, ok := defs[score.CriterionID]
		if !ok {
			return nil, &UnknownCriterionError{CriterionID: score.CriterionID}
		}
		if score.Value < def.ValueMin || score.Value > def.ValueMax {
			return nil, &ScoreOutOfRangeError{
				Criterion: def.Name,
				Unit:      def.Unit,
				Min:       def.ValueMin,
				Max:       def.ValueMax,
				Value:     score.Value,
			}
		}

		weight := def.DefaultWeight
		if score.Weight != nil {
			weight = *score.Weight
		}
		entries = append(entries, ScoreEntry{
			CriterionID:   def.ID,
			Name:          def.Name,
			Direction:     def.Direction,
			Unit:          def.Unit,
			ValueMin:      def.ValueMin,
			ValueMax:      def.ValueMax,
			Weight:        weight,
			ValueAchieved: score.Value,
			Note:          score.Note,
		})
	}
	return entries, nil
}

// ClampValue is the explicit clamping operation UI convenience flows call
// before resubmitting; the scoring path itself never clamps.
func ClampValue(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
