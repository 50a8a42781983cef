package criteria

import "strings"

// ValidateDefinition checks the fields an administrator can set.
// Identity and timestamps are assigned by the store.
func ValidateDefinition(def CriterionDefinition) error {
	if strings.TrimSpace(def.Name) == "" {
		return ErrNameRequired
	}
	if def.Direction != DirectionIncrease && def.Direction != DirectionDecrease {
		return ErrInvalidDirection
	}
	if def.ValueMin >= def.ValueMax {
		return ErrInvalidRange
	}
	if def.DefaultWeight < 0 {
		return ErrNegativeWeight
	}
	return nil
}
