package criteria

import "time"

const (
	DirectionIncrease = "increase"
	DirectionDecrease = "decrease"
)

type CriterionDefinition struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Direction     string     `json:"direction"`
	Unit          string     `json:"unit"`
	ValueMin      float64    `json:"valueMin"`
	ValueMax      float64    `json:"valueMax"`
	DefaultWeight float64    `json:"defaultWeight"`
	Active        bool       `json:"active"`
	CreatedAt     time.Time  `json:"createdAt"`
	DeletedAt     *time.Time `json:"deletedAt,omitempty"`
}
