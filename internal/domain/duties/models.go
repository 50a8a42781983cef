package duties

import "time"

// RoutineDuty is a recurring responsibility assigned to employees,
// distinct from one-off work items.
type RoutineDuty struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Description       string    `json:"description"`
	DefaultDifficulty int       `json:"defaultDifficulty"`
	Active            bool      `json:"active"`
	CreatedAt         time.Time `json:"createdAt"`
}

type Assignment struct {
	DutyID     string    `json:"dutyId"`
	EmployeeID string    `json:"employeeId"`
	AssignedAt time.Time `json:"assignedAt"`
}

// AssignedDuty is what the evaluation seeder consumes: one row per duty
// currently assigned to an employee.
type AssignedDuty struct {
	DutyID            string `json:"dutyId"`
	Name              string `json:"name"`
	DefaultDifficulty int    `json:"defaultDifficulty"`
}
