package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type seedCriterion struct {
	name      string
	direction string
	unit      string
	min, max  float64
	weight    float64
}

var seedCriteria = []seedCriterion{
	{"Patients seen", "increase", "patients", 0, 200, 1.2},
	{"Complaints received", "decrease", "complaints", 0, 20, 2.0},
	{"Documentation completeness", "increase", "%", 0, 100, 1.0},
	{"Shift punctuality", "increase", "%", 0, 100, 0.8},
}

var seedEmployees = []struct {
	id, name, email, role string
}{
	{"emp-admin", "Admissions Admin", "admin@hospital.example", "admin"},
	{"emp-eval", "Head Nurse", "head.nurse@hospital.example", "evaluator"},
	{"emp-001", "Ward Nurse", "ward.nurse@hospital.example", "employee"},
}

// Seed fills the employee directory and criterion catalog with development
// fixtures. Every insert is conditional, so rerunning is safe.
func Seed(ctx context.Context, pool *pgxpool.Pool) error {
	for _, emp := range seedEmployees {
		if _, err := pool.Exec(ctx, `
      INSERT INTO employee_directory (id, full_name, email, role)
      VALUES ($1,$2,$3,$4)
      ON CONFLICT (id) DO NOTHING
    `, emp.id, emp.name, emp.email, emp.role); err != nil {
			return err
		}
	}

	for _, crit := range seedCriteria {
		if err := ensureCriterion(ctx, pool, crit); err != nil {
			return err
		}
	}
	return nil
}

func ensureCriterion(ctx context.Context, pool *pgxpool.Pool, crit seedCriterion) error {
	var exists bool
	err := pool.QueryRow(ctx, `
    SELECT EXISTS (SELECT 1 FROM criterion_definitions WHERE name = $1 AND deleted_at IS NULL)
  `, crit.name).Scan(&exists)
	if err != nil || exists {
		return err
	}

	_, err = pool.Exec(ctx, `
    INSERT INTO criterion_definitions (id, name, direction, unit, value_min, value_max, default_weight, active)
    VALUES ($1,$2,$3,$4,$5,$6,$7,true)
  `, uuid.NewString(), crit.name, crit.direction, crit.unit, crit.min, crit.max, crit.weight)
	return err
}
