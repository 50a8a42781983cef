package duties

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) Insert(ctx context.Context, duty RoutineDuty) (string, error) {
	id := uuid.NewString()
	_, err := s.DB.Exec(ctx, `
    INSERT INTO routine_duties (id, name, description, default_difficulty, active)
    VALUES ($1,$2,$3,$4,$5)
  `, id, duty.Name, duty.Description, duty.DefaultDifficulty, duty.Active)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) Get(ctx context.Context, id string) (RoutineDuty, error) {
	var duty RoutineDuty
	err := s.DB.QueryRow(ctx, `
    SELECT id, name, description, default_difficulty, active, created_at
    FROM routine_duties
    WHERE id = $1 AND deleted_at IS NULL
  `, id).Scan(&duty.ID, &duty.Name, &duty.Description, &duty.DefaultDifficulty, &duty.Active, &duty.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return RoutineDuty{}, ErrNotFound
	}
	if err != nil {
		return RoutineDuty{}, err
	}
	return duty, nil
}

func (s *Store) ListActive(ctx context.Context) ([]RoutineDuty, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, name, description, default_difficulty, active, created_at
    FROM routine_duties
    WHERE deleted_at IS NULL AND active
    ORDER BY name
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []RoutineDuty
	for rows.Next() {
		var duty RoutineDuty
		if err := rows.Scan(&duty.ID, &duty.Name, &duty.Description, &duty.DefaultDifficulty, &duty.Active, &duty.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, duty)
	}
	return list, rows.Err()
}

func (s *Store) Update(ctx context.Context, duty RoutineDuty) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE routine_duties
    SET name = $1, description = $2, default_difficulty = $3, active = $4
    WHERE id = $5 AND deleted_at IS NULL
  `, duty.Name, duty.Description, duty.DefaultDifficulty, duty.Active, duty.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) SoftDelete(ctx context.Context, id string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE routine_duties SET active = false, deleted_at = now()
    WHERE id = $1 AND deleted_at IS NULL
  `, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) Assign(ctx context.Context, dutyID, employeeID string) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO duty_assignments (duty_id, employee_id)
    VALUES ($1,$2)
    ON CONFLICT (duty_id, employee_id) DO NOTHING
  `, dutyID, employeeID)
	return err
}

func (s *Store) Unassign(ctx context.Context, dutyID, employeeID string) error {
	_, err := s.DB.Exec(ctx, `
    DELETE FROM duty_assignments WHERE duty_id = $1 AND employee_id = $2
  `, dutyID, employeeID)
	return err
}

func (s *Store) ListAssigned(ctx context.Context, employeeID string) ([]AssignedDuty, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT d.id, d.name, d.default_difficulty
    FROM duty_assignments a
    JOIN routine_duties d ON d.id = a.duty_id AND d.deleted_at IS NULL AND d.active
    WHERE a.employee_id = $1
    ORDER BY d.name
  `, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assigned []AssignedDuty
	for rows.Next() {
		var duty AssignedDuty
		if err := rows.Scan(&duty.DutyID, &duty.Name, &duty.DefaultDifficulty); err != nil {
			return nil, err
		}
		assigned = append(assigned, duty)
	}
	return assigned, rows.Err()
}
