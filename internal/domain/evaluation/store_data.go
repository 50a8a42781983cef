package evaluation

import (
	"context"
	"encoding/json"
	"errors"
	"time"

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

const dutyColumns = `
    d.id, d.evaluation_id, d.duty_id, d.duty_name, d.employee_id, d.difficulty,
    d.entries_json, d.criteria_total, d.duty_score, d.notes, d.created_at, d.updated_at,
    (SELECT COUNT(1) FROM work_items w
     WHERE w.duty_id = d.duty_id AND w.assignee_id = d.employee_id AND w.deleted_at IS NULL)
`

func (s *Store) InsertEvaluation(ctx context.Context, eval KPIEvaluation, duties []DutyEvaluation) (string, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	id := uuid.NewString()
	if _, err := tx.Exec(ctx, `
    INSERT INTO kpi_evaluations (id, cycle_id, employee_id, evaluator_id, total_score, status)
    VALUES ($1,$2,$3,$4,0,$5)
  `, id, eval.CycleID, eval.EmployeeID, eval.EvaluatorID, StatusUnapproved); err != nil {
		return "", err
	}

	for _, duty := range duties {
		if _, err := tx.Exec(ctx, `
      INSERT INTO duty_evaluations (id, evaluation_id, duty_id, duty_name, employee_id, difficulty, entries_json, criteria_total, duty_score, notes)
      VALUES ($1,$2,$3,$4,$5,$6,'[]',0,0,$7)
    `, uuid.NewString(), id, duty.DutyID, duty.DutyName, eval.EmployeeID, duty.Difficulty, duty.Notes); err != nil {
			return "", err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) GetEvaluation(ctx context.Context, id string) (KPIEvaluation, error) {
	var eval KPIEvaluation
	err := s.DB.QueryRow(ctx, `
    SELECT id, cycle_id, employee_id, evaluator_id, total_score, status, remarks, feedback, approved_at, created_at
    FROM kpi_evaluations
    WHERE id = $1 AND deleted_at IS NULL
  `, id).Scan(&eval.ID, &eval.CycleID, &eval.EmployeeID, &eval.EvaluatorID, &eval.TotalScore, &eval.Status, &eval.Remarks, &eval.Feedback, &eval.ApprovedAt, &eval.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return KPIEvaluation{}, ErrNotFound
	}
	if err != nil {
		return KPIEvaluation{}, err
	}

	rows, err := s.DB.Query(ctx, `
    SELECT `+dutyColumns+`
    FROM duty_evaluations d
    WHERE d.evaluation_id = $1 AND d.deleted_at IS NULL
    ORDER BY d.duty_name
  `, id)
	if err != nil {
		return KPIEvaluation{}, err
	}
	defer rows.Close()

	for rows.Next() {
		duty, err := scanDuty(rows)
		if err != nil {
			return KPIEvaluation{}, err
		}
		eval.Duties = append(eval.Duties, duty)
	}
	return eval, rows.Err()
}

func (s *Store) ListEvaluations(ctx context.Context, cycleID, employeeID string, limit, offset int) ([]KPIEvaluation, error) {
	query := `
    SELECT id, cycle_id, employee_id, evaluator_id, total_score, status, remarks, feedback, approved_at, created_at
    FROM kpi_evaluations
    WHERE deleted_at IS NULL
  `
	args := []any{}
	if cycleID != "" {
		args = append(args, cycleID)
		query += " AND cycle_id = $1"
	}
	if employeeID != "" {
		args = append(args, employeeID)
		if len(args) == 1 {
			query += " AND employee_id = $1"
		} else {
			query += " AND employee_id = $2"
		}
	}
	args = append(args, limit, offset)
	switch len(args) {
	case 2:
		query += " ORDER BY created_at DESC LIMIT $1 OFFSET $2"
	case 3:
		query += " ORDER BY created_at DESC LIMIT $2 OFFSET $3"
	default:
		query += " ORDER BY created_at DESC LIMIT $3 OFFSET $4"
	}

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var evals []KPIEvaluation
	for rows.Next() {
		var eval KPIEvaluation
		if err := rows.Scan(&eval.ID, &eval.CycleID, &eval.EmployeeID, &eval.EvaluatorID, &eval.TotalScore, &eval.Status, &eval.Remarks, &eval.Feedback, &eval.ApprovedAt, &eval.CreatedAt); err != nil {
			return nil, err
		}
		evals = append(evals, eval)
	}
	return evals, rows.Err()
}

func (s *Store) SoftDeleteEvaluation(ctx context.Context, id string) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
    UPDATE kpi_evaluations SET deleted_at = now() WHERE id = $1 AND deleted_at IS NULL
  `, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	if _, err := tx.Exec(ctx, `
    UPDATE duty_evaluations SET deleted_at = now() WHERE evaluation_id = $1 AND deleted_at IS NULL
  `, id); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Store) GetDuty(ctx context.Context, id string) (DutyEvaluation, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT `+dutyColumns+`
    FROM duty_evaluations d
    WHERE d.id = $1 AND d.deleted_at IS NULL
  `, id)
	duty, err := scanDuty(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return DutyEvaluation{}, ErrDutyNotFound
	}
	if err != nil {
		return DutyEvaluation{}, err
	}
	return duty, nil
}

// UpdateDutyScores replaces the entry list and derived scores, then
// re-aggregates the parent total from all surviving children inside the
// same transaction. The full re-sum keeps concurrent duty saves from
// losing each other's contribution.
func (s *Store) UpdateDutyScores(ctx context.Context, duty DutyEvaluation) error {
	entriesJSON, err := json.Marshal(duty.Entries)
	if err != nil {
		return err
	}

	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
    UPDATE duty_evaluations
    SET entries_json = $1, criteria_total = $2, duty_score = $3, difficulty = $4, notes = $5, updated_at = now()
    WHERE id = $6 AND deleted_at IS NULL
  `, entriesJSON, duty.CriteriaTotal, duty.DutyScore, duty.Difficulty, duty.Notes, duty.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrDutyNotFound
	}

	if err := recomputeTotalTx(ctx, tx, duty.EvaluationID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Store) SoftDeleteDuty(ctx context.Context, id string) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var evaluationID string
	err = tx.QueryRow(ctx, `
    UPDATE duty_evaluations SET deleted_at = now()
    WHERE id = $1 AND deleted_at IS NULL
    RETURNING evaluation_id
  `, id).Scan(&evaluationID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrDutyNotFound
	}
	if err != nil {
		return err
	}

	if err := recomputeTotalTx(ctx, tx, evaluationID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Store) RecomputeTotal(ctx context.Context, evaluationID string) (float64, error) {
	var total float64
	err := s.DB.QueryRow(ctx, `
    UPDATE kpi_evaluations
    SET total_score = (
      SELECT COALESCE(SUM(duty_score), 0)
      FROM duty_evaluations
      WHERE evaluation_id = $1 AND deleted_at IS NULL
    )
    WHERE id = $1 AND deleted_at IS NULL
    RETURNING total_score
  `, evaluationID).Scan(&total)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrNotFound
	}
	return total, err
}

func recomputeTotalTx(ctx context.Context, tx pgx.Tx, evaluationID string) error {
	_, err := tx.Exec(ctx, `
    UPDATE kpi_evaluations
    SET total_score = (
      SELECT COALESCE(SUM(duty_score), 0)
      FROM duty_evaluations
      WHERE evaluation_id = $1 AND deleted_at IS NULL
    )
    WHERE id = $1 AND deleted_at IS NULL
  `, evaluationID)
	return err
}

func (s *Store) SetApproval(ctx context.Context, id, status, remarks string, approvedAt *time.Time) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE kpi_evaluations
    SET status = $1, remarks = $2, approved_at = $3
    WHERE id = $4 AND deleted_at IS NULL
  `, status, remarks, approvedAt, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) SetFeedback(ctx context.Context, id, text string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE kpi_evaluations SET feedback = $1 WHERE id = $2 AND deleted_at IS NULL
  `, text, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) InsertCycle(ctx context.Context, cycle EvaluationCycle) (string, error) {
	criteriaJSON, err := json.Marshal(cycle.Criteria)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	if _, err := s.DB.Exec(ctx, `
    INSERT INTO evaluation_cycles (id, name, start_date, end_date, status, criteria_json)
    VALUES ($1,$2,$3,$4,$5,$6)
  `, id, cycle.Name, cycle.StartDate, cycle.EndDate, cycle.Status, criteriaJSON); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) GetCycle(ctx context.Context, id string) (EvaluationCycle, error) {
	var cycle EvaluationCycle
	var criteriaJSON []byte
	err := s.DB.QueryRow(ctx, `
    SELECT id, name, start_date, end_date, status, criteria_json, created_at
    FROM evaluation_cycles
    WHERE id = $1
  `, id).Scan(&cycle.ID, &cycle.Name, &cycle.StartDate, &cycle.EndDate, &cycle.Status, &criteriaJSON, &cycle.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return EvaluationCycle{}, ErrCycleNotFound
	}
	if err != nil {
		return EvaluationCycle{}, err
	}
	if err := json.Unmarshal(criteriaJSON, &cycle.Criteria); err != nil {
		cycle.Criteria = nil
	}
	return cycle, nil
}

func (s *Store) ListCycles(ctx context.Context) ([]EvaluationCycle, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, name, start_date, end_date, status, criteria_json, created_at
    FROM evaluation_cycles
    ORDER BY start_date DESC
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cycles []EvaluationCycle
	for rows.Next() {
		var cycle EvaluationCycle
		var criteriaJSON []byte
		if err := rows.Scan(&cycle.ID, &cycle.Name, &cycle.StartDate, &cycle.EndDate, &cycle.Status, &criteriaJSON, &cycle.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(criteriaJSON, &cycle.Criteria); err != nil {
			cycle.Criteria = nil
		}
		cycles = append(cycles, cycle)
	}
	return cycles, rows.Err()
}

func (s *Store) UpdateCycle(ctx context.Context, cycle EvaluationCycle) error {
	criteriaJSON, err := json.Marshal(cycle.Criteria)
	if err != nil {
		return err
	}
	tag, err := s.DB.Exec(ctx, `
    UPDATE evaluation_cycles
    SET name = $1, start_date = $2, end_date = $3, status = $4, criteria_json = $5
    WHERE id = $6
  `, cycle.Name, cycle.StartDate, cycle.EndDate, cycle.Status, criteriaJSON, cycle.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrCycleNotFound
	}
	return nil
}

func scanDuty(row pgx.Row) (DutyEvaluation, error) {
	var duty DutyEvaluation
	var entriesJSON []byte
	if err := row.Scan(&duty.ID, &duty.EvaluationID, &duty.DutyID, &duty.DutyName, &duty.EmployeeID, &duty.Difficulty,
		&entriesJSON, &duty.CriteriaTotal, &duty.DutyScore, &duty.Notes, &duty.CreatedAt, &duty.UpdatedAt, &duty.WorkItemCount); err != nil {
		return DutyEvaluation{}, err
	}
	if err := json.Unmarshal(entriesJSON, &duty.Entries); err != nil {
		duty.Entries = nil
	}
	return duty, nil
}
