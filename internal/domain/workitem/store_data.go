package workitem

import (
	"context"
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

func (s *Store) InsertWorkItem(ctx context.Context, item WorkItem) (string, error) {
	id := uuid.NewString()
	var dutyID any
	if item.DutyID != "" {
		dutyID = item.DutyID
	}
	_, err := s.DB.Exec(ctx, `
    INSERT INTO work_items (id, title, details, assigner_id, assignee_id, duty_id, deadline, state)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
  `, id, item.Title, item.Details, item.AssignerID, item.AssigneeID, dutyID, item.Deadline, item.State)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) GetWorkItem(ctx context.Context, id string) (WorkItem, error) {
	var item WorkItem
	var dutyID *string
	err := s.DB.QueryRow(ctx, `
    SELECT id, title, details, assigner_id, assignee_id, duty_id, deadline, state, created_at
    FROM work_items
    WHERE id = $1 AND deleted_at IS NULL
  `, id).Scan(&item.ID, &item.Title, &item.Details, &item.AssignerID, &item.AssigneeID, &dutyID, &item.Deadline, &item.State, &item.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return WorkItem{}, ErrNotFound
	}
	if err != nil {
		return WorkItem{}, err
	}
	if dutyID != nil {
		item.DutyID = *dutyID
	}
	return item, nil
}

func (s *Store) ListWorkItems(ctx context.Context, assigneeID, state string, limit, offset int) ([]WorkItem, error) {
	query := `
    SELECT id, title, details, assigner_id, assignee_id, duty_id, deadline, state, created_at
    FROM work_items
    WHERE deleted_at IS NULL
  `
	args := []any{}
	if assigneeID != "" {
		args = append(args, assigneeID)
		query += " AND assignee_id = $1"
	}
	if state != "" {
		args = append(args, state)
		if len(args) == 1 {
			query += " AND state = $1"
		} else {
			query += " AND state = $2"
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
	return scanWorkItems(rows)
}

func (s *Store) GetStateRecord(ctx context.Context, workItemID string) (TaskStateRecord, error) {
	item, err := s.GetWorkItem(ctx, workItemID)
	if err != nil {
		return TaskStateRecord{}, err
	}

	rows, err := s.DB.Query(ctx, `
    SELECT from_state, to_state, actor_id, occurred_at, reason, note
    FROM task_state_history
    WHERE work_item_id = $1
    ORDER BY occurred_at, id
  `, workItemID)
	if err != nil {
		return TaskStateRecord{}, err
	}
	defer rows.Close()

	record := TaskStateRecord{WorkItemID: workItemID, CurrentState: item.State}
	for rows.Next() {
		var entry TransitionEntry
		if err := rows.Scan(&entry.FromState, &entry.ToState, &entry.ActorID, &entry.At, &entry.Reason, &entry.Note); err != nil {
			return TaskStateRecord{}, err
		}
		record.History = append(record.History, entry)
	}
	return record, rows.Err()
}

// ApplyTransition appends one history row and moves the current state in a
// single transaction so the shadow record can never drift from its history.
func (s *Store) ApplyTransition(ctx context.Context, workItemID string, entry TransitionEntry) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
    UPDATE work_items SET state = $1 WHERE id = $2 AND deleted_at IS NULL
  `, entry.ToState, workItemID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	if _, err := tx.Exec(ctx, `
    INSERT INTO task_state_history (id, work_item_id, from_state, to_state, actor_id, occurred_at, reason, note)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
  `, uuid.NewString(), workItemID, entry.FromState, entry.ToState, entry.ActorID, entry.At, entry.Reason, entry.Note); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (s *Store) ListOverdueCandidates(ctx context.Context, states []string, before time.Time) ([]WorkItem, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, title, details, assigner_id, assignee_id, duty_id, deadline, state, created_at
    FROM work_items
    WHERE deleted_at IS NULL AND state = ANY($1) AND deadline IS NOT NULL AND deadline < $2
  `, states, before)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanWorkItems(rows)
}

func (s *Store) ListStalePendingApproval(ctx context.Context, olderThan time.Time) ([]WorkItem, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT w.id, w.title, w.details, w.assigner_id, w.assignee_id, w.duty_id, w.deadline, w.state, w.created_at
    FROM work_items w
    WHERE w.deleted_at IS NULL
      AND w.state = $1
      AND (SELECT MAX(h.occurred_at) FROM task_state_history h WHERE h.work_item_id = w.id) < $2
  `, StatePendingApproval, olderThan)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanWorkItems(rows)
}

func (s *Store) SoftDeleteWorkItem(ctx context.Context, id string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE work_items SET deleted_at = now() WHERE id = $1 AND deleted_at IS NULL
  `, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanWorkItems(rows pgx.Rows) ([]WorkItem, error) {
	var items []WorkItem
	for rows.Next() {
		var item WorkItem
		var dutyID *string
		if err := rows.Scan(&item.ID, &item.Title, &item.Details, &item.AssignerID, &item.AssigneeID, &dutyID, &item.Deadline, &item.State, &item.CreatedAt); err != nil {
			return nil, err
		}
		if dutyID != nil {
			item.DutyID = *dutyID
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
