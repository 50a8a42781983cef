package criteria

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

func (s *Store) Insert(ctx context.Context, def CriterionDefinition) (string, error) {
	id := uuid.NewString()
	_, err := s.DB.Exec(ctx, `
    INSERT INTO criterion_definitions (id, name, direction, unit, value_min, value_max, default_weight, active)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
  `, id, def.Name, def.Direction, def.Unit, def.ValueMin, def.ValueMax, def.DefaultWeight, def.Active)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) Get(ctx context.Context, id string) (CriterionDefinition, error) {
	var def CriterionDefinition
	err := s.DB.QueryRow(ctx, `
    SELECT id, name, direction, unit, value_min, value_max, default_weight, active, created_at, deleted_at
    FROM criterion_definitions
    WHERE id = $1 AND deleted_at IS NULL
  `, id).Scan(&def.ID, &def.Name, &def.Direction, &def.Unit, &def.ValueMin, &def.ValueMax, &def.DefaultWeight, &def.Active, &def.CreatedAt, &def.DeletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return CriterionDefinition{}, ErrNotFound
	}
	if err != nil {
		return CriterionDefinition{}, err
	}
	return def, nil
}

func (s *Store) ListActive(ctx context.Context) ([]CriterionDefinition, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, name, direction, unit, value_min, value_max, default_weight, active, created_at, deleted_at
    FROM criterion_definitions
    WHERE deleted_at IS NULL AND active
    ORDER BY name
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDefinitions(rows)
}

func (s *Store) ListByIDs(ctx context.Context, ids []string) ([]CriterionDefinition, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := s.DB.Query(ctx, `
    SELECT id, name, direction, unit, value_min, value_max, default_weight, active, created_at, deleted_at
    FROM criterion_definitions
    WHERE id = ANY($1) AND deleted_at IS NULL
  `, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDefinitions(rows)
}

func (s *Store) Update(ctx context.Context, def CriterionDefinition) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE criterion_definitions
    SET name = $1, direction = $2, unit = $3, value_min = $4, value_max = $5, default_weight = $6, active = $7
    WHERE id = $8 AND deleted_at IS NULL
  `, def.Name, def.Direction, def.Unit, def.ValueMin, def.ValueMax, def.DefaultWeight, def.Active, def.ID)
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
    UPDATE criterion_definitions
    SET active = false, deleted_at = now()
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

func scanDefinitions(rows pgx.Rows) ([]CriterionDefinition, error) {
	var defs []CriterionDefinition
	for rows.Next() {
		var def CriterionDefinition
		if err := rows.Scan(&def.ID, &def.Name, &def.Direction, &def.Unit, &def.ValueMin, &def.ValueMax, &def.DefaultWeight, &def.Active, &def.CreatedAt, &def.DeletedAt); err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, rows.Err()
}
