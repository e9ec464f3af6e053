package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"sahaya/internal/casefile/models"
	"sahaya/pkg/domain"
	"sahaya/pkg/platform/sentinel"
)

// Postgres persists case aggregates as one JSONB row per case. Category,
// status, and assignee are lifted into columns for filtering; the version
// column carries the optimistic-concurrency token.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// Migrate creates the cases table. Idempotent.
func (s *Postgres) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS cases (
			id          TEXT PRIMARY KEY,
			category    TEXT NOT NULL,
			status      TEXT NOT NULL,
			assigned_to TEXT NOT NULL DEFAULT '',
			payload     JSONB NOT NULL,
			version     BIGINT NOT NULL,
			created_at  TIMESTAMPTZ NOT NULL,
			updated_at  TIMESTAMPTZ NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("migrate cases table: %w", err)
	}
	return nil
}

func (s *Postgres) Create(ctx context.Context, c *models.Case) error {
	payload, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal case %s: %w", c.ID, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO cases (id, category, status, assigned_to, payload, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		c.ID.String(), c.Category.String(), c.Status.String(), c.AssignedTo.String(),
		payload, c.Version, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrAlreadyExists
		}
		return fmt.Errorf("insert case %s: %w", c.ID, err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, id domain.CaseID) (*models.Case, error) {
	row := s.db.QueryRowContext(ctx, `SELECT payload FROM cases WHERE id = $1`, id.String())
	return scanCase(row)
}

func (s *Postgres) List(ctx context.Context, filter Filter) ([]*models.Case, error) {
	query := `SELECT payload FROM cases WHERE 1=1`
	args := []any{}
	if filter.Category != "" {
		args = append(args, filter.Category.String())
		query += fmt.Sprintf(" AND category = $%d", len(args))
	}
	if !filter.Assignee.IsZero() {
		args = append(args, filter.Assignee.String())
		query += fmt.Sprintf(" AND assigned_to = $%d", len(args))
	}
	query += ` ORDER BY created_at`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list cases: %w", err)
	}
	defer rows.Close()

	var out []*models.Case
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan case row: %w", err)
		}
		var c models.Case
		if err := json.Unmarshal(payload, &c); err != nil {
			return nil, fmt.Errorf("unmarshal case payload: %w", err)
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

// Update commits a caller-held copy; the version predicate makes stale writes
// lose with ErrConflict.
func (s *Postgres) Update(ctx context.Context, c *models.Case) error {
	next := c.Clone()
	next.Version++
	payload, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("marshal case %s: %w", c.ID, err)
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE cases
		SET status = $2, assigned_to = $3, payload = $4, version = $5, updated_at = $6
		WHERE id = $1 AND version = $7`,
		c.ID.String(), next.Status.String(), next.AssignedTo.String(),
		payload, next.Version, next.UpdatedAt, c.Version,
	)
	if err != nil {
		return fmt.Errorf("update case %s: %w", c.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update case %s: %w", c.ID, err)
	}
	if affected == 0 {
		if _, findErr := s.FindByID(ctx, c.ID); errors.Is(findErr, sentinel.ErrNotFound) {
			return sentinel.ErrNotFound
		}
		return sentinel.ErrConflict
	}
	return nil
}

// Execute locks the case row FOR UPDATE, runs validate then mutate inside the
// transaction, and commits the bumped version. The row lock makes the
// precondition check and the write one atomic unit.
func (s *Postgres) Execute(ctx context.Context, id domain.CaseID, validate func(c *models.Case) error, mutate func(c *models.Case)) (*models.Case, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin case tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx, `SELECT payload FROM cases WHERE id = $1 FOR UPDATE`, id.String())
	working, err := scanCase(row)
	if err != nil {
		return nil, err
	}
	if validate != nil {
		if err := validate(working); err != nil {
			return nil, err
		}
	}
	mutate(working)
	working.Version++

	payload, err := json.Marshal(working)
	if err != nil {
		return nil, fmt.Errorf("marshal case %s: %w", id, err)
	}
	_, err = tx.ExecContext(ctx, `
		UPDATE cases
		SET status = $2, assigned_to = $3, payload = $4, version = $5, updated_at = $6
		WHERE id = $1`,
		id.String(), working.Status.String(), working.AssignedTo.String(),
		payload, working.Version, working.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("write case %s: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit case %s: %w", id, err)
	}
	return working, nil
}

func scanCase(row *sql.Row) (*models.Case, error) {
	var payload []byte
	if err := row.Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan case: %w", err)
	}
	var c models.Case
	if err := json.Unmarshal(payload, &c); err != nil {
		return nil, fmt.Errorf("unmarshal case payload: %w", err)
	}
	return &c, nil
}

// isUniqueViolation matches the postgres unique_violation SQLSTATE without
// binding to a driver-specific error type.
func isUniqueViolation(err error) bool {
	type sqlState interface{ SQLState() string }
	var state sqlState
	if errors.As(err, &state) {
		return state.SQLState() == "23505"
	}
	return false
}
