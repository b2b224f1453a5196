package issues

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore is a Store backed by PostgreSQL via pgx.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to the database at databaseURL and verifies the
// connection. Run Migrate first to ensure the schema exists.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("issues: parse database url: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("issues: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("issues: ping: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Ping verifies the database is reachable.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) Seed(ctx context.Context, cat Catalog) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("issues: begin seed: %w", err)
	}
	defer tx.Rollback(ctx)

	projectQuery := `INSERT INTO projects (id, name, client, standard, requires_standards)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			client = EXCLUDED.client,
			standard = EXCLUDED.standard,
			requires_standards = EXCLUDED.requires_standards`
	for _, p := range cat.Projects {
		if _, err := tx.Exec(ctx, projectQuery, p.ID, p.Name, p.Client, p.Standard, p.RequiresStandards); err != nil {
			return fmt.Errorf("issues: seed project %q: %w", p.ID, err)
		}
	}

	violationQuery := `INSERT INTO violations (id, name, standard, description)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			standard = EXCLUDED.standard,
			description = EXCLUDED.description`
	for _, v := range cat.Violations {
		if _, err := tx.Exec(ctx, violationQuery, v.ID, v.Name, v.Standard, v.Description); err != nil {
			return fmt.Errorf("issues: seed violation %q: %w", v.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("issues: commit seed: %w", err)
	}
	return nil
}

func (s *PostgresStore) Project(ctx context.Context, id string) (Project, error) {
	query := `SELECT id, name, client, standard, requires_standards FROM projects WHERE id = $1`
	var p Project
	err := s.pool.QueryRow(ctx, query, id).Scan(&p.ID, &p.Name, &p.Client, &p.Standard, &p.RequiresStandards)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Project{}, fmt.Errorf("issues: project %q: %w", id, ErrNotFound)
		}
		return Project{}, fmt.Errorf("issues: query project: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) Projects(ctx context.Context) ([]Project, error) {
	query := `SELECT id, name, client, standard, requires_standards FROM projects ORDER BY id`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("issues: query projects: %w", err)
	}
	defer rows.Close()

	var out []Project
	for rows.Next() {
		var p Project
		if err := rows.Scan(&p.ID, &p.Name, &p.Client, &p.Standard, &p.RequiresStandards); err != nil {
			return nil, fmt.Errorf("issues: scan project: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("issues: read projects: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Violation(ctx context.Context, id string) (Violation, error) {
	query := `SELECT id, name, standard, description FROM violations WHERE id = $1`
	var v Violation
	err := s.pool.QueryRow(ctx, query, id).Scan(&v.ID, &v.Name, &v.Standard, &v.Description)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Violation{}, fmt.Errorf("issues: violation %q: %w", id, ErrNotFound)
		}
		return Violation{}, fmt.Errorf("issues: query violation: %w", err)
	}
	return v, nil
}

func (s *PostgresStore) Violations(ctx context.Context) ([]Violation, error) {
	query := `SELECT id, name, standard, description FROM violations ORDER BY id`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("issues: query violations: %w", err)
	}
	defer rows.Close()

	var out []Violation
	for rows.Next() {
		var v Violation
		if err := rows.Scan(&v.ID, &v.Name, &v.Standard, &v.Description); err != nil {
			return nil, fmt.Errorf("issues: scan violation: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("issues: read violations: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Issue(ctx context.Context, id string) (Issue, error) {
	query := `SELECT id, project_id, violation_id, status, location, notes, assigned_to, created_at, updated_at
		FROM issues WHERE id = $1`
	issue, err := scanIssue(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Issue{}, fmt.Errorf("issues: issue %q: %w", id, ErrNotFound)
		}
		return Issue{}, fmt.Errorf("issues: query issue: %w", err)
	}
	return issue, nil
}

func (s *PostgresStore) IssuesByProject(ctx context.Context, projectID string) ([]Issue, error) {
	query := `SELECT id, project_id, violation_id, status, location, notes, assigned_to, created_at, updated_at
		FROM issues WHERE project_id = $1 ORDER BY created_at, id`
	rows, err := s.pool.Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("issues: query issues: %w", err)
	}
	defer rows.Close()

	out := make([]Issue, 0)
	for rows.Next() {
		issue, err := scanIssue(rows)
		if err != nil {
			return nil, fmt.Errorf("issues: scan issue: %w", err)
		}
		out = append(out, issue)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("issues: read issues: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) CreateIssue(ctx context.Context, issue Issue) (Issue, error) {
	if issue.ID == "" {
		issue.ID = uuid.NewString()
	}
	now := time.Now()
	issue.CreatedAt = now
	issue.UpdatedAt = now

	query := `INSERT INTO issues (id, project_id, violation_id, status, location, notes, assigned_to, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := s.pool.Exec(ctx, query,
		issue.ID, issue.ProjectID, issue.ViolationID, string(issue.Status),
		issue.Location, issue.Notes, issue.AssignedTo, issue.CreatedAt, issue.UpdatedAt)
	if err != nil {
		return Issue{}, fmt.Errorf("issues: insert issue: %w", err)
	}
	return issue, nil
}

func (s *PostgresStore) UpdateIssue(ctx context.Context, issue Issue) (Issue, error) {
	query := `UPDATE issues SET
			violation_id = COALESCE(NULLIF($2, ''), violation_id),
			status = $3,
			location = $4,
			notes = $5,
			assigned_to = $6,
			updated_at = $7
		WHERE id = $1
		RETURNING project_id, violation_id, created_at`
	issue.UpdatedAt = time.Now()
	err := s.pool.QueryRow(ctx, query,
		issue.ID, issue.ViolationID, string(issue.Status),
		issue.Location, issue.Notes, issue.AssignedTo, issue.UpdatedAt,
	).Scan(&issue.ProjectID, &issue.ViolationID, &issue.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Issue{}, fmt.Errorf("issues: issue %q: %w", issue.ID, ErrNotFound)
		}
		return Issue{}, fmt.Errorf("issues: update issue: %w", err)
	}
	return issue, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanIssue(row rowScanner) (Issue, error) {
	var issue Issue
	var status string
	err := row.Scan(
		&issue.ID, &issue.ProjectID, &issue.ViolationID, &status,
		&issue.Location, &issue.Notes, &issue.AssignedTo,
		&issue.CreatedAt, &issue.UpdatedAt,
	)
	if err != nil {
		return Issue{}, err
	}
	issue.Status = Status(status)
	return issue, nil
}
