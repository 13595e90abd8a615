package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"ragdesk/internal/domain/project"
	"ragdesk/internal/repository"
)

// ProjectRepository implements project.Repository for SQLite
type ProjectRepository struct {
	db *DB
}

var _ project.Repository = (*ProjectRepository)(nil)

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Create creates a new project
func (r *ProjectRepository) Create(ctx context.Context, proj *project.Project) error {
	query := `
		INSERT INTO projects (id, name, status, remote_index_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		proj.ID,
		proj.Name,
		string(proj.Status),
		nullable(proj.RemoteIndexID),
		proj.CreatedAt,
		proj.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}

	return nil
}

// Get retrieves a project by ID
func (r *ProjectRepository) Get(ctx context.Context, id string) (*project.Project, error) {
	query := `
		SELECT id, name, status, remote_index_id, created_at, updated_at
		FROM projects
		WHERE id = ?
	`

	return r.scanProject(r.db.QueryRowContext(ctx, query, id))
}

// List returns projects, newest first, optionally restricted to ACTIVE ones
func (r *ProjectRepository) List(ctx context.Context, activeOnly bool) ([]project.Project, error) {
	query := `
		SELECT id, name, status, remote_index_id, created_at, updated_at
		FROM projects
	`
	var args []any
	if activeOnly {
		query += ` WHERE status = ?`
		args = append(args, string(project.StatusActive))
	}
	query += ` ORDER BY updated_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []project.Project
	for rows.Next() {
		var proj project.Project
		var remoteIndexID sql.NullString
		err := rows.Scan(
			&proj.ID,
			&proj.Name,
			&proj.Status,
			&remoteIndexID,
			&proj.CreatedAt,
			&proj.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		proj.RemoteIndexID = remoteIndexID.String
		projects = append(projects, proj)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating project rows: %w", err)
	}

	return projects, nil
}

// Rename updates the project name
func (r *ProjectRepository) Rename(ctx context.Context, id, name string) error {
	query := `
		UPDATE projects
		SET name = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query, name, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to rename project: %w", err)
	}
	return requireRowAffected(result)
}

// SetStatus updates the project lifecycle status
func (r *ProjectRepository) SetStatus(ctx context.Context, id string, status project.Status) error {
	query := `
		UPDATE projects
		SET status = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query, string(status), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to set project status: %w", err)
	}
	return requireRowAffected(result)
}

// ClaimRemoteIndex sets the remote index id only if it is still unset.
// Returns true when this writer won the claim; a concurrent writer that
// lost must discard the duplicate index it created.
func (r *ProjectRepository) ClaimRemoteIndex(ctx context.Context, id, remoteIndexID string) (bool, error) {
	query := `
		UPDATE projects
		SET remote_index_id = ?, updated_at = ?
		WHERE id = ? AND remote_index_id IS NULL
	`

	result, err := r.db.ExecContext(ctx, query, remoteIndexID, time.Now().UTC(), id)
	if err != nil {
		return false, fmt.Errorf("failed to claim remote index: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected > 0 {
		return true, nil
	}

	// Either the project is missing or the index is already claimed.
	if _, err := r.Get(ctx, id); err != nil {
		return false, err
	}
	return false, nil
}

func (r *ProjectRepository) scanProject(row *sql.Row) (*project.Project, error) {
	var proj project.Project
	var remoteIndexID sql.NullString
	err := row.Scan(
		&proj.ID,
		&proj.Name,
		&proj.Status,
		&remoteIndexID,
		&proj.CreatedAt,
		&proj.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	proj.RemoteIndexID = remoteIndexID.String
	return &proj, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func requireRowAffected(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}
