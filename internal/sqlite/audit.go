package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"ragdesk/internal/domain/audit"
	"ragdesk/internal/repository"
)

// AuditRepository implements audit.Repository for SQLite
type AuditRepository struct {
	db *DB
}

var _ audit.Repository = (*AuditRepository)(nil)

// NewAuditRepository creates a new AuditRepository
func NewAuditRepository(db *DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Append writes one audit entry
func (r *AuditRepository) Append(ctx context.Context, entry *audit.Entry) error {
	query := `
		INSERT INTO audit_log (project_id, action, detail, created_at)
		VALUES (?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		entry.ProjectID,
		entry.Action,
		entry.Detail,
		entry.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return repository.ErrForeignKeyViolation
		}
		return fmt.Errorf("failed to append audit entry: %w", err)
	}

	if id, err := result.LastInsertId(); err == nil {
		entry.ID = id
	}
	return nil
}

// List returns a project's most recent audit entries, newest first
func (r *AuditRepository) List(ctx context.Context, projectID string, limit int) ([]audit.Entry, error) {
	query := `
		SELECT id, project_id, action, detail, created_at
		FROM audit_log
		WHERE project_id = ?
		ORDER BY id DESC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, projectID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	defer rows.Close()

	var entries []audit.Entry
	for rows.Next() {
		var entry audit.Entry
		var detail sql.NullString
		err := rows.Scan(
			&entry.ID,
			&entry.ProjectID,
			&entry.Action,
			&detail,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		entry.Detail = detail.String
		entries = append(entries, entry)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit rows: %w", err)
	}

	return entries, nil
}
