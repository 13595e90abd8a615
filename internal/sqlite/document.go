package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"ragdesk/internal/domain/document"
	"ragdesk/internal/repository"
)

// DocumentRepository implements document.Repository for SQLite
type DocumentRepository struct {
	db *DB
}

var _ document.Repository = (*DocumentRepository)(nil)

// NewDocumentRepository creates a new DocumentRepository
func NewDocumentRepository(db *DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

const documentColumns = `id, project_id, filename, size, sha256, remote_file_id, index_status, uploaded_at, updated_at`

// Create creates a new document record
func (r *DocumentRepository) Create(ctx context.Context, doc *document.Document) error {
	query := `
		INSERT INTO documents (` + documentColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		doc.ID,
		doc.ProjectID,
		doc.Filename,
		doc.Size,
		doc.SHA256,
		nullable(doc.RemoteFileID),
		string(doc.IndexStatus),
		doc.UploadedAt,
		doc.UpdatedAt,
	)

	if err != nil {
		if isForeignKeyViolation(err) {
			return repository.ErrForeignKeyViolation
		}
		if isConstraintViolation(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("failed to create document: %w", err)
	}

	return nil
}

// Get retrieves a document by ID
func (r *DocumentRepository) Get(ctx context.Context, id string) (*document.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = ?`
	return r.scanDocument(r.db.QueryRowContext(ctx, query, id))
}

// ListByProject returns a project's documents, newest first
func (r *DocumentRepository) ListByProject(ctx context.Context, projectID string) ([]document.Document, error) {
	query := `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE project_id = ?
		ORDER BY uploaded_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	return collectDocuments(rows)
}

// Delete removes a document record
func (r *DocumentRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return requireRowAffected(result)
}

// MarkIndexed commits the PENDING -> INDEXED transition and the remote
// file id assignment in a single statement, so neither is ever observed
// without the other.
func (r *DocumentRepository) MarkIndexed(ctx context.Context, id, remoteFileID string) error {
	query := `
		UPDATE documents
		SET index_status = ?, remote_file_id = ?, updated_at = ?
		WHERE id = ? AND index_status = ? AND remote_file_id IS NULL
	`

	result, err := r.db.ExecContext(ctx, query,
		string(document.StatusIndexed), remoteFileID, time.Now().UTC(),
		id, string(document.StatusPending))
	if err != nil {
		return fmt.Errorf("failed to mark document indexed: %w", err)
	}
	return r.requireTransition(ctx, result, id)
}

// MarkFailed demotes a PENDING or INDEXED document to FAILED, clearing any
// stale remote file id so the store invariant holds.
func (r *DocumentRepository) MarkFailed(ctx context.Context, id string) error {
	query := `
		UPDATE documents
		SET index_status = ?, remote_file_id = NULL, updated_at = ?
		WHERE id = ? AND index_status IN (?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		string(document.StatusFailed), time.Now().UTC(),
		id, string(document.StatusPending), string(document.StatusIndexed))
	if err != nil {
		return fmt.Errorf("failed to mark document failed: %w", err)
	}
	return r.requireTransition(ctx, result, id)
}

// MarkPending resets a FAILED document for an explicit retry.
func (r *DocumentRepository) MarkPending(ctx context.Context, id string) error {
	query := `
		UPDATE documents
		SET index_status = ?, updated_at = ?
		WHERE id = ? AND index_status = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		string(document.StatusPending), time.Now().UTC(),
		id, string(document.StatusFailed))
	if err != nil {
		return fmt.Errorf("failed to mark document pending: %w", err)
	}
	return r.requireTransition(ctx, result, id)
}

// WithoutRemoteID returns documents whose indexing never completed
func (r *DocumentRepository) WithoutRemoteID(ctx context.Context, projectID string) ([]document.Document, error) {
	query := `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE project_id = ? AND remote_file_id IS NULL
		ORDER BY uploaded_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list unindexed documents: %w", err)
	}
	defer rows.Close()

	return collectDocuments(rows)
}

// FindOrphanedRemoteFiles returns remote file ids from the given index
// listing that no local document claims.
func (r *DocumentRepository) FindOrphanedRemoteFiles(ctx context.Context, projectID string, remoteListing []string) ([]string, error) {
	query := `
		SELECT remote_file_id
		FROM documents
		WHERE project_id = ? AND remote_file_id IS NOT NULL
	`

	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list remote file ids: %w", err)
	}
	defer rows.Close()

	known := make(map[string]struct{})
	for rows.Next() {
		var fileID string
		if err := rows.Scan(&fileID); err != nil {
			return nil, fmt.Errorf("failed to scan remote file id: %w", err)
		}
		known[fileID] = struct{}{}
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating remote file ids: %w", err)
	}

	var orphans []string
	for _, fileID := range remoteListing {
		if _, ok := known[fileID]; !ok {
			orphans = append(orphans, fileID)
		}
	}
	sort.Strings(orphans)
	return orphans, nil
}

// FindByContentHash returns the project's document with the given sha256, if any
func (r *DocumentRepository) FindByContentHash(ctx context.Context, projectID, sha256 string) (*document.Document, error) {
	query := `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE project_id = ? AND sha256 = ?
		LIMIT 1
	`
	return r.scanDocument(r.db.QueryRowContext(ctx, query, projectID, sha256))
}

// FindByRemoteFileID maps a remote file id back to the local document
func (r *DocumentRepository) FindByRemoteFileID(ctx context.Context, projectID, remoteFileID string) (*document.Document, error) {
	query := `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE project_id = ? AND remote_file_id = ?
	`
	return r.scanDocument(r.db.QueryRowContext(ctx, query, projectID, remoteFileID))
}

// requireTransition distinguishes a missing row from a state-machine
// violation when a guarded update touched nothing.
func (r *DocumentRepository) requireTransition(ctx context.Context, result sql.Result, id string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected > 0 {
		return nil
	}
	if _, err := r.Get(ctx, id); err != nil {
		return err
	}
	return repository.ErrInvalidTransition
}

func (r *DocumentRepository) scanDocument(row *sql.Row) (*document.Document, error) {
	var doc document.Document
	var remoteFileID sql.NullString
	err := row.Scan(
		&doc.ID,
		&doc.ProjectID,
		&doc.Filename,
		&doc.Size,
		&doc.SHA256,
		&remoteFileID,
		&doc.IndexStatus,
		&doc.UploadedAt,
		&doc.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	doc.RemoteFileID = remoteFileID.String
	return &doc, nil
}

func collectDocuments(rows *sql.Rows) ([]document.Document, error) {
	var docs []document.Document
	for rows.Next() {
		var doc document.Document
		var remoteFileID sql.NullString
		err := rows.Scan(
			&doc.ID,
			&doc.ProjectID,
			&doc.Filename,
			&doc.Size,
			&doc.SHA256,
			&remoteFileID,
			&doc.IndexStatus,
			&doc.UploadedAt,
			&doc.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		doc.RemoteFileID = remoteFileID.String
		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating document rows: %w", err)
	}

	return docs, nil
}
