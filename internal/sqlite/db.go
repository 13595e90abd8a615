package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection
type DB struct {
	*sql.DB
}

// New creates a new SQLite database connection
func New(dataSourceName string) (*DB, error) {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return &DB{db}, nil
}

// RunMigrations creates the schema.
//
// The CHECK on documents pins the core invariant: a row is INDEXED exactly
// when it carries a remote file id. Status and id commit together or the
// write is rejected.
func (db *DB) RunMigrations() error {
	migration := `
-- Projects table: one row per project, mapped to at most one remote index
CREATE TABLE projects (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'ACTIVE' CHECK(status IN ('ACTIVE', 'ARCHIVED')),
    remote_index_id TEXT,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);
CREATE INDEX idx_projects_status ON projects(status);

-- Documents table: metadata + indexing state, never raw bytes
CREATE TABLE documents (
    id TEXT PRIMARY KEY,
    project_id TEXT NOT NULL,
    filename TEXT NOT NULL,
    size INTEGER NOT NULL,
    sha256 TEXT NOT NULL,
    remote_file_id TEXT,
    index_status TEXT NOT NULL DEFAULT 'PENDING' CHECK(index_status IN ('PENDING', 'INDEXED', 'FAILED')),
    uploaded_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL,
    FOREIGN KEY (project_id) REFERENCES projects(id),
    CHECK ((index_status = 'INDEXED') = (remote_file_id IS NOT NULL))
);
CREATE INDEX idx_documents_project ON documents(project_id);
CREATE INDEX idx_documents_sha256 ON documents(project_id, sha256);
CREATE INDEX idx_documents_remote_file ON documents(remote_file_id);

-- Administrative audit trail
CREATE TABLE audit_log (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    project_id TEXT NOT NULL,
    action TEXT NOT NULL,
    detail TEXT,
    created_at TIMESTAMP NOT NULL,
    FOREIGN KEY (project_id) REFERENCES projects(id)
);
CREATE INDEX idx_audit_project ON audit_log(project_id);
`

	_, err := db.Exec(migration)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
