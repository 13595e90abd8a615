package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// NewTestDB creates a new in-memory SQLite database for testing
func NewTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(":memory:")
	require.NoError(t, err, "failed to create test database")

	err = db.RunMigrations()
	require.NoError(t, err, "failed to run migrations")

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// TestMigrations verifies that migrations run successfully
func TestMigrations(t *testing.T) {
	db := NewTestDB(t)

	tables := []string{
		"projects",
		"documents",
		"audit_log",
	}

	for _, table := range tables {
		var count int
		err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&count)
		require.NoError(t, err, "failed to query table %s", table)
		require.Equal(t, 1, count, "table %s not found", table)
	}
}

// TestForeignKeys verifies that foreign key constraints are enabled
func TestForeignKeys(t *testing.T) {
	db := NewTestDB(t)

	var enabled int
	err := db.QueryRow("PRAGMA foreign_keys").Scan(&enabled)
	require.NoError(t, err)
	require.Equal(t, 1, enabled, "foreign keys not enabled")
}

// TestDocumentInvariant verifies the CHECK pinning INDEXED to a non-null
// remote_file_id: neither half of the pair can be written alone.
func TestDocumentInvariant(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	_, err := db.ExecContext(ctx,
		`INSERT INTO projects (id, name, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		"p1", "Manuals", "ACTIVE", now, now)
	require.NoError(t, err)

	// INDEXED without a remote file id must be rejected
	_, err = db.ExecContext(ctx,
		`INSERT INTO documents (id, project_id, filename, size, sha256, remote_file_id, index_status, uploaded_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, NULL, 'INDEXED', ?, ?)`,
		"d1", "p1", "guide.pdf", 10, "abc", now, now)
	require.Error(t, err, "INDEXED row without remote_file_id should fail")

	// A remote file id on a PENDING row must be rejected
	_, err = db.ExecContext(ctx,
		`INSERT INTO documents (id, project_id, filename, size, sha256, remote_file_id, index_status, uploaded_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, 'file_1', 'PENDING', ?, ?)`,
		"d2", "p1", "guide.pdf", 10, "abc", now, now)
	require.Error(t, err, "PENDING row with remote_file_id should fail")

	// The consistent pair is accepted
	_, err = db.ExecContext(ctx,
		`INSERT INTO documents (id, project_id, filename, size, sha256, remote_file_id, index_status, uploaded_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, 'file_1', 'INDEXED', ?, ?)`,
		"d3", "p1", "guide.pdf", 10, "abc", now, now)
	require.NoError(t, err)

	// Documents must reference an existing project
	_, err = db.ExecContext(ctx,
		`INSERT INTO documents (id, project_id, filename, size, sha256, index_status, uploaded_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, 'PENDING', ?, ?)`,
		"d4", "missing", "guide.pdf", 10, "abc", now, now)
	require.Error(t, err, "should fail with invalid project_id")
}

// TestStatusConstraints verifies the status enums are pinned in the schema
func TestStatusConstraints(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	_, err := db.ExecContext(ctx,
		`INSERT INTO projects (id, name, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		"p1", "Manuals", "SLEEPING", now, now)
	require.Error(t, err, "should fail with invalid project status")

	_, err = db.ExecContext(ctx,
		`INSERT INTO projects (id, name, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		"p1", "Manuals", "ACTIVE", now, now)
	require.NoError(t, err)

	_, err = db.ExecContext(ctx,
		`INSERT INTO documents (id, project_id, filename, size, sha256, index_status, uploaded_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, 'QUEUED', ?, ?)`,
		"d1", "p1", "guide.pdf", 10, "abc", now, now)
	require.Error(t, err, "should fail with invalid index_status")
}
