package document

import "time"

// IndexStatus tracks a document's position in the indexing state machine:
// PENDING -> INDEXED on successful indexing, PENDING -> FAILED on retry
// exhaustion or reconcile demotion, FAILED -> PENDING on explicit retry.
type IndexStatus string

const (
	StatusPending IndexStatus = "PENDING"
	StatusIndexed IndexStatus = "INDEXED"
	StatusFailed  IndexStatus = "FAILED"
)

// Document is one uploaded file's metadata and indexing status within a
// project. Only metadata is durable; raw bytes are never persisted.
type Document struct {
	ID           string      `json:"id"`
	ProjectID    string      `json:"project_id"`
	Filename     string      `json:"filename"`
	Size         int64       `json:"size"`
	SHA256       string      `json:"sha256"`
	RemoteFileID string      `json:"remote_file_id,omitempty"`
	IndexStatus  IndexStatus `json:"index_status"`
	UploadedAt   time.Time   `json:"uploaded_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// Indexed reports whether the document is live in the remote index.
func (d *Document) Indexed() bool {
	return d.IndexStatus == StatusIndexed && d.RemoteFileID != ""
}

// ReconcileReport describes drift found between local records and the
// remote index listing.
type ReconcileReport struct {
	ProjectID string `json:"project_id"`
	// Unindexed lists document ids whose indexing never completed
	// (PENDING or FAILED), snapshotted before any demotion this run.
	Unindexed []string `json:"unindexed"`
	// Demoted lists document ids that were marked INDEXED locally but are
	// gone from the remote index (deleted out-of-band).
	Demoted []string `json:"demoted"`
	// Orphaned lists remote file ids with no matching local document.
	// Reported only; never deleted automatically.
	Orphaned []string `json:"orphaned"`
}
