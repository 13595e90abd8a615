package audit

import "time"

// Entry is one administrative action against a project: creation, rename,
// archive, document upload/removal/retry, or a reconcile run.
type Entry struct {
	ID        int64     `json:"id"`
	ProjectID string    `json:"project_id"`
	Action    string    `json:"action"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
