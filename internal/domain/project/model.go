package project

import "time"

// Status is the lifecycle state of a project. Archived projects keep their
// remote index for audit but are not queryable.
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusArchived Status = "ARCHIVED"
)

// Project is a named, isolated collection of documents mapped to at most
// one remote document index.
type Project struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Status        Status    `json:"status"`
	RemoteIndexID string    `json:"remote_index_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Active reports whether the project accepts uploads and queries.
func (p *Project) Active() bool {
	return p.Status == StatusActive
}
