package project

import "context"

// Repository provides persistence for projects.
type Repository interface {
	Create(ctx context.Context, proj *Project) error
	Get(ctx context.Context, id string) (*Project, error)
	List(ctx context.Context, activeOnly bool) ([]Project, error)
	Rename(ctx context.Context, id, name string) error
	SetStatus(ctx context.Context, id string, status Status) error
	// ClaimRemoteIndex atomically sets the remote index id if it is still
	// unset, reporting whether this writer won the claim.
	ClaimRemoteIndex(ctx context.Context, id, remoteIndexID string) (bool, error)
}

// AuditRecorder records administrative actions. Writes are best-effort;
// implementations must not fail the calling operation.
type AuditRecorder interface {
	Record(ctx context.Context, projectID, action, detail string)
}
