package audit

import (
	"context"
	"log/slog"
	"time"
)

// Repository provides persistence for audit entries.
type Repository interface {
	Append(ctx context.Context, entry *Entry) error
	List(ctx context.Context, projectID string, limit int) ([]Entry, error)
}

const defaultListLimit = 100

// Service records and lists the administrative audit trail.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a new audit service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Record appends an entry best-effort. A failed audit write is logged and
// never fails the operation being audited.
func (s *Service) Record(ctx context.Context, projectID, action, detail string) {
	entry := &Entry{
		ProjectID: projectID,
		Action:    action,
		Detail:    detail,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Append(ctx, entry); err != nil {
		s.logger.Error("audit write failed", "project_id", projectID, "action", action, "error", err)
	}
}

// List returns a project's most recent audit entries, newest first.
func (s *Service) List(ctx context.Context, projectID string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	return s.repo.List(ctx, projectID, limit)
}
