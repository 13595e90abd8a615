package project

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"ragdesk/internal/repository"
)

// Service handles project administration: create, rename, archive, list.
// Remote index creation is deferred to the first document upload, so an
// abandoned empty project never leaves an orphaned remote index behind.
type Service struct {
	repo   Repository
	audit  AuditRecorder
	logger *slog.Logger
}

// NewService creates a new project service.
func NewService(repo Repository, audit AuditRecorder, logger *slog.Logger) *Service {
	return &Service{repo: repo, audit: audit, logger: logger}
}

// Create creates a new ACTIVE project with no remote index.
func (s *Service) Create(ctx context.Context, name string) (*Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidInput
	}

	now := time.Now().UTC()
	proj := &Project{
		ID:        uuid.NewString(),
		Name:      name,
		Status:    StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, proj); err != nil {
		return nil, fmt.Errorf("creating project: %w", err)
	}

	if s.audit != nil {
		s.audit.Record(ctx, proj.ID, "project.created", name)
	}
	return proj, nil
}

// Get fetches a project by ID.
func (s *Service) Get(ctx context.Context, id string) (*Project, error) {
	proj, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("getting project: %w", err)
	}
	return proj, nil
}

// Rename updates the project name. Names need not be unique.
func (s *Service) Rename(ctx context.Context, id, name string) (*Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidInput
	}

	proj, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !proj.Active() {
		return nil, ErrProjectArchived
	}

	if err := s.repo.Rename(ctx, id, name); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("renaming project: %w", err)
	}

	if s.audit != nil {
		s.audit.Record(ctx, id, "project.renamed", name)
	}
	return s.Get(ctx, id)
}

// Archive marks the project ARCHIVED. The remote index is kept so
// retrieval-for-audit remains possible, but queries are refused from here on.
func (s *Service) Archive(ctx context.Context, id string) error {
	proj, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !proj.Active() {
		return ErrProjectArchived
	}

	if err := s.repo.SetStatus(ctx, id, StatusArchived); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("archiving project: %w", err)
	}

	s.logger.Info("project archived", "project_id", id, "remote_index_id", proj.RemoteIndexID)
	if s.audit != nil {
		s.audit.Record(ctx, id, "project.archived", proj.Name)
	}
	return nil
}

// List returns projects, optionally restricted to ACTIVE ones.
func (s *Service) List(ctx context.Context, activeOnly bool) ([]Project, error) {
	return s.repo.List(ctx, activeOnly)
}
