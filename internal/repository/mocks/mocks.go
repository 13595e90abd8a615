package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"ragdesk/internal/domain/audit"
	"ragdesk/internal/domain/document"
	"ragdesk/internal/domain/project"
	"ragdesk/internal/domain/query"
)

// ProjectRepository is a mock for project.Repository.
type ProjectRepository struct {
	mock.Mock
}

var _ project.Repository = (*ProjectRepository)(nil)

func (m *ProjectRepository) Create(ctx context.Context, proj *project.Project) error {
	args := m.Called(ctx, proj)
	return args.Error(0)
}

func (m *ProjectRepository) Get(ctx context.Context, id string) (*project.Project, error) {
	args := m.Called(ctx, id)
	if proj, ok := args.Get(0).(*project.Project); ok {
		return proj, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectRepository) List(ctx context.Context, activeOnly bool) ([]project.Project, error) {
	args := m.Called(ctx, activeOnly)
	if list, ok := args.Get(0).([]project.Project); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectRepository) Rename(ctx context.Context, id, name string) error {
	args := m.Called(ctx, id, name)
	return args.Error(0)
}

func (m *ProjectRepository) SetStatus(ctx context.Context, id string, status project.Status) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *ProjectRepository) ClaimRemoteIndex(ctx context.Context, id, remoteIndexID string) (bool, error) {
	args := m.Called(ctx, id, remoteIndexID)
	return args.Bool(0), args.Error(1)
}

// DocumentRepository is a mock for document.Repository.
type DocumentRepository struct {
	mock.Mock
}

var _ document.Repository = (*DocumentRepository)(nil)

func (m *DocumentRepository) Create(ctx context.Context, doc *document.Document) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *DocumentRepository) Get(ctx context.Context, id string) (*document.Document, error) {
	args := m.Called(ctx, id)
	if doc, ok := args.Get(0).(*document.Document); ok {
		return doc, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *DocumentRepository) ListByProject(ctx context.Context, projectID string) ([]document.Document, error) {
	args := m.Called(ctx, projectID)
	if list, ok := args.Get(0).([]document.Document); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *DocumentRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *DocumentRepository) MarkIndexed(ctx context.Context, id, remoteFileID string) error {
	args := m.Called(ctx, id, remoteFileID)
	return args.Error(0)
}

func (m *DocumentRepository) MarkFailed(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *DocumentRepository) MarkPending(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *DocumentRepository) WithoutRemoteID(ctx context.Context, projectID string) ([]document.Document, error) {
	args := m.Called(ctx, projectID)
	if list, ok := args.Get(0).([]document.Document); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *DocumentRepository) FindOrphanedRemoteFiles(ctx context.Context, projectID string, remoteListing []string) ([]string, error) {
	args := m.Called(ctx, projectID, remoteListing)
	if list, ok := args.Get(0).([]string); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *DocumentRepository) FindByContentHash(ctx context.Context, projectID, sha256 string) (*document.Document, error) {
	args := m.Called(ctx, projectID, sha256)
	if doc, ok := args.Get(0).(*document.Document); ok {
		return doc, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *DocumentRepository) FindByRemoteFileID(ctx context.Context, projectID, remoteFileID string) (*document.Document, error) {
	args := m.Called(ctx, projectID, remoteFileID)
	if doc, ok := args.Get(0).(*document.Document); ok {
		return doc, args.Error(1)
	}
	return nil, args.Error(1)
}

// AuditRepository is a mock for audit.Repository.
type AuditRepository struct {
	mock.Mock
}

var _ audit.Repository = (*AuditRepository)(nil)

func (m *AuditRepository) Append(ctx context.Context, entry *audit.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *AuditRepository) List(ctx context.Context, projectID string, limit int) ([]audit.Entry, error) {
	args := m.Called(ctx, projectID, limit)
	if list, ok := args.Get(0).([]audit.Entry); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// IndexAdapter is a mock for document.IndexAdapter.
type IndexAdapter struct {
	mock.Mock
}

var _ document.IndexAdapter = (*IndexAdapter)(nil)

func (m *IndexAdapter) CreateIndex(ctx context.Context, name string) (string, error) {
	args := m.Called(ctx, name)
	return args.String(0), args.Error(1)
}

func (m *IndexAdapter) DeleteIndex(ctx context.Context, remoteIndexID string) error {
	args := m.Called(ctx, remoteIndexID)
	return args.Error(0)
}

func (m *IndexAdapter) AddFile(ctx context.Context, remoteIndexID, filename string, data []byte) (string, error) {
	args := m.Called(ctx, remoteIndexID, filename, data)
	return args.String(0), args.Error(1)
}

func (m *IndexAdapter) RemoveFile(ctx context.Context, remoteIndexID, remoteFileID string) error {
	args := m.Called(ctx, remoteIndexID, remoteFileID)
	return args.Error(0)
}

func (m *IndexAdapter) ListFiles(ctx context.Context, remoteIndexID string) ([]string, error) {
	args := m.Called(ctx, remoteIndexID)
	if list, ok := args.Get(0).([]string); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// AnswerService is a mock for query.AnswerService.
type AnswerService struct {
	mock.Mock
}

var _ query.AnswerService = (*AnswerService)(nil)

func (m *AnswerService) Answer(ctx context.Context, remoteIndexID, question string, history []query.Turn) (string, []string, error) {
	args := m.Called(ctx, remoteIndexID, question, history)
	var attributed []string
	if list, ok := args.Get(1).([]string); ok {
		attributed = list
	}
	return args.String(0), attributed, args.Error(2)
}
