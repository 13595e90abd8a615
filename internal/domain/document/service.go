package document

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	"ragdesk/internal/domain/project"
	"ragdesk/internal/remote"
	"ragdesk/internal/repository"
)

const (
	// retryMaxAttempts bounds retries of transient add/remove failures
	// before the document is parked in FAILED.
	retryMaxAttempts = 3

	retryInitialInterval = 50 * time.Millisecond
	retryMaxInterval     = 2 * time.Second
)

// Service is the project lifecycle manager's document side: it keeps the
// local store and the remote document index consistent through uploads,
// removals, retries and reconciliation.
type Service struct {
	docs     Repository
	projects project.Repository
	index    IndexAdapter
	audit    project.AuditRecorder
	logger   *slog.Logger
}

// NewService creates a new document service.
func NewService(docs Repository, projects project.Repository, index IndexAdapter, audit project.AuditRecorder, logger *slog.Logger) *Service {
	return &Service{docs: docs, projects: projects, index: index, audit: audit, logger: logger}
}

// Upload accepts a file into a project and drives it through indexing.
//
// The local PENDING record is committed first; the remote index is created
// lazily on the project's first upload. Transient indexing failures are
// retried with bounded exponential backoff, and exhaustion parks the
// document in FAILED rather than failing the request: the caller sees the
// failure as state and can retry with the same bytes later. A file whose
// content already exists in the project is skipped and the existing
// document returned.
func (s *Service) Upload(ctx context.Context, projectID, filename string, data []byte) (*Document, error) {
	filename = filepath.Base(strings.TrimSpace(filename))
	if filename == "" || filename == "." || len(data) == 0 {
		return nil, ErrInvalidInput
	}

	proj, err := s.getProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !proj.Active() {
		return nil, project.ErrProjectArchived
	}

	sum := sha256.Sum256(data)
	sha := hex.EncodeToString(sum[:])

	existing, err := s.docs.FindByContentHash(ctx, projectID, sha)
	if err == nil {
		s.logger.Info("duplicate upload skipped", "project_id", projectID, "filename", filename, "document_id", existing.ID)
		return existing, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("checking content hash: %w", err)
	}

	now := time.Now().UTC()
	doc := &Document{
		ID:          uuid.NewString(),
		ProjectID:   projectID,
		Filename:    filename,
		Size:        int64(len(data)),
		SHA256:      sha,
		IndexStatus: StatusPending,
		UploadedAt:  now,
		UpdatedAt:   now,
	}
	if err := s.docs.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("creating document: %w", err)
	}

	indexID := proj.RemoteIndexID
	if indexID == "" {
		indexID, err = s.ensureRemoteIndex(ctx, proj)
		if err != nil {
			// Document stays PENDING; a later retry re-drives indexing.
			return doc, err
		}
	}

	return s.runIndexing(ctx, doc, indexID, data)
}

// Retry re-drives indexing for a document whose earlier attempt failed.
// Raw bytes are not persisted, so the caller supplies them again.
func (s *Service) Retry(ctx context.Context, documentID string, data []byte) (*Document, error) {
	doc, err := s.Get(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if doc.Indexed() {
		return nil, ErrAlreadyIndexed
	}
	if len(data) == 0 {
		return nil, ErrInvalidInput
	}

	proj, err := s.getProject(ctx, doc.ProjectID)
	if err != nil {
		return nil, err
	}
	if !proj.Active() {
		return nil, project.ErrProjectArchived
	}

	if doc.IndexStatus == StatusFailed {
		if err := s.docs.MarkPending(ctx, doc.ID); err != nil {
			return nil, fmt.Errorf("marking document pending: %w", err)
		}
	}

	indexID := proj.RemoteIndexID
	if indexID == "" {
		indexID, err = s.ensureRemoteIndex(ctx, proj)
		if err != nil {
			return doc, err
		}
	}

	if s.audit != nil {
		s.audit.Record(ctx, doc.ProjectID, "document.retried", doc.Filename)
	}
	return s.runIndexing(ctx, doc, indexID, data)
}

// Remove deletes a document from both the remote index and the local store,
// remote first: the local store must never claim a document is gone while
// the remote index still serves it.
func (s *Service) Remove(ctx context.Context, documentID string) error {
	doc, err := s.Get(ctx, documentID)
	if err != nil {
		return err
	}
	if !doc.Indexed() {
		return ErrNotIndexed
	}

	proj, err := s.getProject(ctx, doc.ProjectID)
	if err != nil {
		return err
	}

	err = s.withRetry(ctx, func() error {
		return s.index.RemoveFile(ctx, proj.RemoteIndexID, doc.RemoteFileID)
	})
	if err != nil && !errors.Is(err, remote.ErrNotFound) {
		return fmt.Errorf("removing remote file: %w", err)
	}
	if errors.Is(err, remote.ErrNotFound) {
		s.logger.Warn("remote file already gone", "document_id", doc.ID, "remote_file_id", doc.RemoteFileID)
	}

	if err := s.docs.Delete(ctx, doc.ID); err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}

	if s.audit != nil {
		s.audit.Record(ctx, doc.ProjectID, "document.removed", doc.Filename)
	}
	return nil
}

// Reconcile compares the remote index listing against local records.
// Documents marked INDEXED but missing remotely are demoted to FAILED;
// remote files unknown locally are reported as orphans, never deleted.
// Documents that never finished indexing are reported so the admin
// surface can drive retries.
func (s *Service) Reconcile(ctx context.Context, projectID string) (*ReconcileReport, error) {
	proj, err := s.getProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	report := &ReconcileReport{ProjectID: projectID}

	unindexed, err := s.docs.WithoutRemoteID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing unindexed documents: %w", err)
	}
	for _, doc := range unindexed {
		report.Unindexed = append(report.Unindexed, doc.ID)
	}

	if proj.RemoteIndexID == "" {
		return report, nil
	}

	listing, err := s.index.ListFiles(ctx, proj.RemoteIndexID)
	if err != nil {
		return nil, fmt.Errorf("listing remote files: %w", err)
	}
	remoteSet := make(map[string]struct{}, len(listing))
	for _, id := range listing {
		remoteSet[id] = struct{}{}
	}

	docs, err := s.docs.ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	for i := range docs {
		doc := &docs[i]
		if !doc.Indexed() {
			continue
		}
		if _, ok := remoteSet[doc.RemoteFileID]; ok {
			continue
		}
		if err := s.docs.MarkFailed(ctx, doc.ID); err != nil {
			return nil, fmt.Errorf("demoting document %s: %w", doc.ID, err)
		}
		s.logger.Warn("document deleted out-of-band, demoted", "document_id", doc.ID, "remote_file_id", doc.RemoteFileID)
		report.Demoted = append(report.Demoted, doc.ID)
	}

	orphans, err := s.docs.FindOrphanedRemoteFiles(ctx, projectID, listing)
	if err != nil {
		return nil, fmt.Errorf("finding orphans: %w", err)
	}
	report.Orphaned = orphans

	if s.audit != nil {
		s.audit.Record(ctx, projectID, "project.reconciled",
			fmt.Sprintf("demoted=%d orphaned=%d", len(report.Demoted), len(report.Orphaned)))
	}
	return report, nil
}

// Get fetches a document by ID.
func (s *Service) Get(ctx context.Context, id string) (*Document, error) {
	doc, err := s.docs.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("getting document: %w", err)
	}
	return doc, nil
}

// List returns a project's documents with their index status.
func (s *Service) List(ctx context.Context, projectID string) ([]Document, error) {
	if _, err := s.getProject(ctx, projectID); err != nil {
		return nil, err
	}
	return s.docs.ListByProject(ctx, projectID)
}

// ensureRemoteIndex lazily creates the project's remote index, resolving
// the two-concurrent-first-uploads race with an optimistic claim: the
// loser deletes the duplicate index it created and adopts the winner's.
func (s *Service) ensureRemoteIndex(ctx context.Context, proj *project.Project) (string, error) {
	created, err := s.index.CreateIndex(ctx, proj.Name)
	if err != nil {
		return "", fmt.Errorf("creating remote index: %w", err)
	}

	won, err := s.projects.ClaimRemoteIndex(ctx, proj.ID, created)
	if err != nil {
		if derr := s.index.DeleteIndex(ctx, created); derr != nil {
			s.logger.Warn("leaking remote index after failed claim", "remote_index_id", created, "error", derr)
		}
		return "", fmt.Errorf("claiming remote index: %w", err)
	}
	if won {
		s.logger.Info("remote index created", "project_id", proj.ID, "remote_index_id", created)
		return created, nil
	}

	// Lost the race: another upload claimed first.
	if derr := s.index.DeleteIndex(ctx, created); derr != nil {
		s.logger.Warn("leaking duplicate remote index", "remote_index_id", created, "error", derr)
	}
	current, err := s.projects.Get(ctx, proj.ID)
	if err != nil {
		return "", fmt.Errorf("re-reading project after lost claim: %w", err)
	}
	return current.RemoteIndexID, nil
}

// runIndexing adds the file to the remote index and commits the
// INDEXED transition together with the remote file id.
func (s *Service) runIndexing(ctx context.Context, doc *Document, indexID string, data []byte) (*Document, error) {
	var remoteFileID string
	err := s.withRetry(ctx, func() error {
		id, err := s.index.AddFile(ctx, indexID, doc.Filename, data)
		if err != nil {
			return err
		}
		remoteFileID = id
		return nil
	})
	if err != nil {
		if errors.Is(err, remote.ErrServiceUnavailable) {
			// Retries exhausted: park the document in FAILED so the failure
			// is observable as state, not as a crashed request.
			if ferr := s.docs.MarkFailed(ctx, doc.ID); ferr != nil {
				s.logger.Error("failed to mark document failed", "document_id", doc.ID, "error", ferr)
			}
			s.logger.Warn("indexing retries exhausted", "document_id", doc.ID, "error", err)
			return s.Get(ctx, doc.ID)
		}
		// Non-transient failure: the document stays PENDING for a later
		// retry and the error surfaces typed to the caller.
		return nil, fmt.Errorf("adding file to index: %w", err)
	}

	if err := s.docs.MarkIndexed(ctx, doc.ID, remoteFileID); err != nil {
		return nil, fmt.Errorf("marking document indexed: %w", err)
	}

	if s.audit != nil {
		s.audit.Record(ctx, doc.ProjectID, "document.indexed", doc.Filename)
	}
	return s.Get(ctx, doc.ID)
}

// withRetry retries op on ErrServiceUnavailable with bounded exponential
// backoff. Any other error is permanent and returned as-is.
func (s *Service) withRetry(ctx context.Context, op func() error) error {
	wrapped := func() error {
		err := op()
		if err == nil || errors.Is(err, remote.ErrServiceUnavailable) {
			return err
		}
		return backoff.Permanent(err)
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = retryInitialInterval
	bo.MaxInterval = retryMaxInterval

	return backoff.Retry(wrapped, backoff.WithContext(backoff.WithMaxRetries(bo, retryMaxAttempts), ctx))
}

func (s *Service) getProject(ctx context.Context, projectID string) (*project.Project, error) {
	proj, err := s.projects.Get(ctx, projectID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, project.ErrProjectNotFound
		}
		return nil, fmt.Errorf("getting project: %w", err)
	}
	return proj, nil
}
