package query

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"ragdesk/internal/domain/document"
	"ragdesk/internal/domain/project"
	"ragdesk/internal/repository"
)

// Service coordinates retrieval queries: it resolves a project's live
// remote index, forwards the question to the answer service and maps the
// reported attributions back to local document records.
type Service struct {
	projects project.Repository
	docs     document.Repository
	answers  AnswerService
	logger   *slog.Logger
}

// NewService creates a new query service.
func NewService(projects project.Repository, docs document.Repository, answers AnswerService, logger *slog.Logger) *Service {
	return &Service{projects: projects, docs: docs, answers: answers, logger: logger}
}

// Ask answers a question against a project's remote index. Every call is a
// fresh retrieval against current index state; results always reflect the
// most recently committed INDEXED set.
func (s *Service) Ask(ctx context.Context, projectID, question string, history []Turn) (*Answer, error) {
	if strings.TrimSpace(question) == "" {
		return nil, ErrInvalidQuestion
	}

	proj, err := s.projects.Get(ctx, projectID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, project.ErrProjectNotFound
		}
		return nil, fmt.Errorf("getting project: %w", err)
	}
	if !proj.Active() || proj.RemoteIndexID == "" {
		return nil, ErrEmptyProject
	}

	text, attributed, err := s.answers.Answer(ctx, proj.RemoteIndexID, question, history)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAnswerService, err)
	}

	answer := &Answer{Text: text}
	seen := make(map[string]struct{}, len(attributed))
	for _, fileID := range attributed {
		if _, dup := seen[fileID]; dup {
			continue
		}
		seen[fileID] = struct{}{}

		src := Source{RemoteFileID: fileID}
		doc, err := s.docs.FindByRemoteFileID(ctx, projectID, fileID)
		switch {
		case err == nil:
			src.DocumentID = doc.ID
			src.Filename = doc.Filename
		case errors.Is(err, repository.ErrNotFound):
			// Attribution to a file the store doesn't know; pass it through.
			s.logger.Warn("answer attributed to unknown remote file", "project_id", projectID, "remote_file_id", fileID)
		default:
			return nil, fmt.Errorf("mapping attribution: %w", err)
		}
		answer.Sources = append(answer.Sources, src)
	}

	return answer, nil
}
