// Package transport exposes the administrative, query and voice surfaces
// as a JSON HTTP API for the UI layer.
package transport

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"ragdesk/internal/domain/audit"
	"ragdesk/internal/domain/document"
	"ragdesk/internal/domain/project"
	"ragdesk/internal/domain/query"
	"ragdesk/internal/domain/voice"
	"ragdesk/internal/remote"
)

const maxUploadBytes = 32 << 20

// Server wires the domain services behind HTTP handlers.
type Server struct {
	projects   *project.Service
	documents  *document.Service
	queries    *query.Service
	auditTrail *audit.Service
	voices     *voice.Selector
	logger     *slog.Logger
}

// Services groups the dependencies of the HTTP surface.
type Services struct {
	Projects  *project.Service
	Documents *document.Service
	Queries   *query.Service
	Audit     *audit.Service
	Voices    *voice.Selector
}

// NewRouter creates the chi router with middleware and all routes.
func NewRouter(svcs Services, logger *slog.Logger) *chi.Mux {
	srv := &Server{
		projects:   svcs.Projects,
		documents:  svcs.Documents,
		queries:    svcs.Queries,
		auditTrail: svcs.Audit,
		voices:     svcs.Voices,
		logger:     logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	r.Get("/health", srv.handleHealth)

	r.Route("/api", func(api chi.Router) {
		api.Post("/projects", srv.handleCreateProject)
		api.Get("/projects", srv.handleListProjects)
		api.Patch("/projects/{projectID}", srv.handleRenameProject)
		api.Post("/projects/{projectID}/archive", srv.handleArchiveProject)
		api.Post("/projects/{projectID}/reconcile", srv.handleReconcile)
		api.Get("/projects/{projectID}/audit", srv.handleListAudit)

		api.Post("/projects/{projectID}/documents", srv.handleUploadDocument)
		api.Get("/projects/{projectID}/documents", srv.handleListDocuments)
		api.Delete("/documents/{documentID}", srv.handleRemoveDocument)
		api.Post("/documents/{documentID}/retry", srv.handleRetryDocument)

		api.Post("/chat", srv.handleChat)

		api.Post("/voice/transcriptions", srv.handleTranscribe)
		api.Post("/voice/speech", srv.handleSynthesize)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, project.ErrInvalidInput)
		return
	}

	proj, err := s.projects.Create(r.Context(), req.Name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, proj)
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("all") == ""
	projects, err := s.projects.List(r.Context(), activeOnly)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if projects == nil {
		projects = []project.Project{}
	}
	s.writeJSON(w, http.StatusOK, projects)
}

func (s *Server) handleRenameProject(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, project.ErrInvalidInput)
		return
	}

	proj, err := s.projects.Rename(r.Context(), chi.URLParam(r, "projectID"), req.Name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, proj)
}

func (s *Server) handleArchiveProject(w http.ResponseWriter, r *http.Request) {
	if err := s.projects.Archive(r.Context(), chi.URLParam(r, "projectID")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReconcile(w http.ResponseWriter, r *http.Request) {
	report, err := s.documents.Reconcile(r.Context(), chi.URLParam(r, "projectID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleListAudit(w http.ResponseWriter, r *http.Request) {
	entries, err := s.auditTrail.List(r.Context(), chi.URLParam(r, "projectID"), 0)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if entries == nil {
		entries = []audit.Entry{}
	}
	s.writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
	filename, data, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	doc, err := s.documents.Upload(r.Context(), chi.URLParam(r, "projectID"), filename, data)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, doc)
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.documents.List(r.Context(), chi.URLParam(r, "projectID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if docs == nil {
		docs = []document.Document{}
	}
	s.writeJSON(w, http.StatusOK, docs)
}

func (s *Server) handleRemoveDocument(w http.ResponseWriter, r *http.Request) {
	if err := s.documents.Remove(r.Context(), chi.URLParam(r, "documentID")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRetryDocument(w http.ResponseWriter, r *http.Request) {
	_, data, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	doc, err := s.documents.Retry(r.Context(), chi.URLParam(r, "documentID"), data)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProjectID string       `json:"project_id"`
		Question  string       `json:"question"`
		History   []query.Turn `json:"history"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	answer, err := s.queries.Ask(r.Context(), req.ProjectID, req.Question, req.History)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if answer.Sources == nil {
		answer.Sources = []query.Source{}
	}
	s.writeJSON(w, http.StatusOK, answer)
}

func (s *Server) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}

	provider, err := voice.ParseProvider(r.FormValue("provider"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	lang := voice.Language(r.FormValue("language"))

	file, _, err := r.FormFile("audio")
	if err != nil {
		http.Error(w, "missing audio", http.StatusBadRequest)
		return
	}
	defer file.Close()
	audioBytes, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		http.Error(w, "reading audio", http.StatusBadRequest)
		return
	}

	text, err := s.voices.Transcribe(r.Context(), provider, lang, audioBytes)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"text": text})
}

func (s *Server) handleSynthesize(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Provider string `json:"provider"`
		Language string `json:"language"`
		Text     string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	provider, err := voice.ParseProvider(req.Provider)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	audioBytes, err := s.voices.Synthesize(r.Context(), provider, voice.Language(req.Language), req.Text)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(audioBytes)
}

// readUpload pulls the "file" part out of a multipart request.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (string, []byte, bool) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return "", nil, false
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file", http.StatusBadRequest)
		return "", nil, false
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		http.Error(w, "reading file", http.StatusBadRequest)
		return "", nil, false
	}
	return header.Filename, data, true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encoding response", "error", err)
	}
}

// writeError maps domain and remote errors onto HTTP statuses. Precondition
// violations report as client errors; remote failures as bad gateway.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, project.ErrProjectNotFound),
		errors.Is(err, document.ErrDocumentNotFound):
		status = http.StatusNotFound
	case errors.Is(err, project.ErrInvalidInput),
		errors.Is(err, document.ErrInvalidInput),
		errors.Is(err, query.ErrInvalidQuestion),
		errors.Is(err, voice.ErrUnknownProvider),
		errors.Is(err, voice.ErrUnsupportedLanguage):
		status = http.StatusBadRequest
	case errors.Is(err, project.ErrProjectArchived),
		errors.Is(err, document.ErrNotIndexed),
		errors.Is(err, document.ErrAlreadyIndexed),
		errors.Is(err, query.ErrEmptyProject):
		status = http.StatusConflict
	case errors.Is(err, remote.ErrQuotaExceeded):
		status = http.StatusTooManyRequests
	case errors.Is(err, remote.ErrServiceUnavailable),
		errors.Is(err, remote.ErrNotFound),
		errors.Is(err, query.ErrAnswerService):
		status = http.StatusBadGateway
	}

	if status >= 500 {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
	}
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}
