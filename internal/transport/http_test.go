package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ragdesk/internal/domain/audit"
	"ragdesk/internal/domain/document"
	"ragdesk/internal/domain/project"
	"ragdesk/internal/domain/query"
	"ragdesk/internal/domain/voice"
	"ragdesk/internal/repository"
	"ragdesk/internal/repository/mocks"
)

type testEnv struct {
	server   *httptest.Server
	projects *mocks.ProjectRepository
	docs     *mocks.DocumentRepository
	index    *mocks.IndexAdapter
	answers  *mocks.AnswerService
}

type echoProvider struct{}

func (echoProvider) Transcribe(_ context.Context, _ voice.Language, _ []byte) (string, error) {
	return "transcribed", nil
}

func (echoProvider) Synthesize(_ context.Context, _ voice.Language, text string) ([]byte, error) {
	return []byte("audio:" + text), nil
}

func (echoProvider) Supports(lang voice.Language) bool {
	return lang == voice.LangZhTW || lang == voice.LangEnUS
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		projects: &mocks.ProjectRepository{},
		docs:     &mocks.DocumentRepository{},
		index:    &mocks.IndexAdapter{},
		answers:  &mocks.AnswerService{},
	}
	auditRepo := &mocks.AuditRepository{}
	auditRepo.On("Append", mock.Anything, mock.Anything).Return(nil).Maybe()
	auditRepo.On("List", mock.Anything, mock.Anything, mock.Anything).Return([]audit.Entry{}, nil).Maybe()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	auditSvc := audit.NewService(auditRepo, logger)

	router := NewRouter(Services{
		Projects:  project.NewService(env.projects, auditSvc, logger),
		Documents: document.NewService(env.docs, env.projects, env.index, auditSvc, logger),
		Queries:   query.NewService(env.projects, env.docs, env.answers, logger),
		Audit:     auditSvc,
		Voices:    voice.NewSelector(echoProvider{}, echoProvider{}),
	}, logger)

	env.server = httptest.NewServer(router)
	t.Cleanup(env.server.Close)
	return env
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	return resp
}

func TestHTTPServer_Health(t *testing.T) {
	env := newTestEnv(t)

	resp, err := http.Get(env.server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHTTPServer_CreateProject(t *testing.T) {
	env := newTestEnv(t)
	env.projects.On("Create", mock.Anything, mock.Anything).Return(nil)

	resp := postJSON(t, env.server.URL+"/api/projects", map[string]string{"name": "Manuals"})
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var proj project.Project
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&proj))
	require.Equal(t, "Manuals", proj.Name)
	require.Equal(t, project.StatusActive, proj.Status)
}

func TestHTTPServer_CreateProjectEmptyName(t *testing.T) {
	env := newTestEnv(t)

	resp := postJSON(t, env.server.URL+"/api/projects", map[string]string{"name": "  "})
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHTTPServer_ListProjectsEmpty(t *testing.T) {
	env := newTestEnv(t)
	env.projects.On("List", mock.Anything, true).Return([]project.Project(nil), nil)

	resp, err := http.Get(env.server.URL + "/api/projects")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.JSONEq(t, `[]`, string(body))
}

func TestHTTPServer_ChatEmptyProject(t *testing.T) {
	env := newTestEnv(t)
	env.projects.On("Get", mock.Anything, "p1").Return(&project.Project{
		ID:     "p1",
		Status: project.StatusActive,
	}, nil)

	resp := postJSON(t, env.server.URL+"/api/chat", map[string]any{
		"project_id": "p1",
		"question":   "how do I reset it?",
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestHTTPServer_ChatBlankQuestion(t *testing.T) {
	env := newTestEnv(t)

	resp := postJSON(t, env.server.URL+"/api/chat", map[string]any{
		"project_id": "p1",
		"question":   "   ",
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHTTPServer_Chat(t *testing.T) {
	env := newTestEnv(t)
	env.projects.On("Get", mock.Anything, "p1").Return(&project.Project{
		ID:            "p1",
		Status:        project.StatusActive,
		RemoteIndexID: "vs_1",
	}, nil)
	env.answers.On("Answer", mock.Anything, "vs_1", "how do I reset it?", mock.Anything).
		Return("Hold the button.", []string{"file_1"}, nil)
	env.docs.On("FindByRemoteFileID", mock.Anything, "p1", "file_1").Return(&document.Document{
		ID:           "d1",
		Filename:     "guide.pdf",
		RemoteFileID: "file_1",
	}, nil)

	resp := postJSON(t, env.server.URL+"/api/chat", map[string]any{
		"project_id": "p1",
		"question":   "how do I reset it?",
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var answer query.Answer
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&answer))
	require.Equal(t, "Hold the button.", answer.Text)
	require.Len(t, answer.Sources, 1)
	require.Equal(t, "guide.pdf", answer.Sources[0].Filename)
}

func TestHTTPServer_UploadDocument(t *testing.T) {
	env := newTestEnv(t)
	env.projects.On("Get", mock.Anything, "p1").Return(&project.Project{
		ID:            "p1",
		Name:          "Manuals",
		Status:        project.StatusActive,
		RemoteIndexID: "vs_1",
	}, nil)
	env.docs.On("FindByContentHash", mock.Anything, "p1", mock.Anything).
		Return((*document.Document)(nil), repository.ErrNotFound)
	env.docs.On("Create", mock.Anything, mock.Anything).Return(nil)
	env.docs.On("MarkIndexed", mock.Anything, mock.Anything, "file_1").Return(nil)
	env.docs.On("Get", mock.Anything, mock.Anything).Return(&document.Document{
		ID:           "d1",
		ProjectID:    "p1",
		Filename:     "guide.pdf",
		IndexStatus:  document.StatusIndexed,
		RemoteFileID: "file_1",
	}, nil)
	env.index.On("AddFile", mock.Anything, "vs_1", "guide.pdf", mock.Anything).Return("file_1", nil)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "guide.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("manual body"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp, err := http.Post(env.server.URL+"/api/projects/p1/documents", mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var doc document.Document
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&doc))
	require.Equal(t, document.StatusIndexed, doc.IndexStatus)
}

func TestHTTPServer_RemoveUnindexedDocument(t *testing.T) {
	env := newTestEnv(t)
	env.docs.On("Get", mock.Anything, "d1").Return(&document.Document{
		ID:          "d1",
		ProjectID:   "p1",
		IndexStatus: document.StatusPending,
	}, nil)

	req, err := http.NewRequest(http.MethodDelete, env.server.URL+"/api/documents/d1", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestHTTPServer_TranscribeUnknownProvider(t *testing.T) {
	env := newTestEnv(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("provider", "azure"))
	require.NoError(t, mw.WriteField("language", "en-US"))
	part, err := mw.CreateFormFile("audio", "clip.wav")
	require.NoError(t, err)
	_, err = part.Write([]byte("pcm"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp, err := http.Post(env.server.URL+"/api/voice/transcriptions", mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHTTPServer_Synthesize(t *testing.T) {
	env := newTestEnv(t)

	resp := postJSON(t, env.server.URL+"/api/voice/speech", map[string]string{
		"provider": "openai",
		"language": "en-US",
		"text":     "hold the button",
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "audio/mpeg", resp.Header.Get("Content-Type"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, []byte("audio:hold the button"), body)
}
