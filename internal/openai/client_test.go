package openai_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"ragdesk/internal/domain/query"
	"ragdesk/internal/domain/voice"
	"ragdesk/internal/openai"
	"ragdesk/internal/remote"
)

func newTestClient(t *testing.T, handler http.Handler) *openai.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := openai.NewClient(openai.Config{
		APIBase: server.URL,
		APIKey:  "test-key",
	})
	require.NoError(t, err)
	return client
}

func TestClient_StatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		status int
		want   error
	}{
		{"not found", http.StatusNotFound, remote.ErrNotFound},
		{"quota", http.StatusTooManyRequests, remote.ErrQuotaExceeded},
		{"server error", http.StatusInternalServerError, remote.ErrServiceUnavailable},
		{"bad gateway", http.StatusBadGateway, remote.ErrServiceUnavailable},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "upstream says no", tc.status)
			}))

			adapter := openai.NewIndexAdapter(client)
			_, err := adapter.CreateIndex(context.Background(), "Manuals")
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestIndexAdapter_CreateIndex(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/vector_stores", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req struct {
			Name string `json:"name"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "Manuals", req.Name)

		_ = json.NewEncoder(w).Encode(map[string]string{"id": "vs_1"})
	}))

	id, err := openai.NewIndexAdapter(client).CreateIndex(context.Background(), "Manuals")
	require.NoError(t, err)
	require.Equal(t, "vs_1", id)
}

func TestIndexAdapter_AddFile(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/files", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		require.Equal(t, "assistants", r.FormValue("purpose"))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		require.Equal(t, "guide.pdf", header.Filename)

		_ = json.NewEncoder(w).Encode(map[string]string{"id": "file_1"})
	})
	mux.HandleFunc("/vector_stores/vs_1/files", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		var req struct {
			FileID string `json:"file_id"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "file_1", req.FileID)

		_ = json.NewEncoder(w).Encode(map[string]string{"id": "vsf_1"})
	})

	client := newTestClient(t, mux)
	fileID, err := openai.NewIndexAdapter(client).AddFile(context.Background(), "vs_1", "guide.pdf", []byte("manual body"))
	require.NoError(t, err)
	require.Equal(t, "file_1", fileID)
}

func TestIndexAdapter_ListFilesPagination(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/vector_stores/vs_1/files", r.URL.Path)

		page := map[string]any{
			"data":     []map[string]string{{"id": "file_1"}, {"id": "file_2"}},
			"has_more": true,
			"last_id":  "file_2",
		}
		if r.URL.Query().Get("after") == "file_2" {
			page = map[string]any{
				"data":     []map[string]string{{"id": "file_3"}},
				"has_more": false,
				"last_id":  "file_3",
			}
		}
		_ = json.NewEncoder(w).Encode(page)
	}))

	ids, err := openai.NewIndexAdapter(client).ListFiles(context.Background(), "vs_1")
	require.NoError(t, err)
	require.Equal(t, []string{"file_1", "file_2", "file_3"}, ids)
}

func TestAnswerService_Answer(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/responses", r.URL.Path)

		var req struct {
			Input []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"input"`
			Tools []struct {
				Type           string   `json:"type"`
				VectorStoreIDs []string `json:"vector_store_ids"`
			} `json:"tools"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		// Prior turn expands to a user/assistant pair, question comes last.
		require.Len(t, req.Input, 3)
		require.Equal(t, "user", req.Input[2].Role)
		require.Equal(t, "如何重設?", req.Input[2].Content)
		require.Len(t, req.Tools, 1)
		require.Equal(t, "file_search", req.Tools[0].Type)
		require.Equal(t, []string{"vs_1"}, req.Tools[0].VectorStoreIDs)

		fmt.Fprint(w, `{
			"output": [
				{"type": "file_search_call"},
				{"type": "message", "content": [
					{"type": "output_text", "text": "長按按鈕十秒。", "annotations": [
						{"type": "file_citation", "file_id": "file_1"},
						{"type": "url_citation", "file_id": ""}
					]}
				]}
			]
		}`)
	}))

	history := []query.Turn{{Question: "有說明書嗎?", Answer: "有，guide.pdf。"}}
	text, attributed, err := openai.NewAnswerService(client).Answer(context.Background(), "vs_1", "如何重設?", history)
	require.NoError(t, err)
	require.Equal(t, "長按按鈕十秒。", text)
	require.Equal(t, []string{"file_1"}, attributed)
}

func TestSpeechProvider_Transcribe(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/audio/transcriptions", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		require.Equal(t, "whisper-1", r.FormValue("model"))
		require.Equal(t, "zh", r.FormValue("language"))

		_ = json.NewEncoder(w).Encode(map[string]string{"text": "請問如何重設"})
	}))

	text, err := openai.NewSpeechProvider(client).Transcribe(context.Background(), voice.LangZhTW, []byte("pcm"))
	require.NoError(t, err)
	require.Equal(t, "請問如何重設", text)
}

func TestSpeechProvider_Synthesize(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/audio/speech", r.URL.Path)

		var req struct {
			Model string `json:"model"`
			Voice string `json:"voice"`
			Input string `json:"input"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "tts-1", req.Model)
		require.Equal(t, "alloy", req.Voice)

		_, _ = w.Write([]byte("mp3 bytes"))
	}))

	audio, err := openai.NewSpeechProvider(client).Synthesize(context.Background(), voice.LangEnUS, "hold the button")
	require.NoError(t, err)
	require.Equal(t, []byte("mp3 bytes"), audio)
}
