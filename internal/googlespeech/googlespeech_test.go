package googlespeech_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"ragdesk/internal/domain/voice"
	"ragdesk/internal/googlespeech"
	"ragdesk/internal/remote"
)

func newTestProvider(t *testing.T, handler http.Handler) *googlespeech.Provider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	provider, err := googlespeech.NewProvider(googlespeech.Config{
		APIKey:     "test-key",
		SpeechBase: server.URL,
		TTSBase:    server.URL,
	})
	require.NoError(t, err)
	return provider
}

func TestProvider_Transcribe(t *testing.T) {
	provider := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/speech:recognize", r.URL.Path)
		require.Equal(t, "test-key", r.URL.Query().Get("key"))

		var req struct {
			Config struct {
				Encoding        string `json:"encoding"`
				SampleRateHertz int    `json:"sampleRateHertz"`
				LanguageCode    string `json:"languageCode"`
			} `json:"config"`
			Audio struct {
				Content string `json:"content"`
			} `json:"audio"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "LINEAR16", req.Config.Encoding)
		require.Equal(t, 16000, req.Config.SampleRateHertz)
		require.Equal(t, "cmn-Hant-TW", req.Config.LanguageCode)

		raw, err := base64.StdEncoding.DecodeString(req.Audio.Content)
		require.NoError(t, err)
		require.Equal(t, []byte("pcm"), raw)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				{"alternatives": []map[string]string{{"transcript": "請問"}}},
				{"alternatives": []map[string]string{{"transcript": "如何重設"}}},
			},
		})
	}))

	text, err := provider.Transcribe(context.Background(), voice.LangZhTW, []byte("pcm"))
	require.NoError(t, err)
	require.Equal(t, "請問 如何重設", text)
}

func TestProvider_Synthesize(t *testing.T) {
	provider := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/text:synthesize", r.URL.Path)

		var req struct {
			Input struct {
				Text string `json:"text"`
			} `json:"input"`
			Voice struct {
				LanguageCode string `json:"languageCode"`
			} `json:"voice"`
			AudioConfig struct {
				AudioEncoding string `json:"audioEncoding"`
			} `json:"audioConfig"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "en-US", req.Voice.LanguageCode)
		require.Equal(t, "MP3", req.AudioConfig.AudioEncoding)

		_ = json.NewEncoder(w).Encode(map[string]string{
			"audioContent": base64.StdEncoding.EncodeToString([]byte("mp3 bytes")),
		})
	}))

	audio, err := provider.Synthesize(context.Background(), voice.LangEnUS, "hold the button")
	require.NoError(t, err)
	require.Equal(t, []byte("mp3 bytes"), audio)
}

func TestProvider_QuotaError(t *testing.T) {
	provider := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))

	_, err := provider.Transcribe(context.Background(), voice.LangEnUS, []byte("pcm"))
	require.ErrorIs(t, err, remote.ErrQuotaExceeded)
}
