package openai

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"

	"ragdesk/internal/domain/voice"
)

// SpeechProvider implements voice.Provider with whisper-1 transcription
// and tts-1 synthesis.
type SpeechProvider struct {
	c *Client
}

// NewSpeechProvider creates the provider.
func NewSpeechProvider(c *Client) *SpeechProvider {
	return &SpeechProvider{c: c}
}

// Supports reports the languages whisper/tts serve here.
func (p *SpeechProvider) Supports(lang voice.Language) bool {
	switch lang {
	case voice.LangZhTW, voice.LangEnUS:
		return true
	default:
		return false
	}
}

// Transcribe sends the audio to whisper-1 and returns the transcript.
func (p *SpeechProvider) Transcribe(ctx context.Context, lang voice.Language, audio []byte) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("model", "whisper-1"); err != nil {
		return "", fmt.Errorf("openai: build transcription: %w", err)
	}
	if err := mw.WriteField("language", isoLanguage(lang)); err != nil {
		return "", fmt.Errorf("openai: build transcription: %w", err)
	}
	// Whisper requires a filename on the upload; the capture format from
	// the UI is wav.
	part, err := mw.CreateFormFile("file", "audio.wav")
	if err != nil {
		return "", fmt.Errorf("openai: build transcription: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return "", fmt.Errorf("openai: build transcription: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("openai: build transcription: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.c.baseURL+"/audio/transcriptions", &buf)
	if err != nil {
		return "", fmt.Errorf("openai: build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var resp struct {
		Text string `json:"text"`
	}
	if err := p.c.do(req, &resp); err != nil {
		return "", err
	}
	return resp.Text, nil
}

// Synthesize renders the text with tts-1 and returns MP3 bytes.
func (p *SpeechProvider) Synthesize(ctx context.Context, lang voice.Language, text string) ([]byte, error) {
	body := struct {
		Model string `json:"model"`
		Voice string `json:"voice"`
		Input string `json:"input"`
	}{Model: "tts-1", Voice: "alloy", Input: text}

	data, err := jsonBody(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.c.baseURL+"/audio/speech", data)
	if err != nil {
		return nil, fmt.Errorf("openai: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return p.c.doRaw(req)
}

// isoLanguage narrows a locale tag to the ISO-639 code whisper expects.
func isoLanguage(lang voice.Language) string {
	if lang == voice.LangZhTW {
		return "zh"
	}
	return "en"
}
