// Package googlespeech implements voice.Provider over the Google Cloud
// Speech-to-Text and Text-to-Speech REST APIs.
package googlespeech

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ragdesk/internal/domain/voice"
	"ragdesk/internal/remote"
)

// Config configures the Google speech provider.
type Config struct {
	APIKey     string
	SpeechBase string
	TTSBase    string
	Timeout    time.Duration
}

// Provider calls the two Google speech services. It performs no retries.
type Provider struct {
	apiKey     string
	speechBase string
	ttsBase    string
	http       *http.Client
}

// NewProvider creates a provider from explicit configuration.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("googlespeech: missing API key")
	}
	if cfg.SpeechBase == "" {
		cfg.SpeechBase = "https://speech.googleapis.com/v1"
	}
	if cfg.TTSBase == "" {
		cfg.TTSBase = "https://texttospeech.googleapis.com/v1"
	}
	t := cfg.Timeout
	if t == 0 {
		t = 30 * time.Second
	}
	return &Provider{
		apiKey:     cfg.APIKey,
		speechBase: strings.TrimRight(cfg.SpeechBase, "/"),
		ttsBase:    strings.TrimRight(cfg.TTSBase, "/"),
		http:       &http.Client{Timeout: t},
	}, nil
}

// Supports reports the languages this provider serves.
func (p *Provider) Supports(lang voice.Language) bool {
	switch lang {
	case voice.LangZhTW, voice.LangEnUS:
		return true
	default:
		return false
	}
}

// Transcribe recognizes LINEAR16 16kHz mono audio and joins the
// alternatives' top transcripts.
func (p *Provider) Transcribe(ctx context.Context, lang voice.Language, audio []byte) (string, error) {
	req := struct {
		Config struct {
			Encoding                   string `json:"encoding"`
			SampleRateHertz            int    `json:"sampleRateHertz"`
			LanguageCode               string `json:"languageCode"`
			EnableAutomaticPunctuation bool   `json:"enableAutomaticPunctuation"`
		} `json:"config"`
		Audio struct {
			Content string `json:"content"`
		} `json:"audio"`
	}{}
	req.Config.Encoding = "LINEAR16"
	req.Config.SampleRateHertz = 16000
	req.Config.LanguageCode = recognizeLanguage(lang)
	req.Config.EnableAutomaticPunctuation = true
	req.Audio.Content = base64.StdEncoding.EncodeToString(audio)

	var resp struct {
		Results []struct {
			Alternatives []struct {
				Transcript string `json:"transcript"`
			} `json:"alternatives"`
		} `json:"results"`
	}
	if err := p.post(ctx, p.speechBase+"/speech:recognize", req, &resp); err != nil {
		return "", err
	}

	var parts []string
	for _, result := range resp.Results {
		if len(result.Alternatives) > 0 {
			parts = append(parts, result.Alternatives[0].Transcript)
		}
	}
	return strings.Join(parts, " "), nil
}

// Synthesize renders the text as MP3.
func (p *Provider) Synthesize(ctx context.Context, lang voice.Language, text string) ([]byte, error) {
	req := struct {
		Input struct {
			Text string `json:"text"`
		} `json:"input"`
		Voice struct {
			LanguageCode string `json:"languageCode"`
		} `json:"voice"`
		AudioConfig struct {
			AudioEncoding string `json:"audioEncoding"`
		} `json:"audioConfig"`
	}{}
	req.Input.Text = text
	req.Voice.LanguageCode = string(lang)
	req.AudioConfig.AudioEncoding = "MP3"

	var resp struct {
		AudioContent string `json:"audioContent"`
	}
	if err := p.post(ctx, p.ttsBase+"/text:synthesize", req, &resp); err != nil {
		return nil, err
	}

	data, err := base64.StdEncoding.DecodeString(resp.AudioContent)
	if err != nil {
		return nil, fmt.Errorf("googlespeech: decode audio: %w", err)
	}
	return data, nil
}

func (p *Provider) post(ctx context.Context, endpoint string, in, out any) error {
	data, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("googlespeech: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint+"?key="+url.QueryEscape(p.apiKey), bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("googlespeech: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", remote.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("googlespeech: decode response: %w", err)
	}
	return nil
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode < 300 {
		return nil
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	msg := strings.TrimSpace(string(data))

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", remote.ErrNotFound, msg)
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", remote.ErrQuotaExceeded, msg)
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: %s: %s", remote.ErrServiceUnavailable, resp.Status, msg)
	default:
		return fmt.Errorf("googlespeech: %s: %s", resp.Status, msg)
	}
}

// recognizeLanguage maps the locale tag onto the code the recognizer
// expects; Mandarin in Taiwan is cmn-Hant-TW on the STT side.
func recognizeLanguage(lang voice.Language) string {
	if lang == voice.LangZhTW {
		return "cmn-Hant-TW"
	}
	return string(lang)
}
