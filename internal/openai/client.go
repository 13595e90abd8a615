// Package openai implements the remote collaborators backed by the OpenAI
// API: the vector-store document index, the responses-based answer service
// and the whisper/tts speech provider.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ragdesk/internal/remote"
)

// Config configures the OpenAI client.
type Config struct {
	APIBase string
	APIKey  string
	// Model used by the answer service.
	Model string
	// Instructions override the default grounding prompt when set.
	Instructions string
	Timeout      time.Duration
}

// Client is a thin HTTP client over the OpenAI API. It performs no
// retries; retry policy belongs to its callers.
type Client struct {
	baseURL      string
	apiKey       string
	model        string
	instructions string
	http         *http.Client
}

// NewClient creates a client from explicit configuration.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: missing API key")
	}
	if cfg.APIBase == "" {
		cfg.APIBase = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4.1-mini"
	}
	if cfg.Instructions == "" {
		cfg.Instructions = defaultInstructions
	}
	t := cfg.Timeout
	if t == 0 {
		t = 60 * time.Second
	}
	return &Client{
		baseURL:      strings.TrimRight(cfg.APIBase, "/"),
		apiKey:       cfg.APIKey,
		model:        cfg.Model,
		instructions: cfg.Instructions,
		http:         &http.Client{Timeout: t},
	}, nil
}

// doJSON sends a request with an optional JSON body and decodes a JSON
// response into out (when out is non-nil).
func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("openai: encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("openai: build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, out)
}

// do executes a prepared request, maps the status code onto the remote
// error taxonomy and decodes the response into out when non-nil.
func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", remote.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("openai: decode response: %w", err)
	}
	return nil
}

// doRaw executes a prepared request and returns the raw response bytes.
func (c *Client) doRaw(req *http.Request) ([]byte, error) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", remote.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("openai: read response: %w", err)
	}
	return data, nil
}

func jsonBody(in any) (io.Reader, error) {
	data, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("openai: encode request: %w", err)
	}
	return bytes.NewReader(data), nil
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
		return fmt.Errorf("openai: %s: %s", resp.Status, msg)
	}
}
