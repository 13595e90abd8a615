package openai

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
)

// IndexAdapter implements document.IndexAdapter over OpenAI vector stores.
// A remote index is one vector store; a remote file is a file attached to
// that store.
type IndexAdapter struct {
	c *Client
}

// NewIndexAdapter creates the adapter.
func NewIndexAdapter(c *Client) *IndexAdapter {
	return &IndexAdapter{c: c}
}

// CreateIndex creates a vector store and returns its id.
func (a *IndexAdapter) CreateIndex(ctx context.Context, name string) (string, error) {
	req := struct {
		Name string `json:"name"`
	}{Name: name}
	var resp struct {
		ID string `json:"id"`
	}
	if err := a.c.doJSON(ctx, http.MethodPost, "/vector_stores", req, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

// DeleteIndex deletes a vector store.
func (a *IndexAdapter) DeleteIndex(ctx context.Context, remoteIndexID string) error {
	return a.c.doJSON(ctx, http.MethodDelete, "/vector_stores/"+url.PathEscape(remoteIndexID), nil, nil)
}

// AddFile uploads the bytes to the files endpoint, then attaches the file
// to the vector store. The returned id addresses the file in later
// remove/list calls.
func (a *IndexAdapter) AddFile(ctx context.Context, remoteIndexID, filename string, data []byte) (string, error) {
	fileID, err := a.uploadFile(ctx, filename, data)
	if err != nil {
		return "", err
	}

	attach := struct {
		FileID string `json:"file_id"`
	}{FileID: fileID}
	if err := a.c.doJSON(ctx, http.MethodPost, "/vector_stores/"+url.PathEscape(remoteIndexID)+"/files", attach, nil); err != nil {
		return "", err
	}
	return fileID, nil
}

// RemoveFile detaches a file from the vector store. The global file object
// is kept; it may be shared with other stores.
func (a *IndexAdapter) RemoveFile(ctx context.Context, remoteIndexID, remoteFileID string) error {
	path := "/vector_stores/" + url.PathEscape(remoteIndexID) + "/files/" + url.PathEscape(remoteFileID)
	return a.c.doJSON(ctx, http.MethodDelete, path, nil, nil)
}

// ListFiles returns the ids of all files attached to the vector store,
// following the pagination cursor to the end.
func (a *IndexAdapter) ListFiles(ctx context.Context, remoteIndexID string) ([]string, error) {
	var ids []string
	after := ""
	for {
		path := "/vector_stores/" + url.PathEscape(remoteIndexID) + "/files?limit=100"
		if after != "" {
			path += "&after=" + url.QueryEscape(after)
		}

		var resp struct {
			Data []struct {
				ID string `json:"id"`
			} `json:"data"`
			HasMore bool   `json:"has_more"`
			LastID  string `json:"last_id"`
		}
		if err := a.c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
			return nil, err
		}
		for _, f := range resp.Data {
			ids = append(ids, f.ID)
		}
		if !resp.HasMore || resp.LastID == "" {
			return ids, nil
		}
		after = resp.LastID
	}
}

func (a *IndexAdapter) uploadFile(ctx context.Context, filename string, data []byte) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("purpose", "assistants"); err != nil {
		return "", fmt.Errorf("openai: build upload: %w", err)
	}
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("openai: build upload: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("openai: build upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("openai: build upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.c.baseURL+"/files", &buf)
	if err != nil {
		return "", fmt.Errorf("openai: build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var resp struct {
		ID string `json:"id"`
	}
	if err := a.c.do(req, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}
