package appwrite

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/weekdump/weekdump/internal/store"
)

// Storage implements store.FileStore against the backend's bucket API.
type Storage struct {
	client *Client
}

// NewStorage creates a file-store adapter on top of client.
func NewStorage(client *Client) *Storage {
	return &Storage{client: client}
}

var _ store.FileStore = (*Storage)(nil)

// UploadFile uploads data as a new file with the given id. The photo flow
// uses the photo document id as the file id so the two stay linked.
func (s *Storage) UploadFile(ctx context.Context, bucket, fileID, name string, data []byte) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	if err := writer.WriteField("fileId", fileID); err != nil {
		return fmt.Errorf("failed to write fileId field: %w", err)
	}
	part, err := writer.CreateFormFile("file", name)
	if err != nil {
		return fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write file data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	endpoint := fmt.Sprintf("/storage/buckets/%s/files", bucket)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.client.cfg.Endpoint+endpoint, &buf)
	if err != nil {
		return fmt.Errorf("failed to create upload request: %w", err)
	}
	for key, value := range s.client.headers {
		req.Header.Set(key, value)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := s.client.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to upload file %s: %w", fileID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		responseBody, _ := io.ReadAll(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Body: string(responseBody)}
	}
	return nil
}

// FileViewURL constructs the public view URL for a file. The URL is built
// locally, not fetched, so it behaves the same on every platform; the bucket
// must allow public read. Width and height request a resized preview when
// non-zero.
func (s *Storage) FileViewURL(bucket, fileID string, width, height int) string {
	url := fmt.Sprintf("%s/storage/buckets/%s/files/%s/view?project=%s",
		s.client.cfg.Endpoint, bucket, fileID, s.client.cfg.ProjectID)
	if width > 0 {
		url += fmt.Sprintf("&width=%d", width)
	}
	if height > 0 {
		url += fmt.Sprintf("&height=%d", height)
	}
	return url
}
