package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

const mediaUploadTimeout = 30 * time.Second

// mediaStorage implements FileStore by uploading to the media service.
// The service answers POST /media/{folder} with the download URL as plain text.
type mediaStorage struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewMediaStorage creates a media service client; a nil client gets a default with a timeout
func NewMediaStorage(baseURL, apiKey string, client *http.Client) *mediaStorage {
	if client == nil {
		client = &http.Client{Timeout: mediaUploadTimeout}
	}
	return &mediaStorage{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  client,
	}
}

// Save uploads r as a multipart "file" field and returns the URL reported by the media service
func (s *mediaStorage) Save(ctx context.Context, r io.Reader, filename, folder string) (string, error) {
	ext, err := AllowedExtension(filename)
	if err != nil {
		return "", err
	}
	if err := validateFolder(folder); err != nil {
		return "", err
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", GenerateFileName(ext))
	if err != nil {
		return "", fmt.Errorf("failed to create multipart form: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to create multipart form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/media/"+folder, &body)
	if err != nil {
		return "", fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if s.apiKey != "" {
		req.Header.Set("X-API-Key", s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("media service upload failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return "", fmt.Errorf("failed to read media service response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("media service upload failed: status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	url := strings.TrimSpace(string(respBody))
	if url == "" {
		return "", fmt.Errorf("media service returned an empty url")
	}

	return url, nil
}
