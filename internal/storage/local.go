package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// localStorage implements FileStore using the local filesystem
type localStorage struct {
	basePath string
	baseURL  string
}

// NewLocalStorage creates a new localStorage instance.
// Files land in basePath/<folder>/ and are served under baseURL/<folder>/.
func NewLocalStorage(basePath, baseURL string) *localStorage {
	return &localStorage{
		basePath: basePath,
		baseURL:  baseURL,
	}
}

// Save writes r to a new file and returns its URL
func (s *localStorage) Save(ctx context.Context, r io.Reader, filename, folder string) (string, error) {
	ext, err := AllowedExtension(filename)
	if err != nil {
		return "", err
	}
	if err := validateFolder(folder); err != nil {
		return "", err
	}

	dir := filepath.Join(s.basePath, folder)
	// Ensure the directory exists
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	name := GenerateFileName(ext)
	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return s.baseURL + "/" + folder + "/" + name, nil
}
