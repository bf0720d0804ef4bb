// Package storage saves uploaded files and returns the URL they are served from.
package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/catalyst/backend/internal/config"
	"go.uber.org/zap"
)

// FileStore saves a file under folder and returns its public URL.
// The stored name is generated; the client filename only contributes its extension.
type FileStore interface {
	Save(ctx context.Context, r io.Reader, filename, folder string) (string, error)
}

// New returns the FileStore selected by cfg.Backend
func New(cfg config.StorageConfig, apiKey string, logger *zap.Logger) (FileStore, error) {
	switch cfg.Backend {
	case config.StorageLocal:
		logger.Info("using local file storage", zap.String("dir", cfg.UploadDir))
		return NewLocalStorage(cfg.UploadDir, cfg.UploadURL), nil
	case config.StorageMedia:
		logger.Info("using media service file storage", zap.String("base_url", cfg.MediaBaseURL))
		return NewMediaStorage(cfg.MediaBaseURL, apiKey, nil), nil
	default:
		return nil, fmt.Errorf("unknown file storage backend %q", cfg.Backend)
	}
}
