// Package storage uploads artifacts to S3-compatible object stores.
package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sharkusmanch/s3sb/internal/domain"
)

// Backend names accepted in configuration.
const (
	BackendS3    = "s3"
	BackendMinIO = "minio"
)

const contentType = "application/gzip"

// Config contains object store connection settings.
type Config struct {
	Backend   string
	Region    string
	Endpoint  string
	Secure    bool
	AccessKey string
	SecretKey string
}

// New creates the object store selected by cfg.Backend.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (domain.ObjectStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.Backend {
	case "", BackendS3:
		return NewS3Store(ctx, cfg, logger)
	case BackendMinIO:
		return NewMinIOStore(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
