package storage

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/sharkusmanch/s3sb/internal/domain"
)

// MinIOStore implements domain.ObjectStore using minio-go.
type MinIOStore struct {
	client *minio.Client
	logger *slog.Logger
}

// NewMinIOStore creates a MinIOStore for the endpoint in cfg.
func NewMinIOStore(cfg Config, logger *slog.Logger) (*MinIOStore, error) {
	endpoint, secure, err := parseEndpoint(cfg.Endpoint, cfg.Secure)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint: %w", err)
	}

	// One attempt per request, matching the S3 backend. MaxRetry is a
	// package global, so this applies to every minio client in the process;
	// s3sb builds exactly one store per run.
	minio.MaxRetry = 1

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: secure,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, err
	}

	logger.Debug("MinIO client initialized", "endpoint", endpoint, "secure", secure)

	return &MinIOStore{client: client, logger: logger}, nil
}

// parseEndpoint reduces endpoint to host:port. A URL scheme, when present,
// overrides secure.
func parseEndpoint(endpoint string, secure bool) (string, bool, error) {
	if endpoint == "" {
		return "", false, fmt.Errorf("endpoint cannot be empty")
	}

	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		if strings.Contains(endpoint, "/") {
			return "", false, fmt.Errorf("endpoint contains path but no protocol")
		}
		return endpoint, secure, nil
	}

	parsedURL, err := url.Parse(endpoint)
	if err != nil {
		return "", false, fmt.Errorf("failed to parse endpoint URL: %w", err)
	}
	if parsedURL.Path != "" && parsedURL.Path != "/" {
		return "", false, fmt.Errorf("endpoint URL cannot have paths, only host:port is allowed (got path: %s)", parsedURL.Path)
	}

	return parsedURL.Host, parsedURL.Scheme == "https", nil
}

// Upload implements domain.ObjectStore.Upload as a single-part PutObject.
func (m *MinIOStore) Upload(ctx context.Context, localPath, bucket, key string) (int64, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return 0, &domain.UploadError{Bucket: bucket, Key: key, Err: err}
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return 0, &domain.UploadError{Bucket: bucket, Key: key, Err: err}
	}

	m.logger.Debug("uploading object", "bucket", bucket, "key", key, "bytes", info.Size())

	uploaded, err := m.client.PutObject(ctx, bucket, key, f, info.Size(), minio.PutObjectOptions{
		ContentType:      contentType,
		DisableMultipart: true,
	})
	if err != nil {
		return 0, &domain.UploadError{Bucket: bucket, Key: key, Err: err}
	}

	return uploaded.Size, nil
}

// Validate checks that the bucket exists.
func (m *MinIOStore) Validate(ctx context.Context, bucket string) error {
	ok, err := m.client.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("bucket %s not accessible: %w", bucket, err)
	}
	if !ok {
		return fmt.Errorf("bucket %s does not exist", bucket)
	}
	return nil
}

// Ensure MinIOStore implements domain.ObjectStore.
var _ domain.ObjectStore = (*MinIOStore)(nil)
