package storage

import (
	"context"
	"os"

	"github.com/sharkusmanch/s3sb/internal/domain"
)

// Upload records one call to MockStore.Upload.
type Upload struct {
	LocalPath string
	Bucket    string
	Key       string
	Content   []byte
}

// MockStore is a mock implementation of domain.ObjectStore for testing.
type MockStore struct {
	UploadFunc   func(ctx context.Context, localPath, bucket, key string) (int64, error)
	ValidateFunc func(ctx context.Context, bucket string) error

	// Uploads stores every upload attempt, including the file content at the
	// time of the call.
	Uploads []Upload
}

// Upload records the call and calls UploadFunc, or reports the file size.
func (m *MockStore) Upload(ctx context.Context, localPath, bucket, key string) (int64, error) {
	content, err := os.ReadFile(localPath)
	if err != nil {
		return 0, &domain.UploadError{Bucket: bucket, Key: key, Err: err}
	}
	m.Uploads = append(m.Uploads, Upload{LocalPath: localPath, Bucket: bucket, Key: key, Content: content})

	if m.UploadFunc != nil {
		return m.UploadFunc(ctx, localPath, bucket, key)
	}
	return int64(len(content)), nil
}

// Validate calls the mock ValidateFunc.
func (m *MockStore) Validate(ctx context.Context, bucket string) error {
	if m.ValidateFunc != nil {
		return m.ValidateFunc(ctx, bucket)
	}
	return nil
}

// Ensure MockStore implements domain.ObjectStore.
var _ domain.ObjectStore = (*MockStore)(nil)
