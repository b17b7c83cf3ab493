package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTask is returned when a task fails validation.
	ErrInvalidTask = errors.New("task failed validation")
	// ErrIncompleteDatabase is returned when a database section lacks a field.
	ErrIncompleteDatabase = errors.New("missing some database details")
	// ErrIncompleteFiles is returned when a files section lacks its path.
	ErrIncompleteFiles = errors.New("missing path to site files")
	// ErrArtifactExists is returned when an artifact path is already taken,
	// which means a previous run stopped before cleaning up.
	ErrArtifactExists = errors.New("artifact already exists")
)

// UploadError wraps a failed transfer to the object store.
type UploadError struct {
	Bucket string
	Key    string
	Err    error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload of s3://%s/%s failed: %v", e.Bucket, e.Key, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}
