package executor

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/sharkusmanch/s3sb/internal/domain"
)

// createArtifact creates dest exclusively with owner-only permissions.
func createArtifact(dest string) (*os.File, error) {
	f, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil, fmt.Errorf("%w at %s", domain.ErrArtifactExists, dest)
		}
		return nil, fmt.Errorf("failed to create %s: %w", dest, err)
	}
	return f, nil
}

// discardArtifact removes a partially written artifact.
func discardArtifact(dest string) {
	_ = os.Remove(dest)
}
