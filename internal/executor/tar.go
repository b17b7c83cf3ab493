package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sharkusmanch/s3sb/internal/domain"
)

const (
	defaultTar = "tar"

	// tarChangedStatus is GNU tar's status for files that changed while
	// being read. The archive is still complete.
	tarChangedStatus = 1
)

// TarArchiver implements domain.Archiver with tar -czf.
type TarArchiver struct {
	runner Runner
	tar    string
	logger *slog.Logger
}

// TarArchiverOption configures a TarArchiver.
type TarArchiverOption func(*TarArchiver)

// WithTarPath sets the tar binary.
func WithTarPath(path string) TarArchiverOption {
	return func(a *TarArchiver) {
		if path != "" {
			a.tar = path
		}
	}
}

// WithArchiverLogger sets the logger.
func WithArchiverLogger(logger *slog.Logger) TarArchiverOption {
	return func(a *TarArchiver) {
		a.logger = logger
	}
}

// NewTarArchiver creates a new TarArchiver running commands through runner.
func NewTarArchiver(runner Runner, opts ...TarArchiverOption) *TarArchiver {
	a := &TarArchiver{
		runner: runner,
		tar:    defaultTar,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Archive writes a gzip-compressed tar of files.Path to dest.
func (a *TarArchiver) Archive(ctx context.Context, files domain.FilesSpec, dest string) error {
	// Claim the path first so a leftover artifact is never overwritten.
	f, err := createArtifact(dest)
	if err != nil {
		return err
	}
	_ = f.Close()

	a.logger.Debug("archiving files", "path", files.Path, "excludes", len(files.Exclude), "dest", dest)

	err = a.runner.Pipe(ctx, nil, a.archiveCommand(files, dest))
	if err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode == tarChangedStatus {
			a.logger.Warn("files changed while archiving", "path", files.Path, "detail", exitErr.Stderr)
			return nil
		}
		discardArtifact(dest)
		return fmt.Errorf("file archive failed: %w", err)
	}

	return nil
}

// Validate checks that tar can be found.
func (a *TarArchiver) Validate(_ context.Context) error {
	return lookPath(a.tar)
}

func (a *TarArchiver) archiveCommand(files domain.FilesSpec, dest string) Command {
	args := []string{"-czf", dest}
	for _, pattern := range files.Exclude {
		args = append(args, "--exclude="+pattern)
	}
	args = append(args, "--", files.Path)

	return Command{Path: a.tar, Args: args}
}

// Ensure TarArchiver implements domain.Archiver.
var _ domain.Archiver = (*TarArchiver)(nil)
