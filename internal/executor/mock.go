package executor

import (
	"context"
	"io"
	"os"

	"github.com/sharkusmanch/s3sb/internal/domain"
)

// MockRunner is a mock implementation of Runner that records pipelines.
type MockRunner struct {
	PipeFunc func(ctx context.Context, out io.Writer, cmds ...Command) error

	// Pipelines stores every pipeline that was run.
	Pipelines [][]Command
}

// Pipe records cmds and calls PipeFunc.
func (m *MockRunner) Pipe(ctx context.Context, out io.Writer, cmds ...Command) error {
	m.Pipelines = append(m.Pipelines, cmds)
	if m.PipeFunc != nil {
		return m.PipeFunc(ctx, out, cmds...)
	}
	return nil
}

// MockDumper is a mock implementation of domain.Dumper for testing.
type MockDumper struct {
	DumpFunc     func(ctx context.Context, db domain.DatabaseSpec, dest string) error
	ValidateFunc func(ctx context.Context) error

	// Dests stores the destination of every dump.
	Dests []string
}

// Dump calls DumpFunc, or writes a small placeholder artifact to dest.
func (m *MockDumper) Dump(ctx context.Context, db domain.DatabaseSpec, dest string) error {
	m.Dests = append(m.Dests, dest)
	if m.DumpFunc != nil {
		return m.DumpFunc(ctx, db, dest)
	}
	return os.WriteFile(dest, []byte("-- dump of "+db.Name+"\n"), 0600)
}

// Validate calls the mock ValidateFunc.
func (m *MockDumper) Validate(ctx context.Context) error {
	if m.ValidateFunc != nil {
		return m.ValidateFunc(ctx)
	}
	return nil
}

// MockArchiver is a mock implementation of domain.Archiver for testing.
type MockArchiver struct {
	ArchiveFunc  func(ctx context.Context, files domain.FilesSpec, dest string) error
	ValidateFunc func(ctx context.Context) error

	// Dests stores the destination of every archive.
	Dests []string
}

// Archive calls ArchiveFunc, or writes a small placeholder artifact to dest.
func (m *MockArchiver) Archive(ctx context.Context, files domain.FilesSpec, dest string) error {
	m.Dests = append(m.Dests, dest)
	if m.ArchiveFunc != nil {
		return m.ArchiveFunc(ctx, files, dest)
	}
	return os.WriteFile(dest, []byte("archive of "+files.Path+"\n"), 0600)
}

// Validate calls the mock ValidateFunc.
func (m *MockArchiver) Validate(ctx context.Context) error {
	if m.ValidateFunc != nil {
		return m.ValidateFunc(ctx)
	}
	return nil
}

// Ensure mocks implement their interfaces.
var (
	_ Runner          = (*MockRunner)(nil)
	_ domain.Dumper   = (*MockDumper)(nil)
	_ domain.Archiver = (*MockArchiver)(nil)
)
