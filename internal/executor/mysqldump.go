package executor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sharkusmanch/s3sb/internal/domain"
)

const (
	defaultMySQLDump = "mysqldump"
	defaultGzip      = "gzip"

	// passwordEnv keeps the database password out of argv and logs.
	passwordEnv = "MYSQL_PWD"
)

// MySQLDumper implements domain.Dumper with mysqldump piped through gzip.
type MySQLDumper struct {
	runner    Runner
	mysqldump string
	gzip      string
	logger    *slog.Logger
}

// MySQLDumperOption configures a MySQLDumper.
type MySQLDumperOption func(*MySQLDumper)

// WithMySQLDumpPath sets the mysqldump binary.
func WithMySQLDumpPath(path string) MySQLDumperOption {
	return func(d *MySQLDumper) {
		if path != "" {
			d.mysqldump = path
		}
	}
}

// WithGzipPath sets the gzip binary.
func WithGzipPath(path string) MySQLDumperOption {
	return func(d *MySQLDumper) {
		if path != "" {
			d.gzip = path
		}
	}
}

// WithDumperLogger sets the logger.
func WithDumperLogger(logger *slog.Logger) MySQLDumperOption {
	return func(d *MySQLDumper) {
		d.logger = logger
	}
}

// NewMySQLDumper creates a new MySQLDumper running commands through runner.
func NewMySQLDumper(runner Runner, opts ...MySQLDumperOption) *MySQLDumper {
	d := &MySQLDumper{
		runner:    runner,
		mysqldump: defaultMySQLDump,
		gzip:      defaultGzip,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Dump writes a gzip-compressed SQL dump of db to dest.
func (d *MySQLDumper) Dump(ctx context.Context, db domain.DatabaseSpec, dest string) error {
	f, err := createArtifact(dest)
	if err != nil {
		return err
	}

	d.logger.Debug("dumping database", "host", db.Hostname, "database", db.Name, "dest", dest)

	err = d.runner.Pipe(ctx, f, d.dumpCommand(db), d.gzipCommand())
	closeErr := f.Close()
	if err != nil {
		discardArtifact(dest)
		return fmt.Errorf("database dump failed: %w", err)
	}
	if closeErr != nil {
		discardArtifact(dest)
		return fmt.Errorf("failed to write %s: %w", dest, closeErr)
	}

	return nil
}

// Validate checks that mysqldump and gzip can be found.
func (d *MySQLDumper) Validate(_ context.Context) error {
	if err := lookPath(d.mysqldump); err != nil {
		return err
	}
	return lookPath(d.gzip)
}

// dumpCommand builds the mysqldump invocation. Tablespace statements are
// omitted so the dump restores on servers without matching tablespaces.
func (d *MySQLDumper) dumpCommand(db domain.DatabaseSpec) Command {
	return Command{
		Path: d.mysqldump,
		Args: []string{
			"-h", db.Hostname,
			"-u", db.Username,
			"--no-tablespaces",
			"--",
			db.Name,
		},
		Env: map[string]string{passwordEnv: db.Password},
	}
}

func (d *MySQLDumper) gzipCommand() Command {
	return Command{Path: d.gzip, Args: []string{"-c"}}
}

// Ensure MySQLDumper implements domain.Dumper.
var _ domain.Dumper = (*MySQLDumper)(nil)
