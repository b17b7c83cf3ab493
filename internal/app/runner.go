// Package app runs backup tasks.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/sharkusmanch/s3sb/internal/config"
	"github.com/sharkusmanch/s3sb/internal/domain"
	"github.com/sharkusmanch/s3sb/internal/format"
	"github.com/sharkusmanch/s3sb/internal/notify"
)

const workDirPerm = 0o700

// RunOptions selects what a single run does.
type RunOptions struct {
	// Mode is the frequency to process, or domain.ModeTest.
	Mode domain.Mode

	// Only restricts processing to the task with this name when set.
	Only string

	// StartedAt is the reference for the elapsed time report. Defaults to
	// the time Run is called.
	StartedAt time.Time
}

// Runner processes the configured tasks one at a time.
type Runner struct {
	config        *config.Config
	dumper        domain.Dumper
	archiver      domain.Archiver
	store         domain.ObjectStore
	notifier      domain.Notifier
	metricsPusher domain.MetricsPusher
	logger        *slog.Logger
	out           io.Writer
	now           func() time.Time
	hostname      string
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithDumper sets the database dumper.
func WithDumper(d domain.Dumper) RunnerOption {
	return func(r *Runner) {
		r.dumper = d
	}
}

// WithArchiver sets the file archiver.
func WithArchiver(a domain.Archiver) RunnerOption {
	return func(r *Runner) {
		r.archiver = a
	}
}

// WithObjectStore sets the upload target.
func WithObjectStore(s domain.ObjectStore) RunnerOption {
	return func(r *Runner) {
		r.store = s
	}
}

// WithMetricsPusher sets the metrics pusher.
func WithMetricsPusher(m domain.MetricsPusher) RunnerOption {
	return func(r *Runner) {
		r.metricsPusher = m
	}
}

// WithNotifier sets the notifier.
func WithNotifier(n domain.Notifier) RunnerOption {
	return func(r *Runner) {
		r.notifier = n
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = l
	}
}

// WithOutput sets where status lines are printed.
func WithOutput(w io.Writer) RunnerOption {
	return func(r *Runner) {
		r.out = w
	}
}

// WithClock sets the time source used for timestamps and elapsed time.
func WithClock(now func() time.Time) RunnerOption {
	return func(r *Runner) {
		r.now = now
	}
}

// WithHostname overrides the hostname reported in metrics and notifications.
func WithHostname(hostname string) RunnerOption {
	return func(r *Runner) {
		r.hostname = hostname
	}
}

// NewRunner creates a new Runner.
func NewRunner(cfg *config.Config, opts ...RunnerOption) *Runner {
	hostname, _ := os.Hostname()

	r := &Runner{
		config:   cfg,
		logger:   slog.Default(),
		out:      os.Stdout,
		now:      time.Now,
		hostname: hostname,
		notifier: &domain.NopNotifier{},
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Run executes one run over the configured tasks. Any task failure aborts
// the run and is returned; the result is returned either way.
func (r *Runner) Run(ctx context.Context, opts RunOptions) (*domain.RunResult, error) {
	start := opts.StartedAt
	if start.IsZero() {
		start = r.now()
	}
	result := domain.NewRunResult(opts.Mode, start)

	r.printf("Starting s3sb in %s mode...\n", opts.Mode)
	r.logger.Info("starting run", "mode", opts.Mode, "only", opts.Only, "tasks", len(r.config.Tasks))

	for _, w := range r.config.Warnings() {
		r.printf("Warning: %s.\n", w)
		r.logger.Warn("configuration warning", "warning", w)
		result.AddWarning(w)
	}

	var err error
	switch {
	case opts.Mode == domain.ModeTest:
		err = r.test(result)
	case opts.Mode.IsValid():
		err = r.process(ctx, opts, result)
	default:
		err = fmt.Errorf("unknown mode %q", opts.Mode)
	}

	result.Complete(r.now(), err)

	if err != nil {
		r.logger.Error("run failed", "mode", opts.Mode, "error", err, "tasks_completed", result.TasksCompleted)
	} else {
		r.logger.Info("run completed", "mode", opts.Mode, "tasks_completed", result.TasksCompleted, "duration", result.Duration)
	}

	if opts.Mode != domain.ModeTest {
		// Reporting failures never change the outcome of the run.
		if perr := r.pushMetrics(ctx, result); perr != nil {
			r.logger.Warn("failed to push metrics", "error", perr)
		}
		if nerr := r.sendNotification(ctx, result); nerr != nil {
			r.logger.Warn("failed to send notification", "error", nerr)
		}
	}

	return result, err
}

// test validates every task without filtering and touches nothing else.
func (r *Runner) test(result *domain.RunResult) error {
	failed := 0
	for _, task := range r.config.Tasks {
		tr := &domain.TaskResult{Name: task.Name, Valid: task.Valid()}
		result.AddTask(tr)

		if tr.Valid {
			r.printf("Task '%s' tested OK\n", task.Label())
			continue
		}
		failed++
		r.printf("Task '%s' failed testing\n", task.Label())
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d task(s) %w", failed, len(r.config.Tasks), domain.ErrInvalidTask)
	}
	return nil
}

func (r *Runner) process(ctx context.Context, opts RunOptions, result *domain.RunResult) error {
	if err := r.prepareWorkDir(); err != nil {
		return err
	}

	for _, task := range r.config.Tasks {
		r.printf("---\n")
		r.printf("Running task '%s'...\n", task.Label())

		if !task.Valid() {
			return fmt.Errorf("task '%s': %w", task.Label(), domain.ErrInvalidTask)
		}

		if task.Frequency != opts.Mode.String() {
			r.printf("Skipping task: frequency %s\n", task.Frequency)
			result.AddTask(&domain.TaskResult{Name: task.Name, Valid: true, Skipped: true, Reason: "frequency " + task.Frequency})
			continue
		}

		if opts.Only != "" && task.Name != opts.Only {
			r.printf("Skipping task: single task mode specified.\n")
			result.AddTask(&domain.TaskResult{Name: task.Name, Valid: true, Skipped: true, Reason: "single task mode"})
			continue
		}

		tr, err := r.runTask(ctx, task)
		result.AddTask(tr)
		if err != nil {
			return fmt.Errorf("task %s: %w", task.Name, err)
		}
		result.TasksCompleted++
	}

	r.printf("---\n")
	elapsed := r.now().Sub(result.StartTime)
	r.printf("%d task(s) completed in %s.\n", result.TasksCompleted, format.Seconds(int64(elapsed.Seconds())))

	return nil
}

// runTask runs the database branch and then the files branch of task. Both
// artifacts share one timestamp.
func (r *Runner) runTask(ctx context.Context, task domain.Task) (*domain.TaskResult, error) {
	start := r.now()
	tr := &domain.TaskResult{
		Name:      task.Name,
		Valid:     true,
		Timestamp: domain.Timestamp(start),
	}
	defer func() {
		tr.Duration = r.now().Sub(start)
	}()

	logger := r.logger.With("task", task.Name, "timestamp", tr.Timestamp)

	if task.HasDatabase() {
		if !task.Database.Complete() {
			return tr, domain.ErrIncompleteDatabase
		}
		artifact, err := r.produce(ctx, task, domain.ArtifactDatabase, tr.Timestamp, logger)
		if err != nil {
			return tr, err
		}
		tr.Artifacts = append(tr.Artifacts, artifact)
	}

	if task.HasFiles() {
		if !task.Files.Complete() {
			return tr, domain.ErrIncompleteFiles
		}
		artifact, err := r.produce(ctx, task, domain.ArtifactFiles, tr.Timestamp, logger)
		if err != nil {
			return tr, err
		}
		tr.Artifacts = append(tr.Artifacts, artifact)
	}

	return tr, nil
}

// produce builds one artifact, uploads it and removes the local copy.
func (r *Runner) produce(ctx context.Context, task domain.Task, kind domain.ArtifactKind, timestamp string, logger *slog.Logger) (*domain.ArtifactResult, error) {
	start := r.now()
	filename := domain.ArtifactName(task.Name, kind, timestamp)
	path := filepath.Join(r.config.WorkDir, filename)
	key := task.ObjectKey(filename)

	if _, err := os.Lstat(path); err == nil {
		return nil, fmt.Errorf("%w at %s, did a previous operation fail?", domain.ErrArtifactExists, path)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to check %s: %w", path, err)
	}

	switch kind {
	case domain.ArtifactDatabase:
		r.printf("Dumping database...")
		if err := r.dumper.Dump(ctx, *task.Database, path); err != nil {
			r.printf("\n")
			return nil, err
		}
	case domain.ArtifactFiles:
		if len(task.Files.Exclude) > 0 {
			r.printf("Archiving site (with exclusions)...")
		} else {
			r.printf("Archiving site...")
		}
		if err := r.archiver.Archive(ctx, *task.Files, path); err != nil {
			r.printf("\n")
			return nil, err
		}
	}
	r.printf("done.\n")

	if kind == domain.ArtifactDatabase {
		r.printf("Uploading database dump...")
	} else {
		r.printf("Uploading site archive...")
	}
	n, err := r.store.Upload(ctx, path, r.config.S3Bucket, key)
	if err != nil {
		r.printf("\n")
		return nil, err
	}
	r.printf("done, %s uploaded.\n", format.Size(n))

	if err := os.Remove(path); err != nil {
		return nil, fmt.Errorf("failed to remove uploaded artifact: %w", err)
	}

	logger.Info("artifact uploaded", "kind", kind, "bucket", r.config.S3Bucket, "key", key, "bytes", n)

	return &domain.ArtifactResult{
		Kind:     kind,
		Filename: filename,
		Key:      key,
		Bytes:    n,
		Duration: r.now().Sub(start),
	}, nil
}

// prepareWorkDir creates the owner-only scratch directory when it is missing.
func (r *Runner) prepareWorkDir() error {
	dir := r.config.WorkDir
	if _, err := os.Stat(dir); err == nil {
		return nil
	}
	if err := os.MkdirAll(dir, workDirPerm); err != nil {
		return fmt.Errorf("couldn't create temporary working directory %s: %w", dir, err)
	}
	if err := os.Chmod(dir, workDirPerm); err != nil {
		return fmt.Errorf("couldn't restrict temporary working directory %s: %w", dir, err)
	}
	return nil
}

// pushMetrics sends the run result to the metrics pusher.
func (r *Runner) pushMetrics(ctx context.Context, result *domain.RunResult) error {
	if r.metricsPusher == nil {
		return nil
	}
	return r.metricsPusher.Push(ctx, domain.NewMetrics(r.hostname, result))
}

// sendNotification reports the run if the configured level asks for it.
func (r *Runner) sendNotification(ctx context.Context, result *domain.RunResult) error {
	if r.notifier == nil || !shouldNotify(r.config.Apprise.Notify, result) {
		return nil
	}
	return r.notifier.Notify(ctx, notify.RunReport(result, r.hostname))
}

// shouldNotify applies the notify level to a finished run. Failures are
// always reported.
func shouldNotify(level config.NotifyLevel, result *domain.RunResult) bool {
	switch {
	case !result.Success:
		return true
	case level == config.NotifyAlways:
		return true
	case level == config.NotifyWarning:
		return len(result.Warnings) > 0
	default:
		return false
	}
}

func (r *Runner) printf(msg string, args ...any) {
	fmt.Fprintf(r.out, msg, args...)
}
