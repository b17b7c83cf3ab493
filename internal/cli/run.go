package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/sharkusmanch/s3sb/internal/app"
	"github.com/sharkusmanch/s3sb/internal/config"
	"github.com/sharkusmanch/s3sb/internal/domain"
	"github.com/sharkusmanch/s3sb/internal/executor"
	"github.com/sharkusmanch/s3sb/internal/http"
	"github.com/sharkusmanch/s3sb/internal/metrics"
	"github.com/sharkusmanch/s3sb/internal/notify"
	"github.com/sharkusmanch/s3sb/internal/storage"
)

func runBackup(cmd *cobra.Command, opts *rootOptions, mode domain.Mode) error {
	startedAt := time.Now()

	cfg, _, err := loadConfig(opts)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := setupLogging(cfg, cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}

	runnerOpts := []app.RunnerOption{
		app.WithLogger(logger),
		app.WithOutput(cmd.OutOrStdout()),
	}

	// Test mode only inspects the task list.
	if mode != domain.ModeTest {
		deps, err := buildDependencies(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		runnerOpts = append(runnerOpts, deps...)
	}

	runner := app.NewRunner(cfg, runnerOpts...)

	_, err = runner.Run(cmd.Context(), app.RunOptions{
		Mode:      mode,
		Only:      opts.only,
		StartedAt: startedAt,
	})
	return err
}

// buildDependencies wires the tools, object store and reporting clients
// selected by cfg.
func buildDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) ([]app.RunnerOption, error) {
	process := executor.NewProcess(executor.WithProcessLogger(logger))

	store, err := newObjectStore(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create object store client: %w", err)
	}

	deps := []app.RunnerOption{
		app.WithDumper(newDumper(process, cfg, logger)),
		app.WithArchiver(newArchiver(process, cfg, logger)),
		app.WithObjectStore(store),
	}

	httpClient := newHTTPClient(cfg.Retry, logger)

	if cfg.Metrics.Enabled {
		deps = append(deps, app.WithMetricsPusher(metrics.NewPushgatewayClient(
			cfg.Metrics.PushgatewayURL,
			metrics.WithHTTPClient(httpClient),
			metrics.WithLogger(logger),
		)))
	}

	if cfg.Apprise.Enabled {
		deps = append(deps, app.WithNotifier(notify.NewAppriseClient(
			cfg.Apprise.URL,
			cfg.Apprise.Key,
			notify.WithHTTPClient(httpClient),
			notify.WithLogger(logger),
		)))
	}

	return deps, nil
}

func newDumper(runner executor.Runner, cfg *config.Config, logger *slog.Logger) *executor.MySQLDumper {
	return executor.NewMySQLDumper(runner,
		executor.WithMySQLDumpPath(cfg.Tools.MySQLDump),
		executor.WithGzipPath(cfg.Tools.Gzip),
		executor.WithDumperLogger(logger),
	)
}

func newArchiver(runner executor.Runner, cfg *config.Config, logger *slog.Logger) *executor.TarArchiver {
	return executor.NewTarArchiver(runner,
		executor.WithTarPath(cfg.Tools.Tar),
		executor.WithArchiverLogger(logger),
	)
}

func newObjectStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (domain.ObjectStore, error) {
	return storage.New(ctx, storage.Config{
		Backend:   cfg.Storage.Backend,
		Region:    cfg.Storage.Region,
		Endpoint:  cfg.Storage.Endpoint,
		Secure:    cfg.Storage.Secure,
		AccessKey: cfg.AWSKey,
		SecretKey: cfg.AWSSecretKey,
	}, logger)
}

func newHTTPClient(retry config.RetryConfig, logger *slog.Logger) *http.Client {
	return http.NewClient(
		http.WithRetryConfig(http.RetryConfig{
			MaxAttempts:  retry.MaxAttempts,
			InitialDelay: retry.InitialDelay,
			MaxDelay:     retry.MaxDelay,
		}),
		http.WithLogger(logger),
	)
}
