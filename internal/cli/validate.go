package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sharkusmanch/s3sb/internal/config"
	"github.com/sharkusmanch/s3sb/internal/executor"
	"github.com/sharkusmanch/s3sb/internal/metrics"
	"github.com/sharkusmanch/s3sb/internal/notify"
)

// NewValidateCmd creates the validate command.
func NewValidateCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration and test connectivity",
		Long: `Validate the configuration file and test connectivity to external services.

This checks:
- Config file syntax and required settings
- Task definitions
- mysqldump, gzip and tar availability
- Bucket access with the configured credentials
- Pushgateway connectivity (if enabled)
- Apprise server connectivity (if enabled)`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, opts)
		},
	}

	return cmd
}

func runValidate(cmd *cobra.Command, opts *rootOptions) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "Configuration:")
	cfg, path, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(out, "  ✗ Config file: %v\n", err)
		return err
	}
	fmt.Fprintf(out, "  ✓ Config file valid\n")

	if path != "" {
		fmt.Fprintf(out, "  Config file: %s\n", path)
	}
	fmt.Fprintf(out, "  Bucket: %s\n", cfg.S3Bucket)
	fmt.Fprintf(out, "  Storage backend: %s\n", cfg.Storage.Backend)
	if cfg.Storage.Endpoint != "" {
		fmt.Fprintf(out, "  Storage endpoint: %s\n", cfg.Storage.Endpoint)
	}
	fmt.Fprintf(out, "  Work dir: %s\n", cfg.WorkDir)
	if cfg.Metrics.Enabled {
		fmt.Fprintf(out, "  Metrics: enabled\n")
		fmt.Fprintf(out, "  Pushgateway URL: %s\n", cfg.Metrics.PushgatewayURL)
	} else {
		fmt.Fprintf(out, "  Metrics: disabled\n")
	}
	if cfg.Apprise.Enabled {
		fmt.Fprintf(out, "  Notifications: enabled\n")
		fmt.Fprintf(out, "  Apprise URL: %s\n", cfg.Apprise.URL)
		fmt.Fprintf(out, "  Notification level: %s\n", cfg.Apprise.Notify)
	} else {
		fmt.Fprintf(out, "  Notifications: disabled\n")
	}
	for _, w := range cfg.Warnings() {
		fmt.Fprintf(out, "  ! %s\n", w)
	}
	fmt.Fprintln(out)

	failed := 0
	check := func(name string, err error) {
		if err != nil {
			failed++
			fmt.Fprintf(out, "  ✗ %s: %v\n", name, err)
			return
		}
		fmt.Fprintf(out, "  ✓ %s\n", name)
	}

	fmt.Fprintln(out, "Tasks:")
	for _, task := range cfg.Tasks {
		if task.Valid() {
			fmt.Fprintf(out, "  ✓ %s (%s, %s)\n", task.Label(), task.Frequency, task.S3DirectoryName)
			continue
		}
		failed++
		fmt.Fprintf(out, "  ✗ %s: incomplete task definition\n", task.Label())
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, "Checks:")
	logger, err := setupLogging(cfg, cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}

	process := executor.NewProcess(executor.WithProcessLogger(logger))
	check("mysqldump and gzip found", newDumper(process, cfg, logger).Validate(ctx))
	check("tar found", newArchiver(process, cfg, logger).Validate(ctx))

	store, err := newObjectStore(ctx, cfg, logger)
	if err != nil {
		check("Object store client", err)
	} else {
		check(fmt.Sprintf("Bucket %s reachable", cfg.S3Bucket), store.Validate(ctx, cfg.S3Bucket))
	}

	// No retries for validation
	httpClient := newHTTPClient(config.RetryConfig{
		MaxAttempts:  1,
		InitialDelay: time.Second,
		MaxDelay:     time.Second,
	}, logger)

	if cfg.Metrics.Enabled {
		pushgatewayClient := metrics.NewPushgatewayClient(
			cfg.Metrics.PushgatewayURL,
			metrics.WithHTTPClient(httpClient),
			metrics.WithLogger(logger),
		)
		check("Pushgateway reachable", pushgatewayClient.Validate(ctx))
	}

	if cfg.Apprise.Enabled {
		appriseClient := notify.NewAppriseClient(
			cfg.Apprise.URL,
			cfg.Apprise.Key,
			notify.WithHTTPClient(httpClient),
			notify.WithLogger(logger),
		)
		check("Apprise server reachable", appriseClient.Validate(ctx))
	}

	fmt.Fprintln(out)
	if failed > 0 {
		return fmt.Errorf("validation failed: %d check(s) did not pass", failed)
	}
	fmt.Fprintln(out, "Validation complete.")
	return nil
}
