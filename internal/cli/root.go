// Package cli provides the command-line interface.
package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/sharkusmanch/s3sb/internal/config"
	"github.com/sharkusmanch/s3sb/internal/domain"
	"github.com/sharkusmanch/s3sb/pkg/version"
)

var errNoMode = errors.New("no frequency option specified")

// rootOptions holds the flags shared by all commands.
type rootOptions struct {
	cfgFile  string
	logLevel string

	daily   bool
	weekly  bool
	monthly bool
	test    bool
	only    string
}

// mode returns the selected run mode, or "" when no mode flag was given.
func (o *rootOptions) mode() domain.Mode {
	switch {
	case o.daily:
		return domain.ModeDaily
	case o.weekly:
		return domain.ModeWeekly
	case o.monthly:
		return domain.ModeMonthly
	case o.test:
		return domain.ModeTest
	default:
		return ""
	}
}

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "s3sb [--daily | --weekly | --monthly | --test] [--only <taskname>]",
		Short: "Back up databases and site files to S3",
		Long: `s3sb dumps MySQL databases and archives file trees for each configured
task, uploads the results to an S3 bucket and removes the local copies.

Run it from cron or a systemd timer with the frequency to process.`,
		Version: version.Get().String(),
		Args:    cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			initLogging(cmd.ErrOrStderr(), opts.logLevel)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			mode := opts.mode()
			if mode == "" {
				cmd.PrintErrln("No frequency option specified.")
				cmd.PrintErr(cmd.UsageString())
				return errNoMode
			}
			return runBackup(cmd, opts, mode)
		},
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&opts.cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	rootCmd.Flags().BoolVar(&opts.daily, "daily", false, "run tasks with frequency daily")
	rootCmd.Flags().BoolVar(&opts.weekly, "weekly", false, "run tasks with frequency weekly")
	rootCmd.Flags().BoolVar(&opts.monthly, "monthly", false, "run tasks with frequency monthly")
	rootCmd.Flags().BoolVar(&opts.test, "test", false, "validate task definitions without running them")
	rootCmd.Flags().StringVar(&opts.only, "only", "", "run only the task with this name")
	rootCmd.MarkFlagsMutuallyExclusive("daily", "weekly", "monthly", "test")

	rootCmd.AddCommand(NewValidateCmd(opts))
	rootCmd.AddCommand(NewInitCmd())
	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

// Execute runs the root command until it finishes or the process receives
// SIGINT or SIGTERM, and exits with status 1 on any error.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := NewRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// parseLevel maps a configured level name to a slog level. Unknown names
// fall back to info.
func parseLevel(name string) slog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// initLogging sets up stderr logging until the config is loaded.
func initLogging(w io.Writer, levelFlag string) {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: parseLevel(levelFlag),
	})
	slog.SetDefault(slog.New(handler))
}

// setupLogging configures logging based on the loaded config.
func setupLogging(cfg *config.Config, stderr io.Writer) (*slog.Logger, error) {
	var output io.Writer = stderr
	if cfg.Log.Output != "" {
		dir := filepath.Dir(cfg.Log.Output)
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, err
		}

		output = &lumberjack.Logger{
			Filename:   cfg.Log.Output,
			MaxSize:    cfg.Log.MaxSizeMB,
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		}
	}

	handler := slog.NewTextHandler(output, &slog.HandlerOptions{
		Level: parseLevel(cfg.Log.Level),
	})
	logger := slog.New(handler)
	slog.SetDefault(logger)

	return logger, nil
}

// loadConfig loads the application configuration and reports which file
// it was read from.
func loadConfig(opts *rootOptions) (*config.Config, string, error) {
	loader := config.NewLoader()

	if opts.cfgFile != "" {
		loader = loader.WithConfigPath(opts.cfgFile)
	}

	if opts.logLevel != "" {
		loader.Set("log.level", opts.logLevel)
	}

	cfg, err := loader.Load()
	return cfg, loader.ConfigFileUsed(), err
}
