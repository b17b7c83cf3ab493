package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/sharkusmanch/s3sb/internal/domain"
)

// Config holds all application configuration.
type Config struct {
	AWSKey       string        `mapstructure:"aws_key" yaml:"aws_key"`
	AWSSecretKey string        `mapstructure:"aws_secret_key" yaml:"aws_secret_key"`
	S3Bucket     string        `mapstructure:"s3_bucket" yaml:"s3_bucket"`
	WorkDir      string        `mapstructure:"work_dir" yaml:"work_dir"`
	Storage      StorageConfig `mapstructure:"storage" yaml:"storage"`
	Tools        ToolsConfig   `mapstructure:"tools" yaml:"tools"`
	Retry        RetryConfig   `mapstructure:"retry" yaml:"retry"`
	Metrics      MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
	Apprise      AppriseConfig `mapstructure:"apprise" yaml:"apprise"`
	Log          LogConfig     `mapstructure:"log" yaml:"log"`
	Tasks        []domain.Task `mapstructure:"tasks" yaml:"tasks"`
}

// StorageConfig selects and configures the object store client.
type StorageConfig struct {
	Backend  string `mapstructure:"backend" yaml:"backend"`
	Region   string `mapstructure:"region" yaml:"region"`
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`
	Secure   bool   `mapstructure:"secure" yaml:"secure"`
}

// ToolsConfig holds the external programs used to build artifacts.
type ToolsConfig struct {
	MySQLDump string `mapstructure:"mysqldump" yaml:"mysqldump"`
	Gzip      string `mapstructure:"gzip" yaml:"gzip"`
	Tar       string `mapstructure:"tar" yaml:"tar"`
}

// MetricsConfig holds Prometheus metrics configuration.
type MetricsConfig struct {
	Enabled        bool   `mapstructure:"enabled" yaml:"enabled"`
	PushgatewayURL string `mapstructure:"pushgateway_url" yaml:"pushgateway_url"`
}

// RetryConfig holds HTTP retry configuration for notification delivery.
// Uploads are never retried.
type RetryConfig struct {
	MaxAttempts  int           `mapstructure:"max_attempts" yaml:"max_attempts"`
	InitialDelay time.Duration `mapstructure:"initial_delay" yaml:"initial_delay"`
	MaxDelay     time.Duration `mapstructure:"max_delay" yaml:"max_delay"`
}

// AppriseConfig holds Apprise notification configuration.
type AppriseConfig struct {
	Enabled bool        `mapstructure:"enabled" yaml:"enabled"`
	URL     string      `mapstructure:"url" yaml:"url"`
	Key     string      `mapstructure:"key" yaml:"key"`
	Notify  NotifyLevel `mapstructure:"notify" yaml:"notify"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level     string `mapstructure:"level" yaml:"level"`
	Output    string `mapstructure:"output" yaml:"output"`
	MaxSizeMB int    `mapstructure:"max_size_mb" yaml:"max_size_mb"`
}

// Loader handles configuration loading from multiple sources.
type Loader struct {
	v          *viper.Viper
	configPath string
}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	return &Loader{
		v: viper.New(),
	}
}

// WithConfigPath sets a specific config file path.
func (l *Loader) WithConfigPath(path string) *Loader {
	l.configPath = path
	return l
}

// Load reads configuration from all sources and returns the merged config.
// Precedence (highest to lowest): CLI flags > environment > config file > defaults.
func (l *Loader) Load() (*Config, error) {
	l.setDefaults()
	l.setupEnvBindings()

	if err := l.loadConfigFile(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default values for all configuration options.
func (l *Loader) setDefaults() {
	l.v.SetDefault("aws_key", "")
	l.v.SetDefault("aws_secret_key", "")
	l.v.SetDefault("s3_bucket", "")
	l.v.SetDefault("work_dir", DefaultWorkDir)

	l.v.SetDefault("storage.backend", DefaultStorageBackend)
	l.v.SetDefault("storage.region", DefaultStorageRegion)
	l.v.SetDefault("storage.endpoint", "")
	l.v.SetDefault("storage.secure", DefaultStorageSecure)

	l.v.SetDefault("tools.mysqldump", DefaultMySQLDumpPath)
	l.v.SetDefault("tools.gzip", DefaultGzipPath)
	l.v.SetDefault("tools.tar", DefaultTarPath)

	l.v.SetDefault("retry.max_attempts", DefaultRetryMaxAttempts)
	l.v.SetDefault("retry.initial_delay", DefaultRetryInitialDelay)
	l.v.SetDefault("retry.max_delay", DefaultRetryMaxDelay)

	l.v.SetDefault("metrics.enabled", DefaultMetricsEnabled)
	l.v.SetDefault("metrics.pushgateway_url", DefaultMetricsPushgatewayURL)

	l.v.SetDefault("apprise.enabled", DefaultAppriseEnabled)
	l.v.SetDefault("apprise.url", DefaultAppriseURL)
	l.v.SetDefault("apprise.key", DefaultAppriseKey)
	l.v.SetDefault("apprise.notify", string(DefaultAppriseNotify))

	l.v.SetDefault("log.level", DefaultLogLevel)
	l.v.SetDefault("log.output", "")
	l.v.SetDefault("log.max_size_mb", DefaultLogMaxSizeMB)
}

// setupEnvBindings configures environment variable bindings.
func (l *Loader) setupEnvBindings() {
	l.v.SetEnvPrefix(EnvPrefix)
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	l.v.AutomaticEnv()
}

// loadConfigFile loads configuration from a file.
func (l *Loader) loadConfigFile() error {
	if l.configPath != "" {
		// Format follows the file extension.
		l.v.SetConfigFile(l.configPath)
	} else {
		l.v.SetConfigName("config")
		l.v.SetConfigType("yaml")
		l.v.AddConfigPath(".")
		if configDir, err := DefaultConfigDir(); err == nil {
			l.v.AddConfigPath(configDir)
		}
	}

	if err := l.v.ReadInConfig(); err != nil {
		// Config file not found is not an error; env and flags may supply everything.
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	return nil
}

// Set sets a configuration value (for CLI flag overrides).
func (l *Loader) Set(key string, value interface{}) {
	l.v.Set(key, value)
}

// ConfigFileUsed returns the path of the config file used, if any.
func (l *Loader) ConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.AWSKey == "" {
		return fmt.Errorf("aws_key is not defined")
	}
	if c.AWSSecretKey == "" {
		return fmt.Errorf("aws_secret_key is not defined")
	}
	if c.S3Bucket == "" {
		return fmt.Errorf("s3_bucket is not defined")
	}
	if len(c.Tasks) == 0 {
		return fmt.Errorf("no tasks defined")
	}

	if c.WorkDir == "" {
		return fmt.Errorf("work_dir cannot be empty")
	}

	switch c.Storage.Backend {
	case "s3":
	case "minio":
		if c.Storage.Endpoint == "" {
			return fmt.Errorf("storage.endpoint is required for the minio backend")
		}
	default:
		return fmt.Errorf("storage.backend must be one of: s3, minio")
	}

	if c.Tools.MySQLDump == "" || c.Tools.Gzip == "" || c.Tools.Tar == "" {
		return fmt.Errorf("tools.mysqldump, tools.gzip and tools.tar cannot be empty")
	}

	if c.Metrics.Enabled {
		if c.Metrics.PushgatewayURL == "" {
			return fmt.Errorf("metrics.pushgateway_url is required when metrics is enabled")
		}
	}

	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry.max_attempts must be at least 1")
	}

	if c.Retry.InitialDelay < 0 {
		return fmt.Errorf("retry.initial_delay cannot be negative")
	}

	if c.Retry.MaxDelay < c.Retry.InitialDelay {
		return fmt.Errorf("retry.max_delay must be >= retry.initial_delay")
	}

	if c.Apprise.Enabled {
		if c.Apprise.URL == "" {
			return fmt.Errorf("apprise.url is required when apprise is enabled")
		}
		if c.Apprise.Key == "" {
			return fmt.Errorf("apprise.key is required when apprise is enabled")
		}
		if !c.Apprise.Notify.IsValid() {
			return fmt.Errorf("apprise.notify must be one of: error, warning, always")
		}
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[strings.ToLower(c.Log.Level)] {
		return fmt.Errorf("log.level must be one of: debug, info, warn, error")
	}

	if c.Log.MaxSizeMB < 1 {
		return fmt.Errorf("log.max_size_mb must be at least 1")
	}

	return nil
}

// Warnings returns non-fatal configuration problems. Credential lengths are
// only checked for the s3 backend.
func (c *Config) Warnings() []string {
	var warnings []string

	if c.Storage.Backend == "s3" {
		if c.AWSKey != "" && len(c.AWSKey) != AWSKeyLength {
			warnings = append(warnings, fmt.Sprintf("aws_key doesn't match the expected length of %d chars", AWSKeyLength))
		}
		if c.AWSSecretKey != "" && len(c.AWSSecretKey) != AWSSecretKeyLength {
			warnings = append(warnings, fmt.Sprintf("aws_secret_key doesn't match the expected length of %d chars", AWSSecretKeyLength))
		}
	}

	seen := make(map[string]bool, len(c.Tasks))
	for _, task := range c.Tasks {
		if task.Name == "" {
			continue
		}
		if seen[task.Name] {
			warnings = append(warnings, fmt.Sprintf("task name %q is used more than once, artifact filenames may collide", task.Name))
		}
		seen[task.Name] = true
	}

	return warnings
}

// EnsureConfigDir creates the config directory if it doesn't exist.
func EnsureConfigDir() (string, error) {
	dir, err := DefaultConfigDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	return dir, nil
}

const exampleHeader = `# s3sb configuration
#
# Each task needs name, friendly_name, frequency (daily, weekly or monthly)
# and s3_directory_name, plus a database section, a files section, or both.
# Any key can be overridden with an S3SB_ environment variable, for example
# S3SB_AWS_SECRET_KEY.

`

// ExampleConfig returns a complete configuration with placeholder values.
func ExampleConfig() *Config {
	return &Config{
		AWSKey:       "ABC123ABC123ABC123AB",
		AWSSecretKey: "ABC123ABC123ABC123ABABC123ABC123ABC123AB",
		S3Bucket:     "s3sb",
		WorkDir:      DefaultWorkDir,
		Storage: StorageConfig{
			Backend: DefaultStorageBackend,
			Region:  DefaultStorageRegion,
			Secure:  DefaultStorageSecure,
		},
		Tools: ToolsConfig{
			MySQLDump: DefaultMySQLDumpPath,
			Gzip:      DefaultGzipPath,
			Tar:       DefaultTarPath,
		},
		Retry: RetryConfig{
			MaxAttempts:  DefaultRetryMaxAttempts,
			InitialDelay: DefaultRetryInitialDelay,
			MaxDelay:     DefaultRetryMaxDelay,
		},
		Metrics: MetricsConfig{
			PushgatewayURL: "http://pushgateway:9091",
		},
		Apprise: AppriseConfig{
			URL:    "http://localhost:8000",
			Key:    AppName,
			Notify: DefaultAppriseNotify,
		},
		Log: LogConfig{
			Level:     DefaultLogLevel,
			MaxSizeMB: DefaultLogMaxSizeMB,
		},
		Tasks: []domain.Task{
			{
				Name:            "mysite",
				FriendlyName:    "backup of mysite files and database",
				Frequency:       string(domain.ModeDaily),
				S3DirectoryName: "mysite",
				Database: &domain.DatabaseSpec{
					Hostname: "db.mysite.com",
					Username: "myuser",
					Password: "mypass",
					Name:     "mysite",
				},
				Files: &domain.FilesSpec{
					Path:    "/var/www/mysite",
					Exclude: []string{"/var/www/mysite/cache"},
				},
			},
		},
	}
}

// WriteExampleConfig writes an example config file to the given path.
func WriteExampleConfig(path string) error {
	var buf bytes.Buffer
	buf.WriteString(exampleHeader)

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(ExampleConfig()); err != nil {
		return fmt.Errorf("failed to render example config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to render example config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), 0600)
}
