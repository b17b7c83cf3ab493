// Package config handles application configuration loading and validation.
package config

import "time"

// Default configuration values.
const (
	DefaultWorkDir = ".s3sb"

	DefaultStorageBackend = "s3"
	DefaultStorageRegion  = "us-east-1"
	DefaultStorageSecure  = true

	DefaultMySQLDumpPath = "mysqldump"
	DefaultGzipPath      = "gzip"
	DefaultTarPath       = "tar"

	DefaultMetricsEnabled        = false
	DefaultMetricsPushgatewayURL = ""

	DefaultRetryMaxAttempts  = 3
	DefaultRetryInitialDelay = 5 * time.Second
	DefaultRetryMaxDelay     = 30 * time.Second

	DefaultAppriseEnabled = false
	DefaultAppriseURL     = ""
	DefaultAppriseKey     = ""
	DefaultAppriseNotify  = NotifyError

	DefaultLogLevel     = "info"
	DefaultLogMaxSizeMB = 10
)

// Expected AWS credential lengths. A mismatch is only a warning.
const (
	AWSKeyLength       = 20
	AWSSecretKeyLength = 40
)

// NotifyLevel represents when to send notifications.
type NotifyLevel string

const (
	// NotifyError sends notifications only on errors.
	NotifyError NotifyLevel = "error"
	// NotifyWarning sends notifications on errors and warnings.
	NotifyWarning NotifyLevel = "warning"
	// NotifyAlways sends notifications on every run.
	NotifyAlways NotifyLevel = "always"
)

// IsValid returns true if the notify level is valid.
func (n NotifyLevel) IsValid() bool {
	switch n {
	case NotifyError, NotifyWarning, NotifyAlways:
		return true
	default:
		return false
	}
}

// String returns the string representation of the notify level.
func (n NotifyLevel) String() string {
	return string(n)
}
