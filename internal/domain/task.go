// Package domain defines core business types and interfaces.
package domain

import (
	"fmt"
	"time"
)

// Mode selects which tasks a run processes.
type Mode string

const (
	// ModeDaily runs tasks with frequency "daily".
	ModeDaily Mode = "daily"
	// ModeWeekly runs tasks with frequency "weekly".
	ModeWeekly Mode = "weekly"
	// ModeMonthly runs tasks with frequency "monthly".
	ModeMonthly Mode = "monthly"
	// ModeTest only validates task definitions.
	ModeTest Mode = "test"
)

// String returns the string representation of the mode.
func (m Mode) String() string {
	return string(m)
}

// IsValid returns true if the mode is one of the known modes.
func (m Mode) IsValid() bool {
	switch m {
	case ModeDaily, ModeWeekly, ModeMonthly, ModeTest:
		return true
	default:
		return false
	}
}

// ArtifactKind identifies what an artifact contains.
type ArtifactKind string

const (
	// ArtifactDatabase is a gzip-compressed SQL dump.
	ArtifactDatabase ArtifactKind = "db"
	// ArtifactFiles is a gzip-compressed tar archive.
	ArtifactFiles ArtifactKind = "files"
)

// Extension returns the file extension used for the artifact kind.
func (k ArtifactKind) Extension() string {
	if k == ArtifactDatabase {
		return "sql.gz"
	}
	return "tar.gz"
}

// TimestampLayout formats the shared per-task timestamp (YYYYMMDD.HHMMSS).
const TimestampLayout = "20060102.150405"

// Timestamp formats t with TimestampLayout.
func Timestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// ArtifactName returns the local and remote filename of an artifact.
func ArtifactName(taskName string, kind ArtifactKind, timestamp string) string {
	return fmt.Sprintf("%s.%s.%s.%s", taskName, kind, timestamp, kind.Extension())
}

// DatabaseSpec describes the MySQL database dumped by a task.
type DatabaseSpec struct {
	Hostname string `mapstructure:"hostname" yaml:"hostname"`
	Username string `mapstructure:"username" yaml:"username"`
	Password string `mapstructure:"password" yaml:"password"`
	Name     string `mapstructure:"name" yaml:"name"`
}

// IsZero reports whether no field of the section was set.
func (d *DatabaseSpec) IsZero() bool {
	return d == nil || *d == DatabaseSpec{}
}

// Complete reports whether every connection field is set.
func (d *DatabaseSpec) Complete() bool {
	return d != nil && d.Hostname != "" && d.Username != "" && d.Password != "" && d.Name != ""
}

// FilesSpec describes the file tree archived by a task.
type FilesSpec struct {
	Path    string   `mapstructure:"path" yaml:"path"`
	Exclude []string `mapstructure:"exclude" yaml:"exclude,omitempty"`
}

// IsZero reports whether no field of the section was set.
func (f *FilesSpec) IsZero() bool {
	return f == nil || (f.Path == "" && len(f.Exclude) == 0)
}

// Complete reports whether the source path is set.
func (f *FilesSpec) Complete() bool {
	return f != nil && f.Path != ""
}

// Task is one configured backup unit. Database and Files are independent:
// either, both, or (invalid) neither may be present.
type Task struct {
	Name            string        `mapstructure:"name" yaml:"name"`
	FriendlyName    string        `mapstructure:"friendly_name" yaml:"friendly_name"`
	Frequency       string        `mapstructure:"frequency" yaml:"frequency"`
	S3DirectoryName string        `mapstructure:"s3_directory_name" yaml:"s3_directory_name"`
	Database        *DatabaseSpec `mapstructure:"database" yaml:"database,omitempty"`
	Files           *FilesSpec    `mapstructure:"files" yaml:"files,omitempty"`
}

// HasDatabase reports whether the task carries a non-empty database section.
func (t Task) HasDatabase() bool {
	return !t.Database.IsZero()
}

// HasFiles reports whether the task carries a non-empty files section.
func (t Task) HasFiles() bool {
	return !t.Files.IsZero()
}

// Valid checks the task for the mandatory top-level fields and at least one
// of the database and files sections. Section contents are checked later,
// when the section is processed.
func (t Task) Valid() bool {
	if t.Name == "" || t.FriendlyName == "" || t.Frequency == "" || t.S3DirectoryName == "" {
		return false
	}
	return t.HasDatabase() || t.HasFiles()
}

// Label returns the name used to refer to the task in status output.
func (t Task) Label() string {
	switch {
	case t.FriendlyName != "":
		return t.FriendlyName
	case t.Name != "":
		return t.Name
	default:
		return "<unnamed>"
	}
}

// ObjectKey returns the remote key of an artifact under the task's directory.
func (t Task) ObjectKey(filename string) string {
	return t.S3DirectoryName + "/" + filename
}
