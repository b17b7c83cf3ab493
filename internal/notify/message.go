package notify

import (
	"fmt"
	"strings"

	"github.com/sharkusmanch/s3sb/internal/domain"
	"github.com/sharkusmanch/s3sb/internal/format"
)

// RunReport builds the notification describing a finished run.
func RunReport(result *domain.RunResult, hostname string) *domain.Notification {
	var b strings.Builder

	level := domain.NotificationLevelInfo
	title := fmt.Sprintf("s3sb %s backup completed", result.Mode)
	switch {
	case !result.Success:
		level = domain.NotificationLevelError
		title = fmt.Sprintf("s3sb %s backup failed", result.Mode)
		fmt.Fprintf(&b, "Backup failed on %s.\n", hostname)
		fmt.Fprintf(&b, "Error: %s\n", result.Error)
	case len(result.Warnings) > 0:
		level = domain.NotificationLevelWarning
		title = fmt.Sprintf("s3sb %s backup completed with warnings", result.Mode)
		fmt.Fprintf(&b, "Backup completed on %s.\n", hostname)
	default:
		fmt.Fprintf(&b, "Backup completed on %s.\n", hostname)
	}

	for _, w := range result.Warnings {
		fmt.Fprintf(&b, "Warning: %s\n", w)
	}

	for _, t := range result.Tasks {
		if t.Skipped || len(t.Artifacts) == 0 {
			continue
		}
		fmt.Fprintf(&b, "%s: %d artifact(s), %s\n", t.Name, len(t.Artifacts), format.Size(t.Bytes()))
	}

	fmt.Fprintf(&b, "%d task(s) completed in %s, %s uploaded.",
		result.TasksCompleted,
		format.Seconds(int64(result.Duration.Seconds())),
		format.Size(result.Bytes()),
	)

	return domain.NewNotification(title, b.String(), level)
}
