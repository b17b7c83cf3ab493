package domain

import (
	"context"
	"time"
)

// Metrics contains the values pushed after a run.
type Metrics struct {
	// Timestamp when metrics were collected.
	Timestamp time.Time

	// Hostname of the machine.
	Hostname string

	// Result of the run being reported.
	Result *RunResult
}

// NewMetrics creates a new Metrics instance for a finished run.
func NewMetrics(hostname string, result *RunResult) *Metrics {
	return &Metrics{
		Timestamp: time.Now(),
		Hostname:  hostname,
		Result:    result,
	}
}

// MetricsPusher defines the interface for pushing metrics to a remote endpoint.
type MetricsPusher interface {
	// Push sends metrics to the remote endpoint.
	Push(ctx context.Context, metrics *Metrics) error

	// Validate checks if the pusher is properly configured.
	Validate(ctx context.Context) error
}
