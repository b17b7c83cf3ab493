// Package metrics pushes run metrics to a Prometheus Pushgateway.
package metrics

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/sharkusmanch/s3sb/internal/domain"
	"github.com/sharkusmanch/s3sb/internal/http"
	"github.com/sharkusmanch/s3sb/pkg/version"
)

const (
	jobName   = "s3sb"
	namespace = "s3sb"
)

// PushgatewayClient pushes metrics to a Prometheus Pushgateway.
type PushgatewayClient struct {
	url        string
	httpClient *http.Client
	logger     *slog.Logger
}

// PushgatewayOption configures a PushgatewayClient.
type PushgatewayOption func(*PushgatewayClient)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) PushgatewayOption {
	return func(p *PushgatewayClient) {
		p.httpClient = client
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) PushgatewayOption {
	return func(p *PushgatewayClient) {
		p.logger = logger
	}
}

// NewPushgatewayClient creates a new PushgatewayClient.
func NewPushgatewayClient(url string, opts ...PushgatewayOption) *PushgatewayClient {
	p := &PushgatewayClient{
		url:    strings.TrimSuffix(url, "/"),
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.httpClient == nil {
		p.httpClient = http.NewClient(http.WithLogger(p.logger))
	}

	return p
}

// Push replaces the metrics of the run's grouping key (instance and mode) on
// the Pushgateway.
func (p *PushgatewayClient) Push(ctx context.Context, m *domain.Metrics) error {
	if m == nil || m.Result == nil {
		return fmt.Errorf("no run result to push")
	}

	p.logger.Debug("pushing metrics to pushgateway",
		"url", p.url,
		"mode", m.Result.Mode,
		"tasks", len(m.Result.Tasks),
	)

	err := push.New(p.url, jobName).
		Gatherer(NewRegistry(m)).
		Grouping("instance", m.Hostname).
		Grouping("mode", m.Result.Mode.String()).
		Client(p.httpClient.Standard()).
		PushContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to push metrics: %w", err)
	}

	p.logger.Debug("metrics pushed successfully")
	return nil
}

// Validate checks if the Pushgateway is reachable.
func (p *PushgatewayClient) Validate(ctx context.Context) error {
	readyURL := fmt.Sprintf("%s/-/ready", p.url)

	if err := p.httpClient.CheckConnectivity(ctx, readyURL); err != nil {
		// Older Pushgateways have no ready endpoint.
		if err2 := p.httpClient.CheckConnectivity(ctx, p.url); err2 != nil {
			return fmt.Errorf("pushgateway not reachable at %s: %w", p.url, err)
		}
	}

	return nil
}

// NewRegistry returns a registry holding the gauges that describe m.
func NewRegistry(m *domain.Metrics) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	r := m.Result

	info := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "info",
		Help:      "Build information.",
	}, []string{"version", "go_version"})
	info.WithLabelValues(version.Get().Version, runtime.Version()).Set(1)

	timestamp := newGauge("last_run_timestamp_seconds", "Unix timestamp of the end of the last run.")
	timestamp.Set(float64(r.EndTime.Unix()))

	success := newGauge("last_run_success", "Whether the last run succeeded.")
	if r.Success {
		success.Set(1)
	}

	duration := newGauge("last_run_duration_seconds", "Duration of the last run.")
	duration.Set(r.Duration.Seconds())

	completed := newGauge("tasks_completed", "Tasks completed in the last run.")
	completed.Set(float64(r.TasksCompleted))

	uploaded := newGauge("uploaded_bytes", "Bytes uploaded in the last run.")
	uploaded.Set(float64(r.Bytes()))

	artifacts := newGauge("artifacts_uploaded", "Artifacts uploaded in the last run.")

	taskBytes := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "task_uploaded_bytes",
		Help:      "Bytes uploaded per task in the last run.",
	}, []string{"task"})
	taskDuration := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "task_duration_seconds",
		Help:      "Duration of each processed task in the last run.",
	}, []string{"task"})

	for _, t := range r.Tasks {
		if t.Skipped || len(t.Artifacts) == 0 {
			continue
		}
		artifacts.Add(float64(len(t.Artifacts)))
		taskBytes.WithLabelValues(t.Name).Set(float64(t.Bytes()))
		taskDuration.WithLabelValues(t.Name).Set(t.Duration.Seconds())
	}

	reg.MustRegister(info, timestamp, success, duration, completed, uploaded, artifacts, taskBytes, taskDuration)
	return reg
}

func newGauge(name, help string) prometheus.Gauge {
	return prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      name,
		Help:      help,
	})
}

// Ensure PushgatewayClient implements domain.MetricsPusher.
var _ domain.MetricsPusher = (*PushgatewayClient)(nil)
