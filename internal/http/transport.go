package http

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/sharkusmanch/s3sb/pkg/version"
)

// RetryConfig configures retry behavior for outgoing requests.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts (including the first).
	MaxAttempts int

	// InitialDelay is the delay before the first retry.
	InitialDelay time.Duration

	// MaxDelay is the maximum delay between retries.
	MaxDelay time.Duration
}

// DefaultRetryConfig returns the default retry configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  3,
		InitialDelay: 5 * time.Second,
		MaxDelay:     30 * time.Second,
	}
}

// RetryTransport is an http.RoundTripper that retries transport errors and
// retryable status codes with exponential backoff. The final response is
// returned as-is, even when its status is retryable.
type RetryTransport struct {
	base   http.RoundTripper
	retry  RetryConfig
	logger *slog.Logger
}

// NewRetryTransport wraps base, or http.DefaultTransport when base is nil.
func NewRetryTransport(base http.RoundTripper, retry RetryConfig, logger *slog.Logger) *RetryTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	if logger == nil {
		logger = slog.Default()
	}
	if retry.MaxAttempts < 1 {
		retry.MaxAttempts = 1
	}
	return &RetryTransport{base: base, retry: retry, logger: logger}
}

// RoundTrip implements http.RoundTripper.
func (t *RetryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	// The body is replayed on every attempt.
	var bodyBytes []byte
	if req.Body != nil && req.Body != http.NoBody {
		var err error
		bodyBytes, err = io.ReadAll(req.Body)
		_ = req.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read request body: %w", err)
		}
	}

	var lastErr error
	for attempt := 1; attempt <= t.retry.MaxAttempts; attempt++ {
		attemptReq := req.Clone(ctx)
		if bodyBytes != nil {
			attemptReq.Body = io.NopCloser(bytes.NewReader(bodyBytes))
			attemptReq.ContentLength = int64(len(bodyBytes))
		}
		if attemptReq.Header.Get("User-Agent") == "" {
			attemptReq.Header.Set("User-Agent", version.Get().UserAgent())
		}

		t.logger.Debug("HTTP request attempt",
			"method", req.Method,
			"url", req.URL.Redacted(),
			"attempt", attempt,
			"max_attempts", t.retry.MaxAttempts,
		)

		resp, err := t.base.RoundTrip(attemptReq)
		last := attempt == t.retry.MaxAttempts

		switch {
		case err != nil:
			lastErr = err
			t.logger.Warn("HTTP request failed",
				"method", req.Method,
				"url", req.URL.Redacted(),
				"attempt", attempt,
				"error", err,
			)
		case shouldRetry(resp.StatusCode) && !last:
			lastErr = fmt.Errorf("HTTP %d", resp.StatusCode)
			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()
			t.logger.Warn("HTTP request returned retryable status",
				"status", resp.StatusCode,
				"attempt", attempt,
			)
		default:
			return resp, nil
		}

		if last {
			break
		}

		delay := t.calculateDelay(attempt)
		t.logger.Debug("Retrying after delay", "delay", delay)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}

	return nil, fmt.Errorf("request failed after %d attempts: %w", t.retry.MaxAttempts, lastErr)
}

// calculateDelay calculates the delay for a given attempt using exponential backoff.
func (t *RetryTransport) calculateDelay(attempt int) time.Duration {
	// initialDelay * 2^(attempt-1)
	delay := float64(t.retry.InitialDelay) * math.Pow(2, float64(attempt-1))

	if delay > float64(t.retry.MaxDelay) {
		return t.retry.MaxDelay
	}

	return time.Duration(delay)
}

// shouldRetry returns true if the status code indicates a retryable error.
func shouldRetry(statusCode int) bool {
	switch statusCode {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}
