package handlers

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"socialcast/pkg/monitoring"
)

// Publish request outcomes recorded in metrics.
const (
	OutcomePublished   = "published"
	OutcomePartial     = "partial"
	OutcomeFailed      = "failed"
	OutcomeDeferred    = "deferred"
	OutcomeReplayed    = "replayed"
	OutcomeCallerError = "caller_error"
	OutcomeError       = "error"
)

// PublishMetrics tracks publish traffic. A nil collector disables all
// recording, which keeps handler tests free of the global registry.
type PublishMetrics struct {
	requests *prometheus.CounterVec
	attempts *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewPublishMetrics(collector *monitoring.MetricsCollector) *PublishMetrics {
	if collector == nil {
		return nil
	}
	return &PublishMetrics{
		requests: collector.NewCounter(
			"publish_requests_total",
			"Publish requests by outcome",
			[]string{"outcome"},
		),
		attempts: collector.NewCounter(
			"publish_attempts_total",
			"Per-platform publish attempts",
			[]string{"platform", "status"},
		),
		duration: collector.NewHistogram(
			"publish_duration_seconds",
			"End-to-end publish duration",
			[]string{"outcome"},
			nil,
		),
	}
}

func (m *PublishMetrics) RecordRequest(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(outcome).Inc()
	m.duration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

func (m *PublishMetrics) RecordAttempt(platform string, success bool) {
	if m == nil {
		return
	}
	status := "failure"
	if success {
		status = "success"
	}
	m.attempts.WithLabelValues(platform, status).Inc()
}
