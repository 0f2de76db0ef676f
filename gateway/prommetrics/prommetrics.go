// Package prommetrics records sequencer request attempts as Prometheus metrics.
package prommetrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/gaborage/go-sequencer/gateway"
)

// Recorder implements gateway.MetricsRecorder.
type Recorder struct {
	// RequestsTotal counts attempts per method and block tag
	RequestsTotal *prometheus.CounterVec

	// RequestsFailedTotal counts failed attempts per method, block tag and reason
	RequestsFailedTotal *prometheus.CounterVec

	// RequestDuration tracks attempt latency per method
	RequestDuration *prometheus.HistogramVec
}

var _ gateway.MetricsRecorder = (*Recorder)(nil)

var blockTags = []string{
	gateway.TagNone.String(),
	gateway.TagLatest.String(),
	gateway.TagPending.String(),
}

// New registers the collectors with reg and initialises a zero series for
// every declared method and block tag.
func New(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)

	r := &Recorder{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gateway_requests_total",
				Help: "Total number of sequencer request attempts",
			},
			[]string{"method", "tag"},
		),
		RequestsFailedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gateway_requests_failed_total",
				Help: "Total number of failed sequencer request attempts",
			},
			[]string{"method", "tag", "reason"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gateway_request_duration_seconds",
				Help:    "Sequencer request attempt latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
	}

	for _, method := range gateway.Methods() {
		for _, tag := range blockTags {
			r.RequestsTotal.WithLabelValues(method, tag)
		}
	}
	return r
}

// RecordAttempt counts the attempt and observes its latency; failures are counted by reason.
func (r *Recorder) RecordAttempt(_ context.Context, meta gateway.RequestMetadata, elapsed time.Duration, err error) {
	tag := meta.Tag.String()

	r.RequestsTotal.WithLabelValues(meta.Method, tag).Inc()
	r.RequestDuration.WithLabelValues(meta.Method).Observe(elapsed.Seconds())

	if reason := gateway.FailureReason(err); reason != "" {
		r.RequestsFailedTotal.WithLabelValues(meta.Method, tag, reason).Inc()
	}
}
