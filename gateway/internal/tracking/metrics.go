package tracking

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	// Meter name for sequencer client instrumentation
	sequencerMeterName = "go-sequencer/gateway"

	metricRequests        = "sequencer.client.requests"         // Counter, one per attempt
	metricRequestsFailed  = "sequencer.client.requests.failed"  // Counter, failed attempts
	metricRequestDuration = "sequencer.client.request.duration" // Histogram in seconds

	attrMethod    = "sequencer.method"
	attrBlockTag  = "sequencer.block_tag"
	attrErrorType = "error.type"
)

var (
	sequencerMeter metric.Meter
	meterOnce      sync.Once
	meterInitMu    sync.Mutex
	metricsInited  bool

	requestCounter       metric.Int64Counter
	failedRequestCounter metric.Int64Counter
	requestDuration      metric.Float64Histogram
)

// logMetricError logs a metric initialization error to stderr.
func logMetricError(metricName string, err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "WARNING: Failed to initialize sequencer metric %s: %v\n", metricName, err)
	}
}

func initSequencerMeter() {
	meterInitMu.Lock()
	defer meterInitMu.Unlock()

	if sequencerMeter != nil {
		return
	}

	sequencerMeter = otel.Meter(sequencerMeterName)

	var err error

	requestCounter, err = sequencerMeter.Int64Counter(
		metricRequests,
		metric.WithDescription("Number of sequencer request attempts"),
		metric.WithUnit("{request}"),
	)
	logMetricError(metricRequests, err)

	failedRequestCounter, err = sequencerMeter.Int64Counter(
		metricRequestsFailed,
		metric.WithDescription("Number of failed sequencer request attempts by reason"),
		metric.WithUnit("{request}"),
	)
	logMetricError(metricRequestsFailed, err)

	requestDuration, err = sequencerMeter.Float64Histogram(
		metricRequestDuration,
		metric.WithDescription("Duration of a single sequencer request attempt"),
		metric.WithUnit("s"),
	)
	logMetricError(metricRequestDuration, err)

	metricsInited = true
}

func ensureSequencerMeterInitialized() {
	meterOnce.Do(initSequencerMeter)
}

// RecordAttempt records one request attempt. An empty reason marks a success.
func RecordAttempt(ctx context.Context, method, tag string, duration time.Duration, reason string) {
	ensureSequencerMeterInitialized()

	attrs := []attribute.KeyValue{
		attribute.String(attrMethod, method),
		attribute.String(attrBlockTag, tag),
	}

	if requestCounter != nil {
		requestCounter.Add(ctx, 1, metric.WithAttributes(attrs...))
	}

	if requestDuration != nil {
		requestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
	}

	if reason != "" && failedRequestCounter != nil {
		failedAttrs := append(attrs, attribute.String(attrErrorType, reason))
		failedRequestCounter.Add(ctx, 1, metric.WithAttributes(failedAttrs...))
	}
}

// IsInitialized returns true if sequencer metrics have been initialized.
func IsInitialized() bool {
	meterInitMu.Lock()
	defer meterInitMu.Unlock()
	return metricsInited
}

// ResetForTesting resets the metric state for testing purposes.
func ResetForTesting() {
	meterInitMu.Lock()
	defer meterInitMu.Unlock()

	sequencerMeter = nil
	requestCounter = nil
	failedRequestCounter = nil
	requestDuration = nil
	metricsInited = false
	meterOnce = sync.Once{}
}
