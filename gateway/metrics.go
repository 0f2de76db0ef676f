package gateway

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gaborage/go-sequencer/gateway/internal/tracking"
)

// Failure reasons reported to metrics. The set is small and fixed.
const (
	ReasonApplication          = "application"
	ReasonMalformedApplication = "malformed_application"
	ReasonRateLimiting         = "rate_limiting"
	ReasonTimeout              = "timeout"
	ReasonConnect              = "connect"
	ReasonDecode               = "decode"
	ReasonStatus               = "status"
	ReasonBody                 = "body"
	ReasonRequest              = "request"
)

// MetricsRecorder observes every request attempt, including retries.
// Implementations must be safe for concurrent use.
type MetricsRecorder interface {
	RecordAttempt(ctx context.Context, meta RequestMetadata, elapsed time.Duration, err error)
}

// FailureReason maps err to one of the Reason constants, or "" for nil.
func FailureReason(err error) string {
	if err == nil {
		return ""
	}

	var (
		appErr       *ApplicationError
		malformedErr *MalformedApplicationError
		transportErr *TransportError
	)
	switch {
	case errors.As(err, &appErr):
		return ReasonApplication
	case errors.As(err, &malformedErr):
		return ReasonMalformedApplication
	case errors.As(err, &transportErr):
		return transportReason(transportErr)
	default:
		return ReasonRequest
	}
}

func transportReason(err *TransportError) string {
	switch err.Kind {
	case KindStatus:
		if err.StatusCode == http.StatusTooManyRequests {
			return ReasonRateLimiting
		}
		return ReasonStatus
	case KindTimeout:
		return ReasonTimeout
	case KindConnect:
		return ReasonConnect
	case KindDecode:
		return ReasonDecode
	case KindBody:
		return ReasonBody
	default:
		return ReasonRequest
	}
}

type otelRecorder struct{}

// NewOTelRecorder returns a recorder publishing to the global OpenTelemetry meter provider.
func NewOTelRecorder() MetricsRecorder {
	return otelRecorder{}
}

func (otelRecorder) RecordAttempt(ctx context.Context, meta RequestMetadata, elapsed time.Duration, err error) {
	tracking.RecordAttempt(ctx, meta.Method, meta.Tag.String(), elapsed, FailureReason(err))
}

type noopRecorder struct{}

// NewNoopRecorder returns a recorder that discards everything.
func NewNoopRecorder() MetricsRecorder {
	return noopRecorder{}
}

func (noopRecorder) RecordAttempt(context.Context, RequestMetadata, time.Duration, error) {}
