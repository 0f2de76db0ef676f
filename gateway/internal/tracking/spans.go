package tracking

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.32.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	sequencerTracerName = "go-sequencer/gateway"
	spanNamePrefix      = "sequencer."

	attrRetry    = "sequencer.retry"
	attrAttempts = "sequencer.attempts"
)

// StartCall opens a client span covering every attempt of one logical call.
// endpoint must not carry query parameters, which may hold tokens.
func StartCall(ctx context.Context, method, tag, httpMethod, endpoint string, retry bool) (context.Context, trace.Span) {
	tracer := otel.Tracer(sequencerTracerName)
	return tracer.Start(ctx, spanNamePrefix+method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String(attrMethod, method),
			attribute.String(attrBlockTag, tag),
			attribute.Bool(attrRetry, retry),
			semconv.HTTPRequestMethodKey.String(httpMethod),
			semconv.URLFull(endpoint),
		),
	)
}

// EndCall records the outcome and ends the span.
func EndCall(span trace.Span, attempts int, reason string, err error) {
	span.SetAttributes(attribute.Int(attrAttempts, attempts))
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.String(attrErrorType, reason))
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
