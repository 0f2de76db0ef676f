package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/gaborage/go-sequencer/gateway/internal/tracking"
	"github.com/gaborage/go-sequencer/logger"
	"github.com/gaborage/go-sequencer/trace"
)

// Get performs a GET and decodes the JSON response into T.
func Get[T any](ctx context.Context, s FinalStage) (T, error) {
	return execute(ctx, s, http.MethodGet, nil, parseJSON[T])
}

// GetAsBytes performs a GET and returns the raw response body.
func (s FinalStage) GetAsBytes(ctx context.Context) ([]byte, error) {
	return execute(ctx, s, http.MethodGet, nil, parseRaw)
}

// PostWithJSON POSTs body encoded as JSON and decodes the response into T.
// The body is encoded once and resent unchanged on every attempt.
func PostWithJSON[T any](ctx context.Context, s FinalStage, body any) (T, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		var zero T
		return zero, newTransportError(KindRequest, fmt.Errorf("encode request body: %w", err))
	}
	return execute(ctx, s, http.MethodPost, payload, parseJSON[T])
}

func execute[T any](
	ctx context.Context,
	s FinalStage,
	httpMethod string,
	payload []byte,
	parse func(*http.Response) (T, error),
) (T, error) {
	if !s.complete() {
		var zero T
		return zero, ErrIncompleteRequest
	}

	c := s.req.client
	if c == nil {
		c = defaultClient
	}

	ctx, requestID := trace.EnsureRequestID(ctx)
	ctx, span := tracking.StartCall(ctx, s.meta.Method, s.meta.Tag.String(), httpMethod, s.req.url.String(), s.retry)

	log := c.logger.WithContext(ctx).WithFields(map[string]any{
		"method":     s.meta.Method,
		"block_tag":  s.meta.Tag.String(),
		"request_id": requestID,
	})
	target := s.req.encodeURL()

	attempts := 0
	attempt := func(ctx context.Context) (T, error) {
		attempts++
		start := time.Now()
		v, err := send(ctx, c, httpMethod, target, s.req.apiKey, payload, parse)
		c.metrics.RecordAttempt(ctx, s.meta, time.Since(start), err)
		return v, err
	}

	var (
		v   T
		err error
	)
	if s.retry {
		v, err = retry(ctx, c.policy, c.sleep, attempt, func(err error) bool { return shouldRetry(log, err) })
	} else {
		v, err = attempt(ctx)
	}

	tracking.EndCall(span, attempts, FailureReason(err), err)
	if err != nil {
		log.Debug().Int("attempts", attempts).Err(err).Msg("Sequencer request failed")
	}
	return v, err
}

func send[T any](
	ctx context.Context,
	c *Client,
	httpMethod, target, apiKey string,
	payload []byte,
	parse func(*http.Response) (T, error),
) (T, error) {
	var zero T

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return zero, newTransportError(KindRequest, fmt.Errorf("rate limiter: %w", err))
		}
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, httpMethod, target, body)
	if err != nil {
		return zero, newTransportError(KindRequest, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if apiKey != "" {
		req.Header.Set(HeaderThrottlingBypass, apiKey)
	}
	trace.InjectHeaders(ctx, req.Header)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return zero, newTransportError(KindTimeout, err)
		}
		return zero, newTransportError(KindConnect, err)
	}
	return parse(resp)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// defaultClient serves stages created by NewRequest with a nil Client.
var defaultClient = &Client{
	httpClient: &http.Client{Timeout: DefaultTimeout},
	logger:     logger.NewNop(),
	retry:      true,
	policy:     DefaultRetryPolicy(),
	metrics:    NewNoopRecorder(),
	sleep:      sleepContext,
}
