package gateway

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gaborage/go-sequencer/logger"
)

const testAPIKey = "bypass-key"

// fakeClock records backoff sleeps without waiting.
type fakeClock struct {
	mu     sync.Mutex
	sleeps []time.Duration
}

func (f *fakeClock) sleep(ctx context.Context, d time.Duration) error {
	f.mu.Lock()
	f.sleeps = append(f.sleeps, d)
	f.mu.Unlock()
	return ctx.Err()
}

func (f *fakeClock) Sleeps() []time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]time.Duration(nil), f.sleeps...)
}

func newTestClient(t *testing.T, baseURL string, configure ...func(*ClientBuilder)) (*Client, *fakeClock) {
	t.Helper()

	b := NewClientBuilder(logger.NewNop()).
		WithBaseURL(baseURL).
		WithMetricsRecorder(nil)
	for _, f := range configure {
		f(b)
	}

	c, err := b.Build()
	require.NoError(t, err)

	clock := &fakeClock{}
	c.sleep = clock.sleep
	return c, clock
}

func newBufferLogger() (logger.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return logger.NewWithWriter("debug", false, &buf), &buf
}

func seconds(values ...int) []time.Duration {
	out := make([]time.Duration, len(values))
	for i, v := range values {
		out[i] = time.Duration(v) * time.Second
	}
	return out
}
