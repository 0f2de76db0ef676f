package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
)

const (
	// DefaultInitialDelay is the wait before the first retry.
	DefaultInitialDelay = 2 * time.Second

	// DefaultMultiplier grows the delay after every retry.
	DefaultMultiplier = 15

	// DefaultMaxDelay caps the delay between attempts.
	DefaultMaxDelay = 10 * time.Minute
)

// RetryPolicy configures the exponential backoff between attempts.
// There is no attempt cap; bound a call with a context deadline instead.
type RetryPolicy struct {
	InitialDelay time.Duration
	Multiplier   float64
	MaxDelay     time.Duration
}

// DefaultRetryPolicy waits 2s, 30s, 450s and then 600s between attempts.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		InitialDelay: DefaultInitialDelay,
		Multiplier:   DefaultMultiplier,
		MaxDelay:     DefaultMaxDelay,
	}
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	if p.InitialDelay <= 0 {
		p.InitialDelay = DefaultInitialDelay
	}
	if p.Multiplier < 1 {
		p.Multiplier = DefaultMultiplier
	}
	if p.MaxDelay < p.InitialDelay {
		p.MaxDelay = max(DefaultMaxDelay, p.InitialDelay)
	}
	return p
}

// newBackOff returns a deterministic schedule: delay = min(MaxDelay, delay*Multiplier).
func (p RetryPolicy) newBackOff() *backoff.ExponentialBackOff {
	p = p.withDefaults()
	b := &backoff.ExponentialBackOff{
		InitialInterval:     p.InitialDelay,
		RandomizationFactor: 0,
		Multiplier:          p.Multiplier,
		MaxInterval:         p.MaxDelay,
	}
	b.Reset()
	return b
}

// Schedule returns the first n delays the policy produces.
func (p RetryPolicy) Schedule(n int) []time.Duration {
	b := p.newBackOff()
	delays := make([]time.Duration, n)
	for i := range delays {
		delays[i] = b.NextBackOff()
	}
	return delays
}

// Sleeper waits for d or until ctx is done, returning ctx.Err() in the latter case.
type Sleeper func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// ErrRetryAborted is wrapped by the error returned when a backoff sleep is
// interrupted by context cancellation.
var ErrRetryAborted = errors.New("retry aborted")

// retry invokes attempt until it succeeds or shouldRetry rejects its error.
// Between attempts it sleeps according to policy. The only other way out is
// ctx being done during a sleep; the returned error then wraps ctx.Err() and
// the last attempt error.
func retry[T any](
	ctx context.Context,
	policy RetryPolicy,
	sleep Sleeper,
	attempt func(context.Context) (T, error),
	shouldRetry func(error) bool,
) (T, error) {
	if sleep == nil {
		sleep = sleepContext
	}
	b := policy.newBackOff()

	for attempts := 1; ; attempts++ {
		v, err := attempt(ctx)
		if err == nil {
			return v, nil
		}
		if !shouldRetry(err) {
			var zero T
			return zero, err
		}

		if sleepErr := sleep(ctx, b.NextBackOff()); sleepErr != nil {
			var zero T
			return zero, fmt.Errorf("%w after %d attempts: %w", ErrRetryAborted, attempts, errors.Join(sleepErr, err))
		}
	}
}
