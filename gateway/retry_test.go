package gateway

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gwtest "github.com/gaborage/go-sequencer/gateway/testing"
)

func TestDefaultRetryPolicySchedule(t *testing.T) {
	assert.Equal(t, seconds(2, 30, 450, 600, 600, 600), DefaultRetryPolicy().Schedule(6))
}

func TestRetryPolicyDefaultsInvalidFields(t *testing.T) {
	p := RetryPolicy{}.withDefaults()
	assert.Equal(t, DefaultRetryPolicy(), p)

	custom := RetryPolicy{InitialDelay: time.Second, Multiplier: 2, MaxDelay: 5 * time.Second}
	assert.Equal(t, seconds(1, 2, 4, 5, 5), custom.Schedule(5))
}

func TestRetryReturnsFirstSuccess(t *testing.T) {
	clock := &fakeClock{}
	calls := 0

	got, err := retry(context.Background(), DefaultRetryPolicy(), clock.sleep,
		func(context.Context) (string, error) {
			calls++
			if calls < 3 {
				return "", statusErr(http.StatusServiceUnavailable)
			}
			return "ok", nil
		},
		func(error) bool { return true })

	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 3, calls)
	assert.Equal(t, seconds(2, 30), clock.Sleeps())
}

func TestRetryStopsWhenClassifierRejects(t *testing.T) {
	clock := &fakeClock{}
	calls := 0
	fatal := &ApplicationError{Code: CodeBlockNotFound}

	_, err := retry(context.Background(), DefaultRetryPolicy(), clock.sleep,
		func(context.Context) (int, error) {
			calls++
			return 0, fatal
		},
		func(err error) bool { return !IsErrorType(err, ApplicationErrorType) })

	assert.Same(t, fatal, err)
	assert.Equal(t, 1, calls)
	assert.Empty(t, clock.Sleeps())
}

func TestRetryAbortsWhenContextDoneDuringSleep(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	lastErr := statusErr(http.StatusBadGateway)

	_, err := retry(ctx, DefaultRetryPolicy(),
		func(ctx context.Context, _ time.Duration) error {
			cancel()
			return ctx.Err()
		},
		func(context.Context) (int, error) { return 0, lastErr },
		func(error) bool { return true })

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRetryAborted)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, err, lastErr)
}

func TestSleepContext(t *testing.T) {
	require.NoError(t, sleepContext(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sleepContext(ctx, time.Hour), context.Canceled)
}

func TestClientStopsOnSuccessAfterRetryableFailures(t *testing.T) {
	gw := gwtest.NewGateway(t,
		gwtest.Status(http.StatusTooManyRequests),
		gwtest.Status(http.StatusBadGateway),
		gwtest.Status(http.StatusServiceUnavailable),
		gwtest.Status(http.StatusGatewayTimeout),
		gwtest.JSON(http.StatusOK, map[string]any{"block_hash": "0x1", "block_number": 7}),
	)
	c, clock := newTestClient(t, gw.URL)

	header, err := c.BlockHeader(context.Background(), LatestBlock())

	require.NoError(t, err)
	assert.Equal(t, uint64(7), header.BlockNumber)
	assert.Equal(t, 5, gw.Hits())
	assert.Equal(t, 0, gw.Remaining())
	assert.Equal(t, seconds(2, 30, 450, 600), clock.Sleeps())
}

func TestClientStopsOnApplicationError(t *testing.T) {
	gw := gwtest.NewGateway(t,
		gwtest.Status(http.StatusTooManyRequests),
		gwtest.Status(http.StatusBadGateway),
		gwtest.StarknetError(http.StatusInternalServerError, string(CodeBlockNotFound), ""),
		gwtest.Status(http.StatusServiceUnavailable),
		gwtest.JSON(http.StatusOK, map[string]any{"block_number": 7}),
	)
	c, _ := newTestClient(t, gw.URL)

	_, err := c.BlockHeader(context.Background(), LatestBlock())

	require.Error(t, err)
	assert.True(t, IsApplicationError(err, CodeBlockNotFound))
	assert.Equal(t, 3, gw.Hits())
	assert.Equal(t, 2, gw.Remaining())
}

func TestClientReportsInvalidErrorVariantWithoutRetry(t *testing.T) {
	gw := gwtest.NewGateway(t, gwtest.Raw(http.StatusInternalServerError, "<html>oops</html>"))
	c, _ := newTestClient(t, gw.URL, func(b *ClientBuilder) { b.WithRetry(false) })

	_, err := c.BlockHeader(context.Background(), BlockNumber(1))

	var malformed *MalformedApplicationError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, "error decoding response body: invalid error variant", err.Error())
	assert.Equal(t, 1, gw.Hits())
}

func TestClientRetriesMalformedErrors(t *testing.T) {
	gw := gwtest.NewGateway(t,
		gwtest.Raw(http.StatusInternalServerError, "oops"),
		gwtest.JSON(http.StatusOK, map[string]any{"block_number": 2}),
	)
	c, clock := newTestClient(t, gw.URL)

	header, err := c.BlockHeader(context.Background(), BlockNumber(2))

	require.NoError(t, err)
	assert.Equal(t, uint64(2), header.BlockNumber)
	assert.Equal(t, seconds(2), clock.Sleeps())
}

// TestClientRetriesTimeoutsForever drives the engine against a gateway that never
// answers in time. Sleeps advance a virtual clock; the context is cancelled once
// the observation window is exhausted. Attempts start at 0s, 2s, 32s, 482s and
// 1082s, so five attempts fit in 1200s.
func TestClientRetriesTimeoutsForever(t *testing.T) {
	const window = 1200 * time.Second

	gw := gwtest.NewGateway(t)
	gw.SetFallback(gwtest.Slow(time.Minute))
	c, _ := newTestClient(t, gw.URL, func(b *ClientBuilder) { b.WithTimeout(50 * time.Millisecond) })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		elapsed time.Duration
		sleeps  []time.Duration
	)
	c.sleep = func(ctx context.Context, d time.Duration) error {
		sleeps = append(sleeps, d)
		elapsed += d
		if elapsed > window {
			cancel()
		}
		return ctx.Err()
	}

	_, err := c.FeederGatewayRequest().GetBlock().WithBlock(LatestBlock()).WithRetry(true).GetAsBytes(ctx)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, IsTransportKind(err, KindTimeout), "last attempt error should be a timeout: %v", err)
	assert.Equal(t, 5, gw.Hits())
	assert.Equal(t, seconds(2, 30, 450, 600, 600), sleeps)
}

func TestClientWithoutRetryReturnsFirstTransportError(t *testing.T) {
	gw := gwtest.NewGateway(t, gwtest.Status(http.StatusServiceUnavailable), gwtest.JSON(http.StatusOK, map[string]any{}))
	c, clock := newTestClient(t, gw.URL, func(b *ClientBuilder) { b.WithRetry(false) })

	_, err := c.ContractAddresses(context.Background())

	var transportErr *TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.Equal(t, http.StatusServiceUnavailable, transportErr.StatusCode)
	assert.Equal(t, 1, gw.Hits())
	assert.Empty(t, clock.Sleeps())
}
