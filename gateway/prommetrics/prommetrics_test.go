package prommetrics

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaborage/go-sequencer/gateway"
	gwtest "github.com/gaborage/go-sequencer/gateway/testing"
	"github.com/gaborage/go-sequencer/logger"
)

func TestNewPreRegistersSeries(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()
	r := New(reg)

	assert.Equal(t, len(gateway.Methods())*3, testutil.CollectAndCount(r.RequestsTotal))
	assert.InDelta(t, 0, testutil.ToFloat64(r.RequestsTotal.WithLabelValues("get_block", "pending")), 0)
}

func TestRecordAttempt(t *testing.T) {
	r := New(prometheus.NewRegistry())
	meta := gateway.RequestMetadata{Method: "get_block", Tag: gateway.TagLatest}

	r.RecordAttempt(context.Background(), meta, 10*time.Millisecond, nil)
	r.RecordAttempt(context.Background(), meta, 20*time.Millisecond, &gateway.TransportError{
		Kind:       gateway.KindStatus,
		StatusCode: http.StatusTooManyRequests,
	})

	assert.InDelta(t, 2, testutil.ToFloat64(r.RequestsTotal.WithLabelValues("get_block", "latest")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(r.RequestsFailedTotal.WithLabelValues("get_block", "latest", "rate_limiting")), 0)
	assert.Equal(t, 1, testutil.CollectAndCount(r.RequestsFailedTotal))
	assert.Equal(t, 1, testutil.CollectAndCount(r.RequestDuration))
}

func TestRecorderWiredIntoClient(t *testing.T) {
	gw := gwtest.NewGateway(t,
		gwtest.StarknetError(http.StatusInternalServerError, string(gateway.CodeBlockNotFound), "missing"),
	)
	r := New(prometheus.NewRegistry())

	c, err := gateway.NewClientBuilder(logger.NewNop()).
		WithBaseURL(gw.URL).
		WithMetricsRecorder(r).
		Build()
	require.NoError(t, err)

	_, err = c.BlockHeader(context.Background(), gateway.BlockNumber(99))
	require.Error(t, err)

	assert.InDelta(t, 1, testutil.ToFloat64(r.RequestsTotal.WithLabelValues("get_block", "none")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(r.RequestsFailedTotal.WithLabelValues("get_block", "none", "application")), 0)
}
