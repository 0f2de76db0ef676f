package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaborage/go-sequencer/gateway"
	gwtest "github.com/gaborage/go-sequencer/gateway/testing"
	"github.com/gaborage/go-sequencer/logger"
)

func writeConfig(t *testing.T, gatewayURL string) string {
	t.Helper()
	content := fmt.Sprintf(`
log:
  level: error
gateway:
  network: custom
  url: %s
  retry: false
  timeout: 5s
metrics:
  backend: none
`, gatewayURL)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer

	cmd := NewRootCommand("test")
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append(args, "--env-file", filepath.Join(t.TempDir(), "absent.env")))

	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), err
}

func TestHeaderCommand(t *testing.T) {
	gw := gwtest.NewGateway(t, gwtest.JSON(http.StatusOK, map[string]any{"block_hash": "0xabc", "block_number": 5}))

	out, err := run(t, "header", "5", "--config", writeConfig(t, gw.URL))
	require.NoError(t, err)

	var header map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &header))
	assert.Equal(t, "0xabc", header["block_hash"])
	assert.InDelta(t, 5, header["block_number"], 0)

	req := gw.Requests()[0]
	assert.Equal(t, "/feeder_gateway/get_block", req.Path)
	assert.Equal(t, "5", req.Query.Get("blockNumber"))
	assert.Equal(t, "true", req.Query.Get("headerOnly"))
}

func TestBlockCommandRejectsBadID(t *testing.T) {
	_, err := run(t, "block", "yesterday")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid block id")
}

func TestClassCommandWritesRawBody(t *testing.T) {
	gw := gwtest.NewGateway(t, gwtest.Raw(http.StatusOK, `{"abi":[]}`))

	out, err := run(t, "class", "0x1f", "--config", writeConfig(t, gw.URL))
	require.NoError(t, err)
	assert.Equal(t, "{\"abi\":[]}\n", out)

	req := gw.Requests()[0]
	assert.Equal(t, "/feeder_gateway/get_class_by_hash", req.Path)
	assert.Equal(t, "0x1f", req.Query.Get("classHash"))
	assert.Equal(t, "pending", req.Query.Get("blockNumber"))
}

func TestContractsCommandReturnsApplicationError(t *testing.T) {
	gw := gwtest.NewGateway(t, gwtest.StarknetError(http.StatusBadRequest, string(gateway.CodeMalformedRequest), "bad"))

	_, err := run(t, "contracts", "--config", writeConfig(t, gw.URL))
	require.Error(t, err)

	var appErr *gateway.ApplicationError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, gateway.CodeMalformedRequest, appErr.Code)
	assert.Equal(t, 1, gw.Hits())
}

func TestBlocksCommandFetchesRangeConcurrently(t *testing.T) {
	gw := gwtest.NewGateway(t)
	gw.SetFallback(gwtest.JSON(http.StatusOK, map[string]any{"block_hash": "0x1", "block_number": 1}))

	out, err := run(t, "blocks", "--from", "10", "--to", "12", "--concurrency", "3", "--config", writeConfig(t, gw.URL))
	require.NoError(t, err)

	dec := json.NewDecoder(bytes.NewBufferString(out))
	count := 0
	for {
		var h gateway.BlockHeader
		if err := dec.Decode(&h); errors.Is(err, io.EOF) {
			break
		} else {
			require.NoError(t, err)
		}
		count++
	}
	assert.Equal(t, 3, count)

	var requested []string
	for _, r := range gw.Requests() {
		requested = append(requested, r.Query.Get("blockNumber"))
	}
	slices.Sort(requested)
	assert.Equal(t, []string{"10", "11", "12"}, requested)
}

func TestBlocksCommandValidatesFlags(t *testing.T) {
	_, err := run(t, "blocks", "--from", "5", "--to", "4")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "before --from")

	_, err = run(t, "blocks", "--to", "4", "--concurrency", "0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--concurrency")
}

func TestMissingConfigFileFails(t *testing.T) {
	_, err := run(t, "contracts", "--config", filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")
}

func TestMetricsServerExposesGatewaySeries(t *testing.T) {
	srv, err := startMetricsServer("127.0.0.1:0", logger.NewNop())
	require.NoError(t, err)
	defer func() { _ = srv.shutdown(context.Background()) }()

	srv.recorder.RecordAttempt(context.Background(),
		gateway.RequestMetadata{Method: "get_block", Tag: gateway.TagLatest}, time.Millisecond, nil)

	var body string
	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + srv.addr + "/metrics")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		b, _ := io.ReadAll(resp.Body)
		body = string(b)
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	assert.Contains(t, body, `gateway_requests_total{method="get_block",tag="latest"} 1`)
	assert.Contains(t, body, "go_goroutines")
}
