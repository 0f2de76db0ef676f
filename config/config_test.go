package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "sequencer-probe", cfg.App.Name)
	assert.Equal(t, EnvDevelopment, cfg.App.Env)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "mainnet", cfg.Gateway.Network)
	assert.Equal(t, 30*time.Second, cfg.Gateway.Timeout)
	assert.True(t, cfg.Gateway.Retry)
	assert.Zero(t, cfg.Gateway.Rate.RequestsPerSecond)
	assert.Equal(t, MetricsOTel, cfg.Metrics.Backend)
	assert.False(t, cfg.Observability.Enabled)
	assert.Equal(t, 15*time.Second, cfg.Observability.Metrics.Interval)
}

func TestLoadFromBytes(t *testing.T) {
	cfg, err := LoadFromBytes([]byte(`
gateway:
  network: custom
  url: http://localhost:5050
  api_key: secret
  timeout: 5s
  retry: false
  rate_limit:
    requests_per_second: 2.5
    burst: 4
metrics:
  backend: prometheus
  listen: 127.0.0.1:9100
observability:
  enabled: true
  service_name: probe
  trace:
    endpoint: collector:4317
    protocol: grpc
    insecure: true
    sample_rate: 0.25
`))
	require.NoError(t, err)

	assert.Equal(t, NetworkCustom, cfg.Gateway.Network)
	assert.Equal(t, "http://localhost:5050", cfg.Gateway.URL)
	assert.Equal(t, "secret", cfg.Gateway.APIKey)
	assert.Equal(t, 5*time.Second, cfg.Gateway.Timeout)
	assert.False(t, cfg.Gateway.Retry)
	assert.InDelta(t, 2.5, cfg.Gateway.Rate.RequestsPerSecond, 0)
	assert.Equal(t, 4, cfg.Gateway.Rate.Burst)
	assert.Equal(t, MetricsPrometheus, cfg.Metrics.Backend)
	assert.Equal(t, "127.0.0.1:9100", cfg.Metrics.Listen)

	obs := cfg.Observability
	assert.True(t, obs.Enabled)
	assert.Equal(t, "probe", obs.ServiceName)
	assert.Equal(t, "collector:4317", obs.Trace.Endpoint)
	assert.True(t, obs.Trace.Insecure)
	require.NotNil(t, obs.Trace.SampleRate)
	assert.InDelta(t, 0.25, *obs.Trace.SampleRate, 0)
}

func TestEnvironmentOverridesYAML(t *testing.T) {
	t.Setenv("SEQUENCER_GATEWAY__API_KEY", "from-env")
	t.Setenv("SEQUENCER_GATEWAY__RATE_LIMIT__BURST", "9")
	t.Setenv("SEQUENCER_GATEWAY__RETRY", "false")
	t.Setenv("SEQUENCER_LOG__LEVEL", "debug")

	cfg, err := LoadFromBytes([]byte("gateway:\n  api_key: from-yaml\n"))
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Gateway.APIKey)
	assert.Equal(t, 9, cfg.Gateway.Rate.Burst)
	assert.False(t, cfg.Gateway.Retry)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadFileWithEnvironmentOverlay(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", "app:\n  env: staging\ngateway:\n  network: sepolia\n  timeout: 10s\n")
	writeFile(t, dir, "config.staging.yaml", "gateway:\n  timeout: 45s\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, EnvStaging, cfg.App.Env)
	assert.Equal(t, "sepolia", cfg.Gateway.Network)
	assert.Equal(t, 45*time.Second, cfg.Gateway.Timeout)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "absent.yaml")
}

func TestLoadFromBytesRejectsMalformedYAML(t *testing.T) {
	_, err := LoadFromBytes([]byte("gateway: [unterminated"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config")
}

func TestValidationErrors(t *testing.T) {
	tests := []struct {
		name     string
		yaml     string
		category string
		field    string
		contains string
	}{
		{
			name:     "custom network needs url",
			yaml:     "gateway:\n  network: custom\n",
			category: "missing",
			field:    "gateway.url",
			contains: "SEQUENCER_GATEWAY__URL",
		},
		{
			name:     "unknown network",
			yaml:     "gateway:\n  network: goerli\n",
			category: "invalid",
			field:    "gateway.network",
			contains: "must be one of: mainnet, sepolia, integration, custom",
		},
		{
			name:     "malformed url",
			yaml:     "gateway:\n  network: custom\n  url: not a url\n",
			category: "invalid",
			field:    "gateway.url",
		},
		{
			name:     "non-positive timeout",
			yaml:     "gateway:\n  timeout: 0s\n",
			category: "invalid",
			field:    "gateway.timeout",
		},
		{
			name:     "negative burst",
			yaml:     "gateway:\n  rate_limit:\n    burst: -1\n",
			category: "invalid",
			field:    "gateway.rate_limit.burst",
		},
		{
			name:     "unknown metrics backend",
			yaml:     "metrics:\n  backend: statsd\n",
			category: "invalid",
			field:    "metrics.backend",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromBytes([]byte(tt.yaml))
			require.Error(t, err)

			var cfgErr *ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.category, cfgErr.Category)
			assert.Equal(t, tt.field, cfgErr.Field)
			if tt.contains != "" {
				assert.Contains(t, err.Error(), tt.contains)
			}
		})
	}
}

func TestObservabilityValidationRuns(t *testing.T) {
	_, err := LoadFromBytes([]byte("observability:\n  enabled: true\n  service_name: \"\"\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "service name is required")
}

func TestConfigErrorFormatting(t *testing.T) {
	err := NewMissingFieldError("gateway.api_key")
	assert.Equal(t,
		"config_missing: gateway.api_key required set SEQUENCER_GATEWAY__API_KEY env var or add gateway.api_key to config.yaml",
		err.Error())

	invalid := &ConfigError{Category: "invalid", Field: "log.level", Message: "bad", Details: []string{"a", "b"}}
	assert.Equal(t, "config_invalid: log.level bad a; b", invalid.Error())
}
