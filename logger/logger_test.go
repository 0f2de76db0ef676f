package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMessage = "test message"

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestNewWithWriterLevels(t *testing.T) {
	tests := []struct {
		name          string
		level         string
		expectedLevel zerolog.Level
	}{
		{name: "debug", level: "debug", expectedLevel: zerolog.DebugLevel},
		{name: "warn", level: "warn", expectedLevel: zerolog.WarnLevel},
		{name: "empty_defaults_to_info", level: "", expectedLevel: zerolog.InfoLevel},
		{name: "invalid_defaults_to_info", level: "loud", expectedLevel: zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewWithWriter(tt.level, false, &bytes.Buffer{})
			assert.Equal(t, tt.expectedLevel, l.zlog.GetLevel())
		})
	}
}

func TestLogEventFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("debug", false, &buf)

	l.Info().
		Str("method", "get_block").
		Int("attempt", 2).
		Int("block", 42).
		Dur("elapsed", 1500*time.Millisecond).
		Err(errors.New("boom")).
		Msg(testMessage)

	entry := decodeLine(t, &buf)
	assert.Equal(t, testMessage, entry["message"])
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "get_block", entry["method"])
	assert.InDelta(t, 2, entry["attempt"], 0)
	assert.InDelta(t, 42, entry["block"], 0)
	assert.Equal(t, "boom", entry["error"])
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("warn", false, &buf)

	l.Debug().Msg("hidden")
	l.Info().Msg("hidden")
	assert.Empty(t, buf.String())

	l.Error().Msgf("visible %d", 1)
	entry := decodeLine(t, &buf)
	assert.Equal(t, "visible 1", entry["message"])
}

func TestSensitiveStringIsMasked(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("info", false, &buf)

	l.Info().Str("api_key", "super-secret").Str("X-Throttling-Bypass", "bypass-me").Msg(testMessage)

	out := buf.String()
	assert.NotContains(t, out, "super-secret")
	assert.NotContains(t, out, "bypass-me")
	assert.Contains(t, out, DefaultMaskValue)
}

func TestURLTokenIsMasked(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("info", false, &buf)

	l.Info().Str("url", "https://gateway.example/feeder_gateway/get_block?blockNumber=1&token=abc123").Msg(testMessage)

	out := buf.String()
	assert.NotContains(t, out, "abc123")
	assert.Contains(t, out, "blockNumber=1")
}

func TestWithFieldsFiltersValues(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("info", false, &buf)

	l.WithFields(map[string]any{"component": "gateway", "token": "hidden"}).Info().Msg(testMessage)

	entry := decodeLine(t, &buf)
	assert.Equal(t, "gateway", entry["component"])
	assert.Equal(t, DefaultMaskValue, entry["token"])
}

func TestInterfaceFiltersNestedMaps(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("info", false, &buf)

	headers := map[string]string{"X-Throttling-Bypass": "secret", "Accept": "application/json"}
	l.Info().Interface("headers", headers).Msg(testMessage)

	out := buf.String()
	assert.NotContains(t, out, "secret")
	assert.Contains(t, out, "application/json")
}

func TestWithContext(t *testing.T) {
	l := NewWithWriter("info", false, &bytes.Buffer{})

	t.Run("non_context_returns_same_logger", func(t *testing.T) {
		assert.Same(t, l, l.WithContext("not a context"))
	})

	t.Run("context_without_logger_returns_same_logger", func(t *testing.T) {
		assert.Same(t, l, l.WithContext(context.Background()))
	})

	t.Run("context_logger_is_used", func(t *testing.T) {
		var buf bytes.Buffer
		zl := zerolog.New(&buf)
		ctx := zl.WithContext(context.Background())

		l.WithContext(ctx).Info().Msg(testMessage)
		assert.Contains(t, buf.String(), testMessage)
	})
}

func TestNewNop(t *testing.T) {
	l := NewNop()
	assert.NotPanics(t, func() {
		l.Error().Str("k", "v").Msg(testMessage)
	})
}
