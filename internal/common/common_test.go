package common

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserError(t *testing.T) {
	cause := errors.New("disk full")
	err := NewUserError("Could not save the wall set", cause)

	assert.Equal(t, "Could not save the wall set: disk full", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Could not save the wall set", UserMessage(err))
	assert.Equal(t, "plain", UserMessage(errors.New("plain")))
	assert.Empty(t, UserMessage(nil))
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseLevel("loud")
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestSetupLoggerTo_RedactsKey(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	require.NoError(t, SetupLoggerTo(&buf, slog.LevelInfo, "json"))

	slog.Info("configured", "api_key", "sk-secret", "provider", "anthropic")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "[redacted]", entry["api_key"])
	assert.Equal(t, "anthropic", entry["provider"])
	assert.NotContains(t, buf.String(), "sk-secret")
}

func TestSetupLoggerTo_UnknownFormat(t *testing.T) {
	require.ErrorIs(t, SetupLoggerTo(&bytes.Buffer{}, slog.LevelInfo, "xml"), ErrInvalidConfig)
}

func TestLogError(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	require.NoError(t, SetupLoggerTo(&buf, slog.LevelInfo, "json"))

	LogError(errors.New("upstream closed"), "Request failed", Fields{"path": "/v1/analyze"})

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "Request failed", entry["msg"])
	assert.Equal(t, "upstream closed", entry["error"])
	assert.Equal(t, "/v1/analyze", entry["path"])
}
