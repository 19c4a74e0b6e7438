package observability

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected slog.Level
	}{
		{name: "debug", input: "debug", expected: slog.LevelDebug},
		{name: "info", input: "info", expected: slog.LevelInfo},
		{name: "warn", input: "warn", expected: slog.LevelWarn},
		{name: "warning alias", input: "warning", expected: slog.LevelWarn},
		{name: "error", input: "error", expected: slog.LevelError},
		{name: "uppercase", input: "DEBUG", expected: slog.LevelDebug},
		{name: "padded", input: " error ", expected: slog.LevelError},
		{name: "empty defaults to info", input: "", expected: slog.LevelInfo},
		{name: "unknown defaults to info", input: "verbose", expected: slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLevel(tt.input))
		})
	}
}

func TestInitLogger_JSONIncludesService(t *testing.T) {
	var buf bytes.Buffer
	logger := InitLogger(LogConfig{
		Output:  &buf,
		Level:   "info",
		Format:  "json",
		Service: "fraud-detector",
	})
	require.NotNil(t, logger)

	logger.Info("transaction analyzed", slog.String("risk_level", "LOW"))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "fraud-detector", line["service"])
	assert.Equal(t, "transaction analyzed", line["msg"])
	assert.Equal(t, "LOW", line["risk_level"])
}

func TestInitLogger_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := InitLogger(LogConfig{Output: &buf, Level: "warn", Format: "text"})

	logger.Info("dropped")
	assert.Empty(t, buf.String())

	logger.Warn("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestInitLogger_SetsDefault(t *testing.T) {
	var buf bytes.Buffer
	logger := InitLogger(LogConfig{Output: &buf, Format: "json"})

	assert.Equal(t, logger.Handler(), slog.Default().Handler())
}
