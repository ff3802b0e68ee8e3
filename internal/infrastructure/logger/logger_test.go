package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		" WARN ":  zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"trace":   zerolog.TraceLevel,
		"":        zerolog.InfoLevel,
		"verbose": zerolog.InfoLevel,
	}

	for input, want := range tests {
		assert.Equal(t, want, parseLevel(input), "level %q", input)
	}
}

func TestJSONEntryFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(Config{Format: "json", Level: "debug", Caller: true}, &buf)

	log.Debug().Str("operation_id", "op-1").Msg("debited limit")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), buf.String())
	assert.Equal(t, "cambio", entry["service"])
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, "op-1", entry["operation_id"])
	assert.Contains(t, entry["caller"], "logger_test.go")
	assert.True(t, strings.HasSuffix(entry["time"].(string), "Z"), entry["time"])
}

func TestConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	NewWithWriter(Config{Format: "Console"}, &buf).Info().Msg("listening")

	out := buf.String()
	assert.False(t, strings.HasPrefix(out, "{"), out)
	assert.Contains(t, out, "listening")
}

func TestLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(Config{Level: "error"}, &buf)

	log.Info().Msg("dropped")
	assert.Zero(t, buf.Len())

	log.Error().Msg("kept")
	assert.Contains(t, buf.String(), "kept")
}
