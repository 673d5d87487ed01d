package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridianmaritime/globe/internal/host"
)

var _ host.Logger = (*HostLogger)(nil)

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), "failed to parse log output")
	return entry
}

func TestHostLogger_Debug(t *testing.T) {
	var buf bytes.Buffer
	hl := NewHostLogger(zerolog.New(&buf).Level(zerolog.DebugLevel))

	hl.Debug("frame scheduled", "id", 7, "kind", "pointermove")

	entry := decode(t, &buf)
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, "frame scheduled", entry["message"])
	assert.Equal(t, float64(7), entry["id"])
	assert.Equal(t, "pointermove", entry["kind"])
}

func TestHostLogger_Info(t *testing.T) {
	var buf bytes.Buffer
	hl := NewHostLogger(zerolog.New(&buf))

	hl.Info("loop started", "period", "33ms")

	entry := decode(t, &buf)
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "33ms", entry["period"])
}

func TestHostLogger_Error(t *testing.T) {
	var buf bytes.Buffer
	hl := NewHostLogger(zerolog.New(&buf).Level(zerolog.ErrorLevel))

	hl.Info("filtered")
	assert.Empty(t, buf.String())

	hl.Error("listener panicked", "code", 500, "dangling")

	entry := decode(t, &buf)
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, float64(500), entry["code"])
	assert.NotContains(t, entry, "dangling", "odd trailing key is dropped")
}

func TestNewConsoleLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsoleLogger(&buf, "warn")

	logger.Info().Msg("quiet")
	logger.Warn().Str("variant", "hero").Msg("loud")

	out := buf.String()
	assert.NotContains(t, out, "quiet")
	assert.Contains(t, out, "loud")
	assert.Contains(t, out, "variant=hero")
	assert.Contains(t, out, "component=host")
}

func TestNewConsoleLogger_BadLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsoleLogger(&buf, "chatty")
	assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())
}
