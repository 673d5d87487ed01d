package logging

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/Graylog2/go-gelf/gelf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type gelfRecorder struct {
	messages []*gelf.Message
	err      error
}

func (r *gelfRecorder) WriteMessage(m *gelf.Message) error {
	r.messages = append(r.messages, m)
	return r.err
}

func TestGelfHandler_Message(t *testing.T) {
	rec := &gelfRecorder{}
	logger := slog.New(NewGelfHandler(rec, slog.LevelDebug))

	logger.Error("surface lost", "frames", 12, "hover", true, "variant", "hero")

	require.Len(t, rec.messages, 1)
	m := rec.messages[0]
	assert.Equal(t, "1.1", m.Version)
	assert.Equal(t, "surface lost", m.Short)
	assert.Equal(t, gelfError, m.Level)
	assert.Equal(t, InstrumentationName, m.Facility)
	assert.NotEmpty(t, m.Host)
	assert.InDelta(t, float64(time.Now().Unix()), m.TimeUnix, 5)
	assert.Equal(t, int64(12), m.Extra["_frames"])
	assert.Equal(t, true, m.Extra["_hover"])
	assert.Equal(t, "hero", m.Extra["_variant"])
}

func TestGelfHandler_Levels(t *testing.T) {
	tests := []struct {
		level slog.Level
		want  int32
	}{
		{slog.LevelDebug, gelfDebug},
		{slog.LevelInfo, gelfInfo},
		{slog.LevelWarn, gelfWarning},
		{slog.LevelError, gelfError},
		{slog.LevelError + 4, gelfError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, gelfLevel(tt.level), tt.level.String())
	}
}

func TestGelfHandler_FiltersLevel(t *testing.T) {
	rec := &gelfRecorder{}
	logger := slog.New(NewGelfHandler(rec, slog.LevelWarn))

	logger.Info("dropped")
	logger.Warn("kept")

	require.Len(t, rec.messages, 1)
	assert.Equal(t, "kept", rec.messages[0].Short)
}

func TestGelfHandler_AttrsAndGroups(t *testing.T) {
	rec := &gelfRecorder{}
	logger := slog.New(NewGelfHandler(rec, slog.LevelInfo)).
		With("session", "s1").
		WithGroup("camera").
		With("fov", 45)

	logger.Info("moved", "distance", 2.2, slog.Group("target", "x", 0))

	require.Len(t, rec.messages, 1)
	extra := rec.messages[0].Extra
	assert.Equal(t, "s1", extra["_session"])
	assert.Equal(t, int64(45), extra["_camera.fov"])
	assert.Equal(t, 2.2, extra["_camera.distance"])
	assert.Equal(t, int64(0), extra["_camera.target.x"])
}

func TestGelfHandler_WithGroupEmpty(t *testing.T) {
	h := NewGelfHandler(&gelfRecorder{}, slog.LevelInfo)
	assert.Same(t, h, h.WithGroup(""))
}

func TestGelfHandler_WriteErrorIsReturned(t *testing.T) {
	rec := &gelfRecorder{err: errors.New("udp down")}
	h := NewGelfHandler(rec, slog.LevelInfo)

	r := slog.NewRecord(time.Now(), slog.LevelInfo, "x", 0)
	assert.Error(t, h.Handle(t.Context(), r))
}
