package monitor

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/meridianmaritime/globe/internal/globe"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var _ globe.FrameObserver = (*Service)(nil)

func TestStatus_Empty(t *testing.T) {
	s := NewService(Dependencies{})
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	st := s.Status(now)
	assert.Equal(t, now, st.Time)
	assert.Nil(t, st.Frame)
	assert.Nil(t, st.Session)
	assert.Nil(t, st.Counters)
}

func TestStatus_KeepsLatestFrame(t *testing.T) {
	s := NewService(Dependencies{
		Counters: map[string]Counter{"droppedEvents": func() uint64 { return 4 }},
	})
	s.ObserveFrame(globe.FrameStats{Frame: 1, Distance: 3})
	s.ObserveFrame(globe.FrameStats{Frame: 2, Distance: 2.5, Hover: true})
	s.ObserveSession(globe.SessionStats{Frames: 2})

	st := s.Status(time.Now())
	require.NotNil(t, st.Frame)
	assert.Equal(t, uint64(2), st.Frame.Frame)
	assert.True(t, st.Frame.Hover)
	require.NotNil(t, st.Session)
	assert.Equal(t, uint64(2), st.Session.Frames)
	assert.Equal(t, map[string]uint64{"droppedEvents": 4}, st.Counters)
}

func TestWriteStatus_JSON(t *testing.T) {
	s := NewService(Dependencies{})
	s.ObserveFrame(globe.FrameStats{Frame: 7, State: globe.StateSteady})

	var buf bytes.Buffer
	require.NoError(t, s.WriteStatus(&buf, time.Now()))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	frame, ok := decoded["frame"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(7), frame["frame"])
	assert.Equal(t, "steady", frame["state"])
	assert.NotContains(t, decoded, "session")
}

func TestStart_WritesFileUntilCanceled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "status.json")
	s := NewService(Dependencies{StatusPath: path, Interval: 10 * time.Millisecond})
	s.ObserveFrame(globe.FrameStats{Frame: 1})

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Start(ctx))
	assert.True(t, s.IsRunning())
	// second start is a no-op
	require.NoError(t, s.Start(ctx))

	require.Eventually(t, func() bool {
		data, err := os.ReadFile(path)
		return err == nil && bytes.Contains(data, []byte(`"frame": 1`))
	}, time.Second, 10*time.Millisecond)

	s.ObserveSession(globe.SessionStats{Frames: 9})
	cancel()
	s.Wait()
	assert.False(t, s.IsRunning())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var st Status
	require.NoError(t, json.Unmarshal(data, &st))
	require.NotNil(t, st.Session)
	assert.Equal(t, uint64(9), st.Session.Frames)
}

func TestStart_BadPath(t *testing.T) {
	s := NewService(Dependencies{StatusPath: filepath.Join(t.TempDir(), "missing", "status.json")})
	err := s.Start(context.Background())
	assert.ErrorContains(t, err, "creating status file")
	assert.False(t, s.IsRunning())
}
