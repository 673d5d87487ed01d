package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// captureStdout swaps osStdout for a pipe; the returned func restores it
// and yields what was written.
func captureStdout(t *testing.T) func() string {
	t.Helper()

	r, w, err := osPipe()
	require.NoError(t, err)
	orig := osStdout
	osStdout = w

	return func() string {
		w.Close()
		osStdout = orig
		var buf bytes.Buffer
		buf.ReadFrom(r)
		r.Close()
		return buf.String()
	}
}

func TestSetup_Destination(t *testing.T) {
	t.Run("file keeps stdout clean for the viewer", func(t *testing.T) {
		restore := captureStdout(t)
		var file bytes.Buffer
		m := NewSlogManager()
		m.Setup(&file, "info", nil)
		m.Logger().Info("globe mounted")

		assert.Empty(t, restore())
		assert.Contains(t, file.String(), "Logging initialized")
		assert.Contains(t, file.String(), "globe mounted")
	})

	t.Run("no file falls back to stdout", func(t *testing.T) {
		restore := captureStdout(t)
		m := NewSlogManager()
		m.Setup(nil, "info", nil)
		m.Logger().Info("headless")

		assert.Contains(t, restore(), "headless")
	})

	t.Run("second setup switches outputs", func(t *testing.T) {
		var first, second bytes.Buffer
		m := NewSlogManager()
		m.Setup(&first, "info", nil)
		m.Setup(&second, "info", nil)
		m.Logger().Info("after switch")

		assert.NotContains(t, first.String(), "after switch")
		assert.Contains(t, second.String(), "after switch")
	})
}

func TestSetup_LevelFiltering(t *testing.T) {
	tests := []struct {
		level     string
		wantDebug bool
		wantInfo  bool
	}{
		{"debug", true, true},
		{"trace", true, true},
		{"info", false, true},
		{"warn", false, false},
		{"nonsense", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			m := NewSlogManager()
			m.Setup(&buf, tt.level, nil)
			m.Logger().Debug("gate toggled")
			m.Logger().Info("frame drawn")

			assert.Equal(t, tt.wantDebug, strings.Contains(buf.String(), "gate toggled"))
			assert.Equal(t, tt.wantInfo, strings.Contains(buf.String(), "frame drawn"))
		})
	}
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"debug": slog.LevelDebug, "TRACE": slog.LevelDebug,
		"INFO": slog.LevelInfo, "warn": slog.LevelWarn,
		"Error": slog.LevelError, "": slog.LevelInfo,
	} {
		assert.Equal(t, want, parseLevel(in), in)
	}
}

func TestSlogManager_BeforeSetup(t *testing.T) {
	m := NewSlogManager()
	assert.Equal(t, slog.Default(), m.Logger())
	assert.NoError(t, m.Flush(context.Background()))
	assert.Zero(t, m.Failures())
}

func TestSetup_WithOTelProvider(t *testing.T) {
	provider := sdklog.NewLoggerProvider()
	var buf bytes.Buffer
	m := NewSlogManager()
	m.Setup(&buf, "info", provider)

	m.Logger().Info("bridged")
	assert.Contains(t, buf.String(), "bridged")
	assert.NoError(t, m.Flush(context.Background()))
}

func TestSetup_WithContext(t *testing.T) {
	var buf bytes.Buffer
	m := NewSlogManager()
	m.Setup(&buf, "info", nil, WithContext(func() []slog.Attr {
		return []slog.Attr{slog.String("variant", "hero")}
	}))

	m.Logger().Info("framed")
	assert.Contains(t, buf.String(), "variant=hero")
}

func TestSetup_ContextAttrs(t *testing.T) {
	var buf bytes.Buffer
	m := NewSlogManager()
	m.Setup(&buf, "info", nil)

	ctx := AppendCtx(context.Background(), slog.String("command", "view"))
	ctx = AppendCtx(ctx, slog.Int("width", 80))
	m.Logger().InfoContext(ctx, "tagged")
	m.Logger().Info("untagged")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "command=view")
	assert.Contains(t, lines[1], "width=80")
	assert.NotContains(t, lines[2], "command=")
}

func TestAppendCtx_DoesNotMutateParent(t *testing.T) {
	parent := AppendCtx(context.Background(), slog.String("a", "1"))
	_ = AppendCtx(parent, slog.String("b", "2"))

	var buf bytes.Buffer
	h := NewContextHandler(slog.NewTextHandler(&buf, nil), nil)
	slog.New(h).InfoContext(parent, "parent")
	assert.Contains(t, buf.String(), "a=1")
	assert.NotContains(t, buf.String(), "b=2")
}

func TestSetup_WithGraylog(t *testing.T) {
	var buf bytes.Buffer
	gw := &gelfRecorder{}
	m := NewSlogManager()
	m.Setup(&buf, "info", nil, WithGraylog(gw))

	m.Logger().Debug("not shipped")
	m.Logger().Warn("shipped", "distance", 2.5)

	// Setup logs one line itself
	require.Len(t, gw.messages, 2)
	last := gw.messages[1]
	assert.Equal(t, "shipped", last.Short)
	assert.Equal(t, gelfWarning, last.Level)
	assert.Equal(t, 2.5, last.Extra["_distance"])
}

// failingHandler accepts every level and fails every write.
type failingHandler struct{}

func (failingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (failingHandler) Handle(context.Context, slog.Record) error {
	return errors.New("graylog unreachable")
}

func (h failingHandler) WithAttrs([]slog.Attr) slog.Handler { return h }

func (h failingHandler) WithGroup(string) slog.Handler { return h }

func TestMultiHandler(t *testing.T) {
	newText := func(buf *bytes.Buffer, lvl slog.Level) slog.Handler {
		return slog.NewTextHandler(buf, &slog.HandlerOptions{Level: lvl})
	}

	t.Run("fans out and skips nil", func(t *testing.T) {
		var a, b bytes.Buffer
		multi := NewMultiHandler(nil, newText(&a, slog.LevelInfo), nil, newText(&b, slog.LevelInfo))
		require.Len(t, multi.handlers, 2)

		slog.New(multi).Info("both")
		assert.Contains(t, a.String(), "both")
		assert.Contains(t, b.String(), "both")
	})

	t.Run("enabled if any output is", func(t *testing.T) {
		var buf bytes.Buffer
		ctx := context.Background()
		infoOnly := NewMultiHandler(newText(&buf, slog.LevelInfo))
		assert.False(t, infoOnly.Enabled(ctx, slog.LevelDebug))

		mixed := NewMultiHandler(newText(&buf, slog.LevelInfo), newText(&buf, slog.LevelDebug))
		assert.True(t, mixed.Enabled(ctx, slog.LevelDebug))
		assert.False(t, NewMultiHandler().Enabled(ctx, slog.LevelError))
	})

	t.Run("attrs and groups reach every output", func(t *testing.T) {
		var buf bytes.Buffer
		multi := NewMultiHandler(newText(&buf, slog.LevelInfo))
		h := multi.WithAttrs([]slog.Attr{slog.String("component", "globe")}).WithGroup("fade")
		slog.New(h).Info("faded", "t", 0.5)

		assert.Contains(t, buf.String(), "component=globe")
		assert.Contains(t, buf.String(), "fade.t=0.5")
		assert.Same(t, multi, multi.WithGroup(""))
	})

	t.Run("failure does not stop other outputs", func(t *testing.T) {
		var buf bytes.Buffer
		multi := NewMultiHandler(failingHandler{}, newText(&buf, slog.LevelInfo))
		slog.New(multi).Info("still written")

		assert.Contains(t, buf.String(), "still written")
		assert.Equal(t, uint64(1), multi.Failures())

		err := multi.Handle(context.Background(), slog.NewRecord(time.Now(), slog.LevelInfo, "direct", 0))
		assert.EqualError(t, err, "graylog unreachable")
	})

	t.Run("derived handlers share the failure count", func(t *testing.T) {
		multi := NewMultiHandler(failingHandler{})
		derived := multi.WithAttrs([]slog.Attr{slog.Int("frame", 1)}).WithGroup("g")

		slog.New(derived).Info("fails")
		assert.Equal(t, uint64(1), multi.Failures())
	})
}
