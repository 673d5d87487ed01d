package logging

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// HostLogger adapts zerolog.Logger to the host.Logger interface.
type HostLogger struct {
	logger zerolog.Logger
}

// NewHostLogger creates a new HostLogger wrapping a zerolog.Logger.
func NewHostLogger(logger zerolog.Logger) *HostLogger {
	return &HostLogger{logger: logger}
}

// NewConsoleLogger builds a human readable zerolog logger on out, used for
// the frame loop where allocation per record matters.
func NewConsoleLogger(out io.Writer, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
		NoColor:    true,
	}).Level(lvl).With().Timestamp().Str("component", "host").Logger()
}

// Debug logs a debug message with optional key-value pairs.
func (l *HostLogger) Debug(msg string, keysAndValues ...any) {
	l.logger.Debug().Fields(toFields(keysAndValues)).Msg(msg)
}

// Info logs an info message with optional key-value pairs.
func (l *HostLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Info().Fields(toFields(keysAndValues)).Msg(msg)
}

// Error logs an error message with optional key-value pairs.
func (l *HostLogger) Error(msg string, keysAndValues ...any) {
	l.logger.Error().Fields(toFields(keysAndValues)).Msg(msg)
}

// toFields converts key-value pairs to a map for zerolog.
func toFields(keysAndValues []any) map[string]any {
	fields := make(map[string]any, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		if key, ok := keysAndValues[i].(string); ok {
			fields[key] = keysAndValues[i+1]
		}
	}
	return fields
}
