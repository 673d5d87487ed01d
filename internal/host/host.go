// Package host provides the environment a globe runs in: a frame scheduler
// and window-level event listeners, both driven from a single loop.
//
// Frame callbacks and listeners never run concurrently with each other on
// the same host. Input can be posted from any goroutine; it is delivered on
// the loop before the next frame runs.
package host

import (
	"time"
)

// EventKind identifies a window-level event.
type EventKind int

const (
	EventPointerMove EventKind = iota
	EventPointerDown
	EventPointerUp
	EventWheel
	EventResize
	EventKey
)

func (k EventKind) String() string {
	switch k {
	case EventPointerMove:
		return "pointermove"
	case EventPointerDown:
		return "pointerdown"
	case EventPointerUp:
		return "pointerup"
	case EventWheel:
		return "wheel"
	case EventResize:
		return "resize"
	case EventKey:
		return "key"
	default:
		return "unknown"
	}
}

// Event is an input or window event.
type Event struct {
	Kind EventKind
	Time time.Time

	// Pointer position in surface cells (pointer and wheel events).
	X, Y int
	// Wheel steps, positive toward the screen (zoom in).
	Delta float64
	// New surface size (resize events).
	Width, Height int
	// Key rune (key events).
	Rune rune
}

// FrameFunc is called once per requested frame with the frame time.
type FrameFunc func(now time.Time)

// Listener receives events of the kind it was registered for.
type Listener func(Event)

// FrameID identifies a pending frame request.
type FrameID uint64

// ListenerID identifies a registered listener.
type ListenerID uint64

// Host schedules frames and routes events.
type Host interface {
	// RequestFrame schedules fn for the next frame. Requests are one-shot.
	RequestFrame(fn FrameFunc) FrameID
	// CancelFrame drops a pending request. Unknown IDs are ignored.
	CancelFrame(id FrameID)
	// AddListener registers l for events of kind.
	AddListener(kind EventKind, l Listener) ListenerID
	// RemoveListener unregisters a listener. Unknown IDs are ignored.
	RemoveListener(id ListenerID)
	// ListenerCount returns the number of registered listeners.
	ListenerCount() int
	// Now returns the host clock.
	Now() time.Time
}

// Logger interface for pluggable logging.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
