package host

import (
	"sync/atomic"
	"time"
)

// Manual is a Host advanced explicitly by the caller. Frames run only on
// Step and events are delivered synchronously by Emit.
type Manual struct {
	*registry

	now       time.Time
	requested atomic.Int64
	ran       atomic.Int64
}

// NewManual creates a manual host whose clock starts at start.
func NewManual(start time.Time) *Manual {
	reg, err := newRegistry(nil)
	if err != nil {
		// the global meter is no-op unless a provider was installed
		panic(err)
	}
	return &Manual{registry: reg, now: start}
}

// Now returns the manual clock.
func (m *Manual) Now() time.Time {
	return m.now
}

// RequestFrame schedules fn and counts the request.
func (m *Manual) RequestFrame(fn FrameFunc) FrameID {
	m.requested.Add(1)
	return m.registry.RequestFrame(fn)
}

// Step advances the clock by d and runs pending frames. It returns the number
// of callbacks executed.
func (m *Manual) Step(d time.Duration) int {
	m.now = m.now.Add(d)
	n := m.runFrames(m.now)
	m.ran.Add(int64(n))
	return n
}

// Emit delivers ev to listeners immediately.
func (m *Manual) Emit(ev Event) {
	if ev.Time.IsZero() {
		ev.Time = m.now
	}
	m.dispatch(ev)
}

// FrameRequests returns how many frames have been requested.
func (m *Manual) FrameRequests() int64 {
	return m.requested.Load()
}

// FramesRun returns how many frame callbacks have executed.
func (m *Manual) FramesRun() int64 {
	return m.ran.Load()
}
