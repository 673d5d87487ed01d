package globe

import "time"

// FrameStats is a snapshot of one frame.
type FrameStats struct {
	Frame           uint64        `json:"frame"`
	Time            time.Time     `json:"time"`
	Elapsed         time.Duration `json:"elapsed"`
	State           State         `json:"state"`
	Distance        float64       `json:"distance"`
	Fade            Fade          `json:"fade"`
	Hover           bool          `json:"hover"`
	GroupScale      float64       `json:"groupScale"`
	CloudRotation   float64       `json:"cloudRotation"`
	AtmosphereScale float64       `json:"atmosphereScale"`
}

// SessionStats summarizes a globe from mount to dispose.
type SessionStats struct {
	Variant      Variant   `json:"variant"`
	Started      time.Time `json:"started"`
	Ended        time.Time `json:"ended"`
	Frames       uint64    `json:"frames"`
	HoverFrames  uint64    `json:"hoverFrames"`
	GateToggles  uint64    `json:"gateToggles"`
	ZoomAccepted uint64    `json:"zoomAccepted"`
	ZoomRejected uint64    `json:"zoomRejected"`
	MinDistance  float64   `json:"minDistance"`
}

// Duration returns how long the globe was mounted.
func (s SessionStats) Duration() time.Duration {
	return s.Ended.Sub(s.Started)
}

// FrameObserver receives frame snapshots on the host loop. Implementations
// must not block and must not dispose the globe from inside a callback.
type FrameObserver interface {
	ObserveFrame(FrameStats)
	ObserveSession(SessionStats)
}
