package globe

import (
	"math"
	"time"
)

// NominalFrameRate converts per-frame drift steps into a rate.
const NominalFrameRate = 60.0

// CloudRotation returns the cloud shell's y rotation after elapsed time,
// advancing stepPerFrame radians per nominal frame.
func CloudRotation(elapsed time.Duration, stepPerFrame float64) float64 {
	if elapsed <= 0 {
		return 0
	}
	return stepPerFrame * elapsed.Seconds() * NominalFrameRate
}

// AtmospherePulse returns the atmosphere shell scale 1 + A·sin(ms·ω).
func AtmospherePulse(elapsed time.Duration, amplitude, omega float64) float64 {
	ms := float64(elapsed) / float64(time.Millisecond)
	return 1 + amplitude*math.Sin(ms*omega)
}

// EntryScale interpolates the group scale from start down to 1 along an
// ease-out-cubic curve. It is exactly 1 once elapsed reaches duration.
func EntryScale(elapsed, duration time.Duration, start float64) float64 {
	if duration <= 0 || elapsed >= duration {
		return 1
	}
	if elapsed <= 0 {
		return start
	}
	p := float64(elapsed) / float64(duration)
	return start + (1-start)*easeOutCubic(p)
}

func easeOutCubic(p float64) float64 {
	q := 1 - p
	return 1 - q*q*q
}
