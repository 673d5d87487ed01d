package globe

import "sync/atomic"

// PointerSample is a pointer position in normalized device coordinates,
// x right and y up, both in [-1, 1] inside the surface.
type PointerSample struct {
	X, Y float64
}

// PointerCell holds the latest pointer sample. The pointer listener writes
// it and the frame callback reads it, both on the host loop goroutine under
// Globe.mu. The cell is atomic so Scene readers on other goroutines can load
// it without the lock.
type PointerCell struct {
	v atomic.Pointer[PointerSample]
}

// Store publishes a new sample.
func (c *PointerCell) Store(s PointerSample) {
	c.v.Store(&s)
}

// Load returns the latest sample. ok is false before the first Store or
// after Clear.
func (c *PointerCell) Load() (s PointerSample, ok bool) {
	p := c.v.Load()
	if p == nil {
		return PointerSample{}, false
	}
	return *p, true
}

// Clear forgets the sample. A resize clears it since the NDC position no
// longer matches the surface.
func (c *PointerCell) Clear() {
	c.v.Store(nil)
}

// ToNDC converts a surface position to normalized device coordinates,
// sampling the center of the unit.
func ToNDC(x, y, width, height int) (PointerSample, bool) {
	if width <= 0 || height <= 0 {
		return PointerSample{}, false
	}
	return PointerSample{
		X: (float64(x)+0.5)/float64(width)*2 - 1,
		Y: -((float64(y)+0.5)/float64(height)*2 - 1),
	}, true
}
