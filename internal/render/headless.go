package render

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"log/slog"
	"sync"

	"github.com/meridianmaritime/globe/internal/globe"
)

// Headless is a globe.Surface that rasterizes into memory. It backs the
// stream server and snapshots.
type Headless struct {
	mu       sync.Mutex
	width    int
	height   int
	cursor   globe.Cursor
	last     *Frame
	frames   uint64
	detached bool
	logger   *slog.Logger
}

// NewHeadless returns a surface of the given pixel size.
func NewHeadless(width, height int, logger *slog.Logger) *Headless {
	if logger == nil {
		logger = slog.Default()
	}
	width, height = clampSize(width, height)
	return &Headless{width: width, height: height, logger: logger}
}

func clampSize(width, height int) (int, int) {
	return max(0, min(width, MaxSide)), max(0, min(height, MaxSide))
}

// Size returns the surface size in pixels.
func (h *Headless) Size() (int, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.width, h.height
}

// Resize changes the surface size and returns the size applied. Sides above
// MaxSide are clamped. A non-positive side leaves the surface unchanged and
// the flag is false. The globe learns of the change through a resize event posted
// by the caller, which should carry the returned size.
func (h *Headless) Resize(width, height int) (int, int, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if width <= 0 || height <= 0 {
		h.logger.Debug("Headless resize ignored", "width", width, "height", height)
		return h.width, h.height, false
	}
	h.width, h.height = clampSize(width, height)
	return h.width, h.height, true
}

// SetCursor records the gate state.
func (h *Headless) SetCursor(c globe.Cursor) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cursor = c
}

// Cursor returns the last cursor set.
func (h *Headless) Cursor() globe.Cursor {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cursor
}

// Draw rasterizes the scene and keeps the frame.
func (h *Headless) Draw(sc *globe.Scene) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.detached || h.width <= 0 || h.height <= 0 {
		return
	}
	h.last = Rasterize(sc, h.width, h.height)
	h.frames++
}

// Detach stops drawing. The last frame stays readable.
func (h *Headless) Detach() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.detached {
		return
	}
	h.detached = true
	h.logger.Debug("Headless surface detached", "frames", h.frames)
}

// Frames returns the number of frames drawn.
func (h *Headless) Frames() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.frames
}

// LastFrame returns the most recent frame, or nil before the first draw.
func (h *Headless) LastFrame() *Frame {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.last
}

// Image converts the frame to an RGBA image. Labels are not drawn.
func (f *Frame) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			c := f.At(x, y)
			c.A = 255
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

// WritePNG encodes the last frame.
func (h *Headless) WritePNG(w io.Writer) error {
	f := h.LastFrame()
	if f == nil {
		return fmt.Errorf("no frame drawn yet")
	}
	if err := png.Encode(w, f.Image()); err != nil {
		return fmt.Errorf("encoding frame: %w", err)
	}
	return nil
}
