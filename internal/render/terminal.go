package render

import (
	"fmt"
	"image/color"
	"log/slog"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/meridianmaritime/globe/internal/globe"
)

const (
	// hudRows are reserved below the globe for the status line.
	hudRows = 1

	halfBlock = '▀'
)

var (
	hudColor  = tcell.NewRGBColor(140, 140, 150)
	grabColor = tcell.NewRGBColor(255, 200, 50)
)

// Terminal is a globe.Surface drawing into a tcell screen.
type Terminal struct {
	mu       sync.Mutex
	screen   tcell.Screen
	logger   *slog.Logger
	cursor   globe.Cursor
	detached bool
	frames   uint64
}

// NewTerminal wraps an initialized screen.
func NewTerminal(screen tcell.Screen, logger *slog.Logger) *Terminal {
	if logger == nil {
		logger = slog.Default()
	}
	return &Terminal{screen: screen, logger: logger}
}

// PixelSize converts a cell size to the pixel size of the globe viewport.
func PixelSize(cols, rows int) (int, int) {
	return cols, max(rows-hudRows, 0) * 2
}

// CellToPixel maps a cell position to the pixel under its upper half.
func CellToPixel(x, y int) (int, int) {
	return x, y * 2
}

// Size returns the viewport in pixels.
func (t *Terminal) Size() (int, int) {
	cols, rows := t.screen.Size()
	return PixelSize(cols, rows)
}

// SetCursor records the gate state for the status line.
func (t *Terminal) SetCursor(c globe.Cursor) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cursor = c
}

// Cursor returns the last cursor set.
func (t *Terminal) Cursor() globe.Cursor {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cursor
}

// Draw rasterizes the scene and flushes it to the screen.
func (t *Terminal) Draw(sc *globe.Scene) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.detached {
		return
	}

	cols, rows := t.screen.Size()
	w, h := PixelSize(cols, rows)
	f := Rasterize(sc, w, h)

	for row := 0; row < h/2; row++ {
		for x := 0; x < w; x++ {
			top, bottom := f.At(x, row*2), f.At(x, row*2+1)
			style := tcell.StyleDefault.Foreground(toTcell(top)).Background(toTcell(bottom))
			t.screen.SetContent(x, row, halfBlock, nil, style)
		}
	}

	for _, l := range f.Labels {
		t.drawLabel(f, l, cols, h/2)
	}

	t.drawHUD(sc, cols, rows)
	t.screen.Show()
	t.frames++
}

func (t *Terminal) drawLabel(f *Frame, l Label, cols, viewRows int) {
	row := l.Y / 2
	if row < 0 || row >= viewRows {
		return
	}
	x := l.X
	for _, r := range l.Text {
		if x >= cols {
			return
		}
		if x >= 0 {
			bg := f.At(x, row*2+1)
			if l.Fill != nil {
				bg = *l.Fill
			}
			style := tcell.StyleDefault.Foreground(toTcell(l.Color)).Background(toTcell(bg))
			t.screen.SetContent(x, row, r, nil, style)
		}
		x++
	}
}

func (t *Terminal) drawHUD(sc *globe.Scene, cols, rows int) {
	y := rows - hudRows
	if y < 0 {
		return
	}

	gate := "scroll: page"
	fg := hudColor
	if t.cursor == globe.CursorGrab {
		gate = "scroll: zoom"
		fg = grabColor
	}
	line := fmt.Sprintf(" [%s] %s  distance %.2f  visibility %.2f  drag: rotate  q: quit",
		t.cursor, gate, sc.Camera.Position.Len(), sc.Fade.Factor)

	style := tcell.StyleDefault.Foreground(fg)
	x := 0
	for _, r := range line {
		if x >= cols {
			break
		}
		t.screen.SetContent(x, y, r, nil, style)
		x++
	}
	for ; x < cols; x++ {
		t.screen.SetContent(x, y, ' ', nil, tcell.StyleDefault)
	}
}

// Detach clears the screen and stops drawing. The screen itself stays
// owned by the caller.
func (t *Terminal) Detach() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.detached {
		return
	}
	t.detached = true
	t.screen.Clear()
	t.screen.Show()
	t.logger.Debug("Terminal surface detached", "frames", t.frames)
}

// Frames returns the number of frames drawn.
func (t *Terminal) Frames() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.frames
}

func toTcell(c color.RGBA) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}
