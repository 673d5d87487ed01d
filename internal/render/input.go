package render

import (
	"github.com/gdamore/tcell/v2"

	"github.com/meridianmaritime/globe/internal/host"
)

// Poster accepts events from the input goroutine.
type Poster interface {
	Post(ev host.Event)
}

// Input translates tcell events into host events. It tracks the primary
// button so presses and releases become separate events.
type Input struct {
	down bool
}

// Translate converts one tcell event. quit is true for q, Escape and Ctrl-C.
func (in *Input) Translate(ev tcell.Event) (out []host.Event, quit bool) {
	switch e := ev.(type) {
	case *tcell.EventMouse:
		cx, cy := e.Position()
		x, y := CellToPixel(cx, cy)
		btn := e.Buttons()

		out = append(out, host.Event{Kind: host.EventPointerMove, Time: e.When(), X: x, Y: y})

		pressed := btn&tcell.Button1 != 0
		switch {
		case pressed && !in.down:
			out = append(out, host.Event{Kind: host.EventPointerDown, Time: e.When(), X: x, Y: y})
		case !pressed && in.down:
			out = append(out, host.Event{Kind: host.EventPointerUp, Time: e.When(), X: x, Y: y})
		}
		in.down = pressed

		if btn&tcell.WheelUp != 0 {
			out = append(out, host.Event{Kind: host.EventWheel, Time: e.When(), X: x, Y: y, Delta: 1})
		}
		if btn&tcell.WheelDown != 0 {
			out = append(out, host.Event{Kind: host.EventWheel, Time: e.When(), X: x, Y: y, Delta: -1})
		}

	case *tcell.EventResize:
		w, h := PixelSize(e.Size())
		out = append(out, host.Event{Kind: host.EventResize, Time: e.When(), Width: w, Height: h})

	case *tcell.EventKey:
		switch e.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return nil, true
		case tcell.KeyRune:
			if e.Rune() == 'q' {
				return nil, true
			}
			out = append(out, host.Event{Kind: host.EventKey, Time: e.When(), Rune: e.Rune()})
		}
	}
	return out, false
}

// Pump reads screen events until the screen is finalized or the user asks
// to quit, posting translated events to p. It runs on its own goroutine and
// returns after calling quit at most once.
func Pump(screen tcell.Screen, p Poster, quit func()) {
	var in Input
	for {
		ev := screen.PollEvent()
		if ev == nil {
			return
		}
		events, stop := in.Translate(ev)
		for _, e := range events {
			p.Post(e)
		}
		if stop {
			quit()
			return
		}
	}
}
