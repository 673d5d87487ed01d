// Package globe mounts the interactive Earth globe on a host and surface.
//
// Initialize builds the scene synchronously, registers input listeners on
// the host and schedules the frame loop. Every frame runs the zoom gate,
// the orbit controller, the distance fade and the idle animation, then
// draws. The returned DisposeFunc tears everything down exactly once.
package globe

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/meridianmaritime/globe/internal/host"
)

// ErrNoSurface is returned when Initialize is given no surface to draw on.
var ErrNoSurface = errors.New("no surface to mount the globe on")

// Surface is what the globe draws into. Units are square pixels; pointer
// events carry positions in the same units.
type Surface interface {
	Size() (width, height int)
	Draw(s *Scene)
	SetCursor(c Cursor)
	Detach()
}

// State is the lifecycle stage of a globe.
type State int32

const (
	StateConstructing State = iota
	StateAnimatingEntry
	StateSteady
	StateDisposed
)

func (s State) String() string {
	switch s {
	case StateConstructing:
		return "constructing"
	case StateAnimatingEntry:
		return "animating-entry"
	case StateSteady:
		return "steady"
	case StateDisposed:
		return "disposed"
	default:
		return "unknown"
	}
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Dependencies are the collaborators of a globe instance.
type Dependencies struct {
	Logger    *slog.Logger
	Textures  TextureLoader
	Observers []FrameObserver
	Variant   Variant
}

// DisposeFunc tears the globe down. Calls after the first are no-ops.
type DisposeFunc func()

// dragRadiansPerHeight is the orbit angle for a drag across the full height.
const dragRadiansPerHeight = 2 * math.Pi

// Globe is one mounted globe. All fields are owned by the host loop; mu
// serialises Dispose when it is called from another goroutine.
type Globe struct {
	mu sync.Mutex

	host    host.Host
	surface Surface
	opts    Options
	deps    Dependencies
	log     *slog.Logger
	metrics *instruments

	scene   *Scene
	pointer PointerCell
	width   int
	height  int

	state     State
	mountedAt time.Time
	lastFrame time.Time
	frameID   host.FrameID
	scheduled bool
	listeners []host.ListenerID

	dragging  bool
	dragX     int
	dragY     int
	lastHover bool

	stats       SessionStats
	disposeOnce sync.Once
}

// Initialize builds a globe on s and starts its frame loop on h. With a nil
// surface nothing is registered, the handle is inert and ErrNoSurface is
// returned alongside a no-op DisposeFunc.
func Initialize(h host.Host, s Surface, opts Options, deps Dependencies) (*FrameHandle, DisposeFunc, error) {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if s == nil {
		deps.Logger.Debug("Globe mount skipped", "reason", ErrNoSurface)
		return &FrameHandle{}, func() {}, ErrNoSurface
	}
	if err := opts.Validate(); err != nil {
		return &FrameHandle{}, func() {}, err
	}
	metrics, err := newInstruments()
	if err != nil {
		return &FrameHandle{}, func() {}, fmt.Errorf("creating globe metrics: %w", err)
	}

	g := &Globe{
		host:      h,
		surface:   s,
		opts:      opts,
		deps:      deps,
		log:       deps.Logger.With("component", "globe", "variant", string(deps.Variant)),
		metrics:   metrics,
		state:     StateConstructing,
		mountedAt: h.Now(),
	}
	g.lastFrame = g.mountedAt

	g.width, g.height = s.Size()
	aspect := 1.0
	if g.height > 0 && g.width > 0 {
		aspect = float64(g.width) / float64(g.height)
	}
	g.scene = NewScene(opts, aspect, deps.Textures)

	g.stats = SessionStats{
		Variant:     deps.Variant,
		Started:     g.mountedAt,
		MinDistance: g.scene.Camera.Position.Len(),
	}

	g.listeners = []host.ListenerID{
		h.AddListener(host.EventPointerMove, g.onPointerMove),
		h.AddListener(host.EventPointerDown, g.onPointerDown),
		h.AddListener(host.EventPointerUp, g.onPointerUp),
		h.AddListener(host.EventWheel, g.onWheel),
		h.AddListener(host.EventResize, g.onResize),
	}

	if opts.EntryAnimation {
		g.state = StateAnimatingEntry
	} else {
		g.state = StateSteady
	}
	g.schedule()

	g.log.Info("Globe mounted",
		"state", g.state.String(),
		"markers", len(g.scene.Group.Markers),
		"brand", g.scene.Group.Brand != nil,
		"width", g.width,
		"height", g.height)

	return &FrameHandle{g: g}, g.dispose, nil
}

// State returns the lifecycle stage.
func (g *Globe) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Scene returns the scene graph. It must only be read on the host loop.
func (g *Globe) Scene() *Scene {
	return g.scene
}

func (g *Globe) schedule() {
	if g.scheduled || g.state == StateDisposed {
		return
	}
	g.frameID = g.host.RequestFrame(g.frame)
	g.scheduled = true
}

func (g *Globe) unschedule() {
	if !g.scheduled {
		return
	}
	g.host.CancelFrame(g.frameID)
	g.scheduled = false
}

func (g *Globe) frame(now time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.scheduled = false
	if g.state == StateDisposed {
		return
	}
	g.step(now)
	g.schedule()
}

// step runs one frame of the steady-state loop.
func (g *Globe) step(now time.Time) {
	sc := g.scene
	grp := sc.Group
	elapsed := now.Sub(g.mountedAt)
	dt := now.Sub(g.lastFrame).Seconds()
	g.lastFrame = now

	if g.state == StateAnimatingEntry {
		grp.Scale = EntryScale(elapsed, g.opts.EntryDuration, g.opts.EntryStartScale)
		if elapsed >= g.opts.EntryDuration {
			grp.Scale = 1
			g.state = StateSteady
			g.log.Debug("Entry animation finished", "elapsed", elapsed)
		}
	}

	hover := sc.PointerOverGlobe(g.pointer.Load())
	sc.Hover = hover
	sc.Controller.ZoomEnabled = hover
	cursor := CursorDefault
	if hover {
		cursor = CursorGrab
	}
	g.surface.SetCursor(cursor)
	if hover != g.lastHover {
		g.stats.GateToggles++
		g.metrics.recordToggle(hover)
		g.lastHover = hover
	}

	sc.Camera.Position = sc.Controller.Update(dt)
	distance := sc.Camera.Position.Len()
	fade := ComputeFade(distance, g.opts)
	sc.Fade = fade
	grp.Clouds.Material.Opacity = fade.CloudOpacity
	grp.Atmosphere.Material.Opacity = fade.AtmosphereOpacity
	if grp.Brand != nil {
		grp.Brand.Place(fade.BrandLonOffset, fade.BrandScale)
	}

	grp.Clouds.Rotation[1] = CloudRotation(elapsed, g.opts.CloudDriftPerFrame)
	grp.Atmosphere.Scale = AtmospherePulse(elapsed, g.opts.PulseAmplitude, g.opts.PulseFrequency)

	g.surface.Draw(sc)

	g.stats.Frames++
	if hover {
		g.stats.HoverFrames++
	}
	g.stats.MinDistance = math.Min(g.stats.MinDistance, distance)
	g.metrics.recordFrame(g.deps.Variant, fade)

	if len(g.deps.Observers) == 0 {
		return
	}
	fs := FrameStats{
		Frame:           g.stats.Frames,
		Time:            now,
		Elapsed:         elapsed,
		State:           g.state,
		Distance:        distance,
		Fade:            fade,
		Hover:           hover,
		GroupScale:      grp.Scale,
		CloudRotation:   grp.Clouds.Rotation[1],
		AtmosphereScale: grp.Atmosphere.Scale,
	}
	for _, o := range g.deps.Observers {
		o.ObserveFrame(fs)
	}
}

func (g *Globe) onPointerMove(ev host.Event) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if sample, ok := ToNDC(ev.X, ev.Y, g.width, g.height); ok {
		g.pointer.Store(sample)
	}
	if g.dragging && g.height > 0 {
		dx := float64(ev.X - g.dragX)
		dy := float64(ev.Y - g.dragY)
		h := float64(g.height)
		g.scene.Controller.Rotate(dragRadiansPerHeight*dx/h, dragRadiansPerHeight*dy/h)
		g.dragX, g.dragY = ev.X, ev.Y
	}
}

func (g *Globe) onPointerDown(ev host.Event) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.dragging = true
	g.dragX, g.dragY = ev.X, ev.Y
}

func (g *Globe) onPointerUp(host.Event) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.dragging = false
}

func (g *Globe) onWheel(ev host.Event) {
	g.mu.Lock()
	defer g.mu.Unlock()

	accepted := g.scene.Controller.Zoom(ev.Delta)
	if accepted {
		g.stats.ZoomAccepted++
	} else {
		g.stats.ZoomRejected++
	}
	g.metrics.recordZoom(accepted)
}

func (g *Globe) onResize(ev host.Event) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.scene.SetAspect(ev.Width, ev.Height) {
		g.log.Debug("Resize ignored", "width", ev.Width, "height", ev.Height)
		return
	}
	g.width, g.height = ev.Width, ev.Height
	g.pointer.Clear()
}

func (g *Globe) dispose() {
	g.disposeOnce.Do(func() {
		g.mu.Lock()
		defer g.mu.Unlock()

		g.unschedule()
		g.state = StateDisposed
		for _, id := range g.listeners {
			g.host.RemoveListener(id)
		}
		g.listeners = nil
		released := g.scene.Dispose()
		g.surface.Detach()

		g.stats.Ended = g.host.Now()
		for _, o := range g.deps.Observers {
			o.ObserveSession(g.stats)
		}

		g.log.Info("Globe disposed",
			"frames", g.stats.Frames,
			"texturesReleased", released,
			"duration", g.stats.Duration())
	})
}

// FrameHandle pauses and resumes the frame loop without disposing.
type FrameHandle struct {
	g *Globe
}

// Globe returns the mounted globe, or nil for an inert handle.
func (f *FrameHandle) Globe() *Globe {
	if f == nil {
		return nil
	}
	return f.g
}

// Cancel stops requesting frames. Listeners stay registered.
func (f *FrameHandle) Cancel() {
	if f == nil || f.g == nil {
		return
	}
	f.g.mu.Lock()
	defer f.g.mu.Unlock()
	f.g.unschedule()
}

// Resume restarts the frame loop after Cancel. It does nothing once the
// globe is disposed.
func (f *FrameHandle) Resume() {
	if f == nil || f.g == nil {
		return
	}
	f.g.mu.Lock()
	defer f.g.mu.Unlock()
	f.g.lastFrame = f.g.host.Now()
	f.g.schedule()
}

// Active reports whether a frame is pending.
func (f *FrameHandle) Active() bool {
	if f == nil || f.g == nil {
		return false
	}
	f.g.mu.Lock()
	defer f.g.mu.Unlock()
	return f.g.scheduled
}
