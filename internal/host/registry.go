package host

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/meridianmaritime/globe/internal/host"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

type listenerEntry struct {
	id   ListenerID
	kind EventKind
	fn   Listener
}

// registry holds pending frame requests and listeners. It is shared by the
// Loop and Manual hosts; the caller decides which goroutine runs callbacks.
type registry struct {
	mu        sync.Mutex
	nextFrame FrameID
	frames    map[FrameID]FrameFunc
	nextID    ListenerID
	listeners []listenerEntry

	logger Logger

	// OTEL metrics
	dispatched metric.Int64Counter
	framesRun  metric.Int64Counter
	listenerN  metric.Int64ObservableGauge
}

func newRegistry(logger Logger) (*registry, error) {
	if logger == nil {
		logger = nopLogger{}
	}
	r := &registry{
		frames: make(map[FrameID]FrameFunc),
		logger: logger,
	}

	m := meter()

	var err error

	r.dispatched, err = m.Int64Counter(
		"host.events.dispatched",
		metric.WithDescription("Total events delivered to listeners"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating dispatched counter: %w", err)
	}

	r.framesRun, err = m.Int64Counter(
		"host.frames.run",
		metric.WithDescription("Total frame callbacks executed"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating frames counter: %w", err)
	}

	r.listenerN, err = m.Int64ObservableGauge(
		"host.listeners",
		metric.WithDescription("Current number of registered listeners"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating listener gauge: %w", err)
	}

	_, err = m.RegisterCallback(
		func(ctx context.Context, o metric.Observer) error {
			o.ObserveInt64(r.listenerN, int64(r.ListenerCount()))
			return nil
		},
		r.listenerN,
	)
	if err != nil {
		return nil, fmt.Errorf("registering listener callback: %w", err)
	}

	return r, nil
}

// RequestFrame schedules fn for the next frame.
func (r *registry) RequestFrame(fn FrameFunc) FrameID {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextFrame++
	r.frames[r.nextFrame] = fn
	return r.nextFrame
}

// CancelFrame drops a pending frame request.
func (r *registry) CancelFrame(id FrameID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.frames, id)
}

// PendingFrames returns the number of frame requests waiting for the next frame.
func (r *registry) PendingFrames() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.frames)
}

// AddListener registers l for events of kind.
func (r *registry) AddListener(kind EventKind, l Listener) ListenerID {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	r.listeners = append(r.listeners, listenerEntry{id: r.nextID, kind: kind, fn: l})
	r.logger.Debug("Listener added", "kind", kind.String(), "id", r.nextID)
	return r.nextID
}

// RemoveListener unregisters a listener.
func (r *registry) RemoveListener(id ListenerID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.listeners {
		if e.id == id {
			r.listeners = append(r.listeners[:i], r.listeners[i+1:]...)
			r.logger.Debug("Listener removed", "kind", e.kind.String(), "id", id)
			return
		}
	}
}

// ListenerCount returns the number of registered listeners.
func (r *registry) ListenerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.listeners)
}

// dispatch delivers ev to every listener registered for its kind. Listeners
// removed by an earlier listener in the same dispatch are skipped.
func (r *registry) dispatch(ev Event) {
	r.mu.Lock()
	targets := make([]ListenerID, 0, len(r.listeners))
	for _, e := range r.listeners {
		if e.kind == ev.Kind {
			targets = append(targets, e.id)
		}
	}
	r.mu.Unlock()

	for _, id := range targets {
		fn := r.lookup(id)
		if fn == nil {
			continue
		}
		fn(ev)
		r.dispatched.Add(context.Background(), 1,
			metric.WithAttributes(attribute.String("kind", ev.Kind.String())))
	}
}

func (r *registry) lookup(id ListenerID) Listener {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.listeners {
		if e.id == id {
			return e.fn
		}
	}
	return nil
}

// runFrames runs every request pending at call time in request order.
// Requests made by the callbacks themselves wait for the following frame.
func (r *registry) runFrames(now time.Time) int {
	r.mu.Lock()
	if len(r.frames) == 0 {
		r.mu.Unlock()
		return 0
	}
	ids := make([]FrameID, 0, len(r.frames))
	for id := range r.frames {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	r.mu.Unlock()

	ran := 0
	for _, id := range ids {
		r.mu.Lock()
		fn, ok := r.frames[id]
		delete(r.frames, id)
		r.mu.Unlock()
		if !ok {
			// cancelled by an earlier callback in this frame
			continue
		}
		fn(now)
		ran++
	}
	r.framesRun.Add(context.Background(), int64(ran))
	return ran
}
