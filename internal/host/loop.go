package host

import (
	"context"
	"fmt"
	"time"

	"github.com/meridianmaritime/globe/internal/queue"
)

// DefaultFramePeriod is the frame period used when none is configured.
const DefaultFramePeriod = time.Second / 30

// inboxLimit caps queued input between frames; the oldest events go first.
const inboxLimit = 1024

// Loop is a Host driven by a fixed-period ticker. Run owns the loop
// goroutine; events posted from other goroutines are queued and delivered
// on the loop ahead of the next frame.
type Loop struct {
	*registry

	period time.Duration
	clock  func() time.Time
	inbox  *queue.Queue[Event]
	wake   chan struct{}
}

// NewLoop creates a loop that ticks every period.
func NewLoop(period time.Duration, logger Logger) (*Loop, error) {
	reg, err := newRegistry(logger)
	if err != nil {
		return nil, fmt.Errorf("creating host registry: %w", err)
	}
	if period <= 0 {
		period = DefaultFramePeriod
	}
	return &Loop{
		registry: reg,
		period:   period,
		clock:    time.Now,
		inbox:    queue.NewBounded[Event](inboxLimit),
		wake:     make(chan struct{}, 1),
	}, nil
}

// Now returns the loop clock.
func (l *Loop) Now() time.Time {
	return l.clock()
}

// Post queues an event for delivery on the loop goroutine. Safe for
// concurrent use.
func (l *Loop) Post(ev Event) {
	if ev.Time.IsZero() {
		ev.Time = l.clock()
	}
	if ev.Kind == EventPointerMove {
		// only the latest position matters to the next frame
		l.inbox.PushOrReplace(ev, func(last Event) bool { return last.Kind == EventPointerMove })
	} else {
		l.inbox.Push(ev)
	}
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// DroppedEvents returns how many posted events were discarded because the
// inbox was full.
func (l *Loop) DroppedEvents() uint64 {
	return l.inbox.Dropped()
}

// Run delivers events and frames until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.period)
	defer ticker.Stop()

	l.logger.Info("Host loop started", "period", l.period)
	defer l.logger.Info("Host loop stopped")

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-l.wake:
			l.drain()
		case <-ticker.C:
			l.drain()
			l.runFrames(l.clock())
		}
	}
}

func (l *Loop) drain() {
	if l.inbox.Empty() {
		return
	}
	for _, ev := range l.inbox.GetAndEmpty() {
		l.dispatch(ev)
	}
}
