// Package monitor keeps a status file describing the running globe.
package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/meridianmaritime/globe/internal/globe"
)

// DefaultInterval is how often the status file is rewritten.
const DefaultInterval = time.Second

// Counter reports a named runtime counter such as dropped input events.
type Counter func() uint64

// Dependencies holds all dependencies for the monitor service
type Dependencies struct {
	Logger *slog.Logger
	// StatusPath is rewritten on every tick. Empty disables the file.
	StatusPath string
	Interval   time.Duration
	Counters   map[string]Counter
}

// Status is the content of the status file.
type Status struct {
	Time     time.Time           `json:"time"`
	Frame    *globe.FrameStats   `json:"frame,omitempty"`
	Session  *globe.SessionStats `json:"session,omitempty"`
	Counters map[string]uint64   `json:"counters,omitempty"`
}

// Service records the latest frame and session and publishes them
// periodically. It is a globe.FrameObserver.
type Service struct {
	deps Dependencies

	mu        sync.RWMutex
	frame     *globe.FrameStats
	session   *globe.SessionStats
	isRunning bool
	done      chan struct{}
}

// NewService creates a new monitor service
func NewService(deps Dependencies) *Service {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Interval <= 0 {
		deps.Interval = DefaultInterval
	}
	return &Service{deps: deps}
}

// ObserveFrame keeps the latest frame.
func (s *Service) ObserveFrame(f globe.FrameStats) {
	s.mu.Lock()
	s.frame = &f
	s.mu.Unlock()
}

// ObserveSession keeps the session summary written at dispose.
func (s *Service) ObserveSession(st globe.SessionStats) {
	s.mu.Lock()
	s.session = &st
	s.mu.Unlock()
}

// IsRunning returns whether the status loop is running
func (s *Service) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Status returns the current status.
func (s *Service) Status(now time.Time) Status {
	s.mu.RLock()
	st := Status{Time: now, Frame: s.frame, Session: s.session}
	s.mu.RUnlock()

	if len(s.deps.Counters) > 0 {
		st.Counters = make(map[string]uint64, len(s.deps.Counters))
		for name, c := range s.deps.Counters {
			st.Counters[name] = c()
		}
	}
	return st
}

// WriteStatus encodes the current status to w.
func (s *Service) WriteStatus(w io.Writer, now time.Time) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s.Status(now)); err != nil {
		return fmt.Errorf("encoding status: %w", err)
	}
	return nil
}

// Start runs the status loop until ctx is canceled. The file is written
// once more on the way out so it holds the session summary.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	var statusFile *os.File
	if s.deps.StatusPath != "" {
		f, err := os.Create(s.deps.StatusPath)
		if err != nil {
			s.mu.Unlock()
			return fmt.Errorf("creating status file: %w", err)
		}
		statusFile = f
	}
	s.isRunning = true
	s.done = make(chan struct{})
	s.mu.Unlock()

	go func() {
		defer func() {
			if statusFile != nil {
				s.rewrite(statusFile)
				_ = statusFile.Close()
			}
			s.mu.Lock()
			s.isRunning = false
			close(s.done)
			s.mu.Unlock()
		}()

		s.deps.Logger.Debug("Status monitor started", "path", s.deps.StatusPath, "interval", s.deps.Interval)
		ticker := time.NewTicker(s.deps.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if statusFile != nil {
					s.rewrite(statusFile)
				}
			}
		}
	}()
	return nil
}

// Wait blocks until the loop started by Start has exited.
func (s *Service) Wait() {
	s.mu.RLock()
	done := s.done
	s.mu.RUnlock()
	if done != nil {
		<-done
	}
}

func (s *Service) rewrite(f *os.File) {
	if err := f.Truncate(0); err != nil {
		s.deps.Logger.Error("Error truncating status file", "error", err)
		return
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		s.deps.Logger.Error("Error rewinding status file", "error", err)
		return
	}
	if err := s.WriteStatus(f, time.Now()); err != nil {
		s.deps.Logger.Error("Error writing status file", "error", err)
	}
}
