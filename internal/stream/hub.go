// Package stream mirrors a running globe to remote viewers over WebSocket.
// Frame snapshots are broadcast to every client; pointer and wheel input
// from clients is posted back to the host loop.
package stream

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	ws "github.com/gorilla/websocket"

	"github.com/meridianmaritime/globe/internal/globe"
	"github.com/meridianmaritime/globe/internal/host"
	"github.com/meridianmaritime/globe/pkg/streaming"
)

const (
	defaultSendBuffer = 64
	writeWait         = 10 * time.Second
	maxMessageSize    = 4096
)

// Poster accepts input events from client goroutines. *host.Loop
// satisfies it.
type Poster interface {
	Post(ev host.Event)
}

// Config configures a Hub.
type Config struct {
	// Secret must match the "secret" query parameter when set.
	Secret  string
	Variant globe.Variant
	// SendBuffer is the per-client queue; frames are dropped when full.
	SendBuffer int
	// SampleEvery broadcasts every n-th frame. Zero or one sends all.
	SampleEvery uint64
	// Size reports the surface size sent in the hello message.
	Size func() (int, int)
}

// Hub is a globe.FrameObserver and an http.Handler.
type Hub struct {
	cfg      Config
	poster   Poster
	logger   *slog.Logger
	upgrader ws.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool
	wg      sync.WaitGroup

	dropped atomic.Uint64
}

// NewHub returns a hub posting client input to poster. poster may be nil
// for a view-only stream.
func NewHub(cfg Config, poster Poster, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = defaultSendBuffer
	}
	cfg.SampleEvery = max(cfg.SampleEvery, 1)
	return &Hub{
		cfg:     cfg,
		poster:  poster,
		logger:  logger,
		clients: make(map[*client]struct{}),
		upgrader: ws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// ServeHTTP upgrades the request and registers the client.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.cfg.Secret != "" && r.URL.Query().Get("secret") != h.cfg.Secret {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", "error", err, "remote", r.RemoteAddr)
		return
	}
	conn.SetReadLimit(maxMessageSize)

	c := newClient(h, conn)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		_ = conn.Close()
		return
	}
	h.clients[c] = struct{}{}
	h.wg.Add(2)
	h.mu.Unlock()

	hello := streaming.HelloPayload{Variant: string(h.cfg.Variant)}
	if h.cfg.Size != nil {
		hello.Width, hello.Height = h.cfg.Size()
	}
	if data, err := marshalEnvelope(streaming.TypeHello, hello); err == nil {
		c.enqueue(data)
	}

	h.logger.Info("Stream client connected", "remote", r.RemoteAddr, "clients", h.Clients())

	go c.writeLoop()
	go c.readLoop()
}

// ObserveFrame implements globe.FrameObserver.
func (h *Hub) ObserveFrame(s globe.FrameStats) {
	if s.Frame%h.cfg.SampleEvery != 0 {
		return
	}
	h.broadcast(streaming.TypeFrame, s)
}

// ObserveSession implements globe.FrameObserver.
func (h *Hub) ObserveSession(s globe.SessionStats) {
	h.broadcast(streaming.TypeSession, s)
}

func (h *Hub) broadcast(msgType string, payload any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.clients) == 0 {
		return
	}

	data, err := marshalEnvelope(msgType, payload)
	if err != nil {
		h.logger.Error("Stream marshal failed", "type", msgType, "error", err)
		return
	}
	for c := range h.clients {
		if !c.enqueue(data) {
			h.dropped.Add(1)
		}
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Dropped returns the number of messages dropped because a client was slow.
func (h *Hub) Dropped() uint64 {
	return h.dropped.Load()
}

// Close disconnects every client and waits for their goroutines.
func (h *Hub) Close() error {
	h.mu.Lock()
	h.closed = true
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		c.shutdown(true)
	}
	h.wg.Wait()
	return nil
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
}

func (h *Hub) post(ev host.Event) {
	if h.poster != nil {
		h.poster.Post(ev)
	}
}

// marshalEnvelope builds a JSON-encoded Envelope from a message type and payload.
func marshalEnvelope(msgType string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", msgType, err)
	}
	env := streaming.Envelope{Type: msgType, Payload: raw}
	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("marshal %s envelope: %w", msgType, err)
	}
	return data, nil
}

// DecodeEvent converts a client message into a host event stamped with now.
func DecodeEvent(data []byte, now time.Time) (host.Event, error) {
	var env streaming.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return host.Event{}, fmt.Errorf("decode envelope: %w", err)
	}

	switch env.Type {
	case streaming.TypePointerMove, streaming.TypePointerDown, streaming.TypePointerUp:
		var p streaming.PointerPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return host.Event{}, fmt.Errorf("decode %s: %w", env.Type, err)
		}
		kind := host.EventPointerMove
		switch env.Type {
		case streaming.TypePointerDown:
			kind = host.EventPointerDown
		case streaming.TypePointerUp:
			kind = host.EventPointerUp
		}
		return host.Event{Kind: kind, Time: now, X: p.X, Y: p.Y}, nil

	case streaming.TypeWheel:
		var p streaming.WheelPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return host.Event{}, fmt.Errorf("decode %s: %w", env.Type, err)
		}
		return host.Event{Kind: host.EventWheel, Time: now, X: p.X, Y: p.Y, Delta: p.Delta}, nil

	case streaming.TypeResize:
		var p streaming.ResizePayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return host.Event{}, fmt.Errorf("decode %s: %w", env.Type, err)
		}
		if p.Width <= 0 || p.Height <= 0 || p.Width > streaming.MaxSurfaceSide || p.Height > streaming.MaxSurfaceSide {
			return host.Event{}, fmt.Errorf("decode %s: size %dx%d out of range", env.Type, p.Width, p.Height)
		}
		return host.Event{Kind: host.EventResize, Time: now, Width: p.Width, Height: p.Height}, nil
	}
	return host.Event{}, fmt.Errorf("unknown message type %q", env.Type)
}
