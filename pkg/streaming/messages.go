// Package streaming defines the JSON messages exchanged with remote globe
// viewers over WebSocket.
package streaming

import (
	"encoding/json"
)

// Message type constants matching the streaming protocol.
const (
	// server to client
	TypeHello   = "hello"
	TypeFrame   = "frame"
	TypeSession = "session"

	// client to server
	TypePointerMove = "pointer_move"
	TypePointerDown = "pointer_down"
	TypePointerUp   = "pointer_up"
	TypeWheel       = "wheel"
	TypeResize      = "resize"
)

// Envelope wraps every message.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// HelloPayload is sent once after a client connects.
type HelloPayload struct {
	Variant string `json:"variant"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
}

// PointerPayload carries a pointer position in surface pixels.
type PointerPayload struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// WheelPayload carries one wheel step at a pointer position. Positive
// deltas zoom in.
type WheelPayload struct {
	X     int     `json:"x"`
	Y     int     `json:"y"`
	Delta float64 `json:"delta"`
}

// MaxSurfaceSide is the largest width or height a client may request.
const MaxSurfaceSide = 4096

// ResizePayload carries a new surface size in pixels. Both sides must be in
// 1..MaxSurfaceSide.
type ResizePayload struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}
