package stream

import (
	"sync"
	"time"

	ws "github.com/gorilla/websocket"
)

// client owns one connection with a single write goroutine.
type client struct {
	hub  *Hub
	conn *ws.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

func newClient(h *Hub, conn *ws.Conn) *client {
	return &client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, h.cfg.SendBuffer),
		done: make(chan struct{}),
	}
}

// enqueue is non-blocking and reports whether data was queued.
func (c *client) enqueue(data []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (c *client) writeLoop() {
	defer c.hub.wg.Done()
	for {
		select {
		case <-c.done:
			return
		case data := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.shutdown(false)
				return
			}
			if err := c.conn.WriteMessage(ws.TextMessage, data); err != nil {
				c.hub.logger.Debug("Stream write failed", "error", err)
				c.shutdown(false)
				return
			}
		}
	}
}

func (c *client) readLoop() {
	defer c.hub.wg.Done()
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			c.shutdown(false)
			return
		}
		ev, err := DecodeEvent(data, time.Now())
		if err != nil {
			c.hub.logger.Debug("Stream input ignored", "error", err)
			continue
		}
		c.hub.post(ev)
	}
}

// shutdown closes the connection once. graceful sends a close frame first.
func (c *client) shutdown(graceful bool) {
	c.once.Do(func() {
		c.hub.remove(c)
		close(c.done)
		if graceful {
			msg := ws.FormatCloseMessage(ws.CloseGoingAway, "server shutdown")
			_ = c.conn.WriteControl(ws.CloseMessage, msg, time.Now().Add(time.Second))
		}
		_ = c.conn.Close()
	})
}
