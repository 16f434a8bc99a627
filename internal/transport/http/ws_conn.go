package http

import (
	"sync"

	"github.com/vovakirdan/roomsignal/internal/core"
)

// wsConn is the core-facing side of one WebSocket. The hub enqueues events;
// the write loop drains them.
type wsConn struct {
	id     core.ConnID
	events chan *core.Event

	mu     sync.RWMutex
	closed bool
}

func newWSConn(id core.ConnID, queueSize int) *wsConn {
	if queueSize <= 0 {
		queueSize = 64
	}
	return &wsConn{id: id, events: make(chan *core.Event, queueSize)}
}

func (c *wsConn) ID() core.ConnID { return c.id }

// Send never blocks. A slow consumer loses events rather than stalling the hub.
func (c *wsConn) Send(event *core.Event) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return core.ErrConnClosed
	}
	select {
	case c.events <- event:
		return nil
	default:
		return core.ErrQueueFull
	}
}

func (c *wsConn) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.events)
}
