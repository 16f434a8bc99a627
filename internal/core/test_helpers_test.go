package core

import (
	"sync"
	"testing"
	"time"
)

// fakeConn records every event enqueued on it.
type fakeConn struct {
	id     ConnID
	mu     sync.Mutex
	events []*Event
	full   bool
}

func newFakeConn(id string) *fakeConn {
	return &fakeConn{id: ConnID(id)}
}

func (c *fakeConn) ID() ConnID { return c.id }

func (c *fakeConn) Send(ev *Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.full {
		return ErrQueueFull
	}
	c.events = append(c.events, ev)
	return nil
}

// drain returns and forgets the recorded events.
func (c *fakeConn) drain() []*Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.events
	c.events = nil
	return out
}

func (c *fakeConn) ofKind(kind EventKind) []*Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []*Event
	for _, ev := range c.events {
		if ev.Kind == kind {
			out = append(out, ev)
		}
	}
	return out
}

func mustEvent(t *testing.T, c *fakeConn, kind EventKind) *Event {
	t.Helper()

	evs := c.ofKind(kind)
	if len(evs) == 0 {
		t.Fatalf("expected event kind %v on %s not received", kind, c.id)
	}
	return evs[len(evs)-1]
}

type recordingObserver struct {
	mu      sync.Mutex
	changes []PresenceChange
}

func (o *recordingObserver) ObservePresence(change PresenceChange) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.changes = append(o.changes, change)
}

func (o *recordingObserver) kinds() []PresenceKind {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]PresenceKind, 0, len(o.changes))
	for _, c := range o.changes {
		out = append(out, c.Kind)
	}
	return out
}

func fixedClock() time.Time {
	return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
}
