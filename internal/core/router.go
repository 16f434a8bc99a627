package core

import (
	"encoding/json"
	"errors"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/roomsignal/internal/metrics"
)

// Router relays events to participants. It holds no state of its own:
// destinations are resolved through the registry on every call.
type Router struct {
	registry *Registry
	rooms    *Rooms
	log      *zerolog.Logger
}

// NewRouter builds a router over the given indices.
func NewRouter(registry *Registry, rooms *Rooms, logger *zerolog.Logger) *Router {
	return &Router{registry: registry, rooms: rooms, log: logger}
}

// Unicast delivers a negotiation payload from one participant to another.
// A destination without a live connection is dropped silently.
func (r *Router) Unicast(from, to ParticipantID, kind EventKind, payload json.RawMessage) bool {
	conn, ok := r.registry.Resolve(to)
	if !ok {
		r.log.Debug().
			Str("event", kind.String()).
			Str("from", string(from)).
			Str("to", string(to)).
			Msg("unicast destination not bound, dropping")
		metrics.EventsDropped.WithLabelValues(kind.String(), "unbound").Inc()
		return false
	}
	return r.Deliver(conn, &Event{Kind: kind, From: from, Payload: payload})
}

// BroadcastToRoom delivers event to every member of roomID except exclude.
// Members are resolved one by one; stale members are skipped.
func (r *Router) BroadcastToRoom(roomID RoomID, event *Event, exclude ParticipantID) int {
	sent := 0
	for _, pid := range r.rooms.Members(roomID) {
		if pid == exclude {
			continue
		}
		conn, ok := r.registry.Resolve(pid)
		if !ok {
			metrics.EventsDropped.WithLabelValues(event.Kind.String(), "unbound").Inc()
			continue
		}
		if r.Deliver(conn, event) {
			sent++
		}
	}
	r.log.Debug().
		Str("room_id", string(roomID)).
		Str("event", event.Kind.String()).
		Int("sent_to", sent).
		Msg("broadcast result")
	return sent
}

// Deliver enqueues event on conn. A full or closed queue drops the event for
// this connection only.
func (r *Router) Deliver(conn Conn, event *Event) bool {
	if err := conn.Send(event); err != nil {
		reason := "closed"
		if errors.Is(err, ErrQueueFull) {
			reason = "backpressure"
		}
		r.log.Warn().
			Err(err).
			Str("conn_id", string(conn.ID())).
			Str("event", event.Kind.String()).
			Msg("deliver dropped")
		metrics.EventsDropped.WithLabelValues(event.Kind.String(), reason).Inc()
		return false
	}
	metrics.EventsDelivered.WithLabelValues(event.Kind.String()).Inc()
	return true
}
