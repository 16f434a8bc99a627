package core

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/vovakirdan/roomsignal/internal/metrics"
)

// Hub coordinates presence and relays signaling between participants.
// It is the only entry point the transport layer calls.
//
// Presence transitions (Join, Leave, Disconnect) are serialized by the hub
// lock. Lock order is hub, then registry, then rooms; the registry is always
// cleaned up before a departure is broadcast so that a relay racing with the
// departure finds no route.
type Hub struct {
	mu       sync.Mutex
	registry *Registry
	rooms    *Rooms
	router   *Router
	observer PresenceObserver
	log      *zerolog.Logger
	now      func() time.Time

	defaultName string
}

// Option customizes a Hub.
type Option func(*Hub)

// WithObserver registers an observer for membership transitions.
func WithObserver(o PresenceObserver) Option {
	return func(h *Hub) { h.observer = o }
}

// WithDefaultDisplayName sets the placeholder used for unnamed participants.
func WithDefaultDisplayName(name string) Option {
	return func(h *Hub) { h.defaultName = name }
}

// WithClock overrides the time source used for chat timestamps.
func WithClock(now func() time.Time) Option {
	return func(h *Hub) { h.now = now }
}

// NewHub creates a hub with empty indices. A nil logger disables logging.
func NewHub(logger *zerolog.Logger, opts ...Option) *Hub {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	h := &Hub{log: logger, now: time.Now}
	for _, opt := range opts {
		opt(h)
	}
	h.registry = NewRegistry(h.defaultName)
	h.rooms = NewRooms()
	h.router = NewRouter(h.registry, h.rooms, logger)
	return h
}

// Join registers conn as the live connection of pid and places pid in roomID.
// The joiner receives the roster present before it arrived; everyone else in
// the room receives an arrival notice. The roster is also returned.
func (h *Hub) Join(conn Conn, roomID RoomID, pid ParticipantID, displayName string) []Member {
	h.mu.Lock()
	defer h.mu.Unlock()

	// A connection speaks for one participant; switching identity on the same
	// connection is a departure of the old one.
	if prev, ok := h.registry.ResolveParticipant(conn.ID()); ok && prev != pid {
		h.departLocked(conn.ID(), "identity switch")
	}

	h.registry.Bind(pid, conn)
	h.registry.SetDisplayName(pid, strings.TrimSpace(displayName))

	res := h.rooms.Join(roomID, pid)
	if res.Moved {
		h.router.BroadcastToRoom(res.From, &Event{
			Kind:   EventUserDisconnected,
			Room:   res.From,
			Member: Member{ID: pid},
		}, pid)
		h.observe(res.From, pid, PresenceLeft)
		h.log.Info().
			Str("participant_id", string(pid)).
			Str("from_room", string(res.From)).
			Str("room_id", string(roomID)).
			Msg("participant re-homed")
	}

	roster := h.membersOf(res.Others)
	h.router.Deliver(conn, &Event{Kind: EventExistingUsers, Room: roomID, Members: roster})

	h.router.BroadcastToRoom(roomID, &Event{
		Kind:   EventUserConnected,
		Room:   roomID,
		Member: Member{ID: pid, DisplayName: h.registry.DisplayName(pid)},
	}, pid)
	if res.Added {
		h.observe(roomID, pid, PresenceJoined)
	}

	h.log.Info().
		Str("conn_id", string(conn.ID())).
		Str("participant_id", string(pid)).
		Str("room_id", string(roomID)).
		Int("existing", len(roster)).
		Msg("participant joined")
	h.updateGauges()
	return roster
}

// Leave runs the departure protocol for an explicit leave-room.
func (h *Hub) Leave(id ConnID) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.departLocked(id, "leave")
}

// Disconnect runs the departure protocol for a closed transport connection.
// Calling it for an already cleared connection is a no-op.
func (h *Hub) Disconnect(id ConnID) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.departLocked(id, "disconnect")
}

func (h *Hub) departLocked(id ConnID, reason string) bool {
	pid, ok := h.registry.ResolveParticipant(id)
	if !ok {
		h.log.Debug().Str("conn_id", string(id)).Str("reason", reason).Msg("departure for unbound connection")
		return false
	}
	roomID, inRoom := h.rooms.FindRoomOf(pid)

	h.registry.Unbind(id)
	h.registry.ClearDisplayName(pid)
	defer h.updateGauges()

	if !inRoom || !h.rooms.Leave(roomID, pid) {
		return true
	}
	h.router.BroadcastToRoom(roomID, &Event{
		Kind:   EventUserDisconnected,
		Room:   roomID,
		Member: Member{ID: pid},
	}, pid)
	h.observe(roomID, pid, PresenceLeft)

	h.log.Info().
		Str("conn_id", string(id)).
		Str("participant_id", string(pid)).
		Str("room_id", string(roomID)).
		Str("reason", reason).
		Msg("participant left")
	return true
}

// Relay forwards a negotiation payload from the participant bound to id to
// participant to. The payload is never inspected.
func (h *Hub) Relay(id ConnID, kind EventKind, to ParticipantID, payload json.RawMessage) bool {
	if !kind.IsNegotiation() {
		return false
	}
	from, ok := h.registry.ResolveParticipant(id)
	if !ok {
		h.log.Debug().Str("conn_id", string(id)).Str("event", kind.String()).Msg("relay from unbound connection")
		metrics.EventsDropped.WithLabelValues(kind.String(), "unbound_sender").Inc()
		return false
	}
	return h.router.Unicast(from, to, kind, payload)
}

// SendMessage broadcasts a chat line from the participant bound to id to the
// rest of roomID. An empty roomID means the sender's current room. Senders
// that are not members of the room are dropped.
func (h *Hub) SendMessage(id ConnID, roomID RoomID, text string) bool {
	from, ok := h.registry.ResolveParticipant(id)
	if !ok {
		h.log.Debug().Str("conn_id", string(id)).Msg("chat from unbound connection")
		metrics.EventsDropped.WithLabelValues(EventReceiveMessage.String(), "unbound_sender").Inc()
		return false
	}
	current, inRoom := h.rooms.FindRoomOf(from)
	if roomID == "" {
		roomID = current
	}
	if !inRoom || current != roomID {
		h.log.Debug().
			Str("participant_id", string(from)).
			Str("room_id", string(roomID)).
			Msg("chat sender not in room")
		metrics.EventsDropped.WithLabelValues(EventReceiveMessage.String(), "not_in_room").Inc()
		return false
	}

	h.router.BroadcastToRoom(roomID, &Event{
		Kind: EventReceiveMessage,
		Room: roomID,
		Message: ChatMessage{
			From:        from,
			DisplayName: h.registry.DisplayName(from),
			Text:        text,
			CreatedAt:   h.now().UTC(),
		},
	}, from)
	return true
}

// Snapshot returns the members of roomID in join order.
func (h *Hub) Snapshot(roomID RoomID) ([]Member, bool) {
	ids := h.rooms.Members(roomID)
	if len(ids) == 0 {
		return nil, false
	}
	return h.membersOf(ids), true
}

// Rooms lists live rooms.
func (h *Hub) Rooms() []RoomInfo {
	return h.rooms.List()
}

// RoomOf returns the room of the participant bound to id.
func (h *Hub) RoomOf(id ConnID) (RoomID, bool) {
	pid, ok := h.registry.ResolveParticipant(id)
	if !ok {
		return "", false
	}
	return h.rooms.FindRoomOf(pid)
}

func (h *Hub) membersOf(ids []ParticipantID) []Member {
	return lo.Map(ids, func(pid ParticipantID, _ int) Member {
		return Member{ID: pid, DisplayName: h.registry.DisplayName(pid)}
	})
}

func (h *Hub) observe(roomID RoomID, pid ParticipantID, kind PresenceKind) {
	metrics.PresenceEvents.WithLabelValues(string(kind)).Inc()
	if h.observer == nil {
		return
	}
	h.observer.ObservePresence(PresenceChange{
		Room:        roomID,
		Participant: pid,
		Kind:        kind,
		At:          h.now().UTC(),
	})
}

func (h *Hub) updateGauges() {
	metrics.ActiveRooms.Set(float64(h.rooms.Len()))
	metrics.BoundParticipants.Set(float64(h.registry.Len()))
}
