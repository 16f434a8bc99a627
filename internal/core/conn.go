package core

// ParticipantID is the durable identity of a meeting attendee, issued by the
// identity service (authenticated user id or guest id).
type ParticipantID string

// ConnID identifies one live transport connection.
type ConnID string

// RoomID is the externally issued room identifier.
type RoomID string

// Conn is a live transport connection as seen by the core layer.
// Owned by the transport; the core only enqueues events onto it.
type Conn interface {
	ID() ConnID
	// Send enqueues an event without blocking. It returns ErrQueueFull or
	// ErrConnClosed when the event was dropped.
	Send(event *Event) error
}
