package core

import "time"

// PresenceKind tells arrivals from departures.
type PresenceKind string

const (
	PresenceJoined PresenceKind = "joined"
	PresenceLeft   PresenceKind = "left"
)

// PresenceChange is one membership transition.
type PresenceChange struct {
	Room        RoomID
	Participant ParticipantID
	Kind        PresenceKind
	At          time.Time
}

// PresenceObserver is notified of every membership transition.
// Implementations must not block: they run under the hub lock.
type PresenceObserver interface {
	ObservePresence(change PresenceChange)
}
