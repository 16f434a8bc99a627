package store

import (
	"context"
	"time"
)

// PresenceKind tells arrivals from departures.
type PresenceKind string

const (
	PresenceJoined PresenceKind = "joined"
	PresenceLeft   PresenceKind = "left"
)

// PresenceRecord is one persisted membership transition. Chat content is
// never stored.
type PresenceRecord struct {
	ID            int64
	RoomID        string
	ParticipantID string
	Kind          PresenceKind
	At            time.Time
}

// PresenceLog persists membership transitions for later inspection.
type PresenceLog interface {
	RecordPresence(ctx context.Context, records ...PresenceRecord) error
	// ListPresence returns the most recent records of a room, newest first.
	ListPresence(ctx context.Context, roomID string, limit int) ([]PresenceRecord, error)
	Close() error
}
