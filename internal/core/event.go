package core

import "encoding/json"

// EventKind is a notification the core emits to connections.
type EventKind int

const (
	// EventExistingUsers delivers the pre-join roster to a joining participant.
	EventExistingUsers EventKind = iota
	// EventUserConnected notifies room members about an arrival.
	EventUserConnected
	// EventUserDisconnected notifies room members about a departure.
	EventUserDisconnected
	// EventOffer relays a session offer.
	EventOffer
	// EventAnswer relays a session answer.
	EventAnswer
	// EventICECandidate relays a network candidate.
	EventICECandidate
	// EventReceiveMessage delivers a chat message.
	EventReceiveMessage
	// EventError notifies a single connection about a rejected inbound event.
	EventError
)

var eventNames = map[EventKind]string{
	EventExistingUsers:    "existing-users",
	EventUserConnected:    "user-connected",
	EventUserDisconnected: "user-disconnected",
	EventOffer:            "offer",
	EventAnswer:           "answer",
	EventICECandidate:     "ice-candidate",
	EventReceiveMessage:   "receive-message",
	EventError:            "error",
}

func (k EventKind) String() string {
	if name, ok := eventNames[k]; ok {
		return name
	}
	return "unknown"
}

// IsNegotiation reports whether events of this kind carry an opaque
// negotiation payload addressed to a single participant.
func (k EventKind) IsNegotiation() bool {
	return k == EventOffer || k == EventAnswer || k == EventICECandidate
}

// Event is sent to connections to describe what happened in the system.
// A single Event value may be shared by every recipient of a broadcast and
// must be treated as read-only once sent.
type Event struct {
	Kind    EventKind
	Room    RoomID
	From    ParticipantID   // sender of a negotiation relay
	Member  Member          // subject of user-connected / user-disconnected
	Members []Member        // for EventExistingUsers
	Payload json.RawMessage // opaque negotiation blob
	Message ChatMessage
	Error   *CoreError
}
