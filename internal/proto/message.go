package proto

import "encoding/json"

// Inbound is the envelope for messages coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

const (
	ProtocolVersion = 1

	InboundTypeJoinRoom     = "join-room"
	InboundTypeLeaveRoom    = "leave-room"
	InboundTypeOffer        = "offer"
	InboundTypeAnswer       = "answer"
	InboundTypeICECandidate = "ice-candidate"
	InboundTypeSendMessage  = "send-message"

	OutboundTypeEvent = "event"
	OutboundTypeError = "error"

	EventExistingUsers    = "existing-users"
	EventUserConnected    = "user-connected"
	EventUserDisconnected = "user-disconnected"
	EventOffer            = "offer"
	EventAnswer           = "answer"
	EventICECandidate     = "ice-candidate"
	EventReceiveMessage   = "receive-message"
)

// JoinRoomData registers the connection as participantId inside roomId.
type JoinRoomData struct {
	RoomID        string `json:"roomId" validate:"required,max=128"`
	ParticipantID string `json:"participantId" validate:"required,max=128"`
	DisplayName   string `json:"displayName,omitempty" validate:"max=64"`
	Protocol      int    `json:"protocol,omitempty" validate:"gte=0"`
}

// SignalData addresses an opaque negotiation payload to a participant.
type SignalData struct {
	To      string          `json:"to" validate:"required,max=128"`
	Payload json.RawMessage `json:"payload" validate:"required"`
}

// SendMessageData is a chat line. An empty roomId targets the sender's room.
type SendMessageData struct {
	RoomID string `json:"roomId,omitempty" validate:"max=128"`
	Text   string `json:"text" validate:"required,max=4096"`
}

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	Event string `json:"event,omitempty"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// Participant is a roster entry.
type Participant struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}

// EventSignal is a relayed negotiation payload.
type EventSignal struct {
	From    string          `json:"from"`
	Payload json.RawMessage `json:"payload"`
}

// EventUserLeft notifies that a participant left the room.
type EventUserLeft struct {
	ID string `json:"id"`
}

// EventMessage is a relayed chat line.
type EventMessage struct {
	SenderID    string `json:"senderId"`
	DisplayName string `json:"displayName"`
	Text        string `json:"text"`
	Timestamp   string `json:"timestamp"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}
