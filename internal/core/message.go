package core

import "time"

// Member is a roster entry: a participant present in a room.
type Member struct {
	ID          ParticipantID
	DisplayName string
}

// ChatMessage is an in-call chat line. It exists only while being relayed.
type ChatMessage struct {
	From        ParticipantID
	DisplayName string
	Text        string
	CreatedAt   time.Time
}
