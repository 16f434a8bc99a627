package http

import (
	"context"
	"testing"
	"time"

	"github.com/vovakirdan/roomsignal/internal/proto"
)

func TestProtocolVersionMismatch(t *testing.T) {
	ts, hub := startTestServer(t, testConfig(), nil)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	client := dialClient(t, ctx, wsURL(ts))
	client.send(proto.InboundTypeJoinRoom, proto.JoinRoomData{
		RoomID:        "room-1",
		ParticipantID: "a",
		Protocol:      proto.ProtocolVersion + 1,
	})
	client.expectError("unsupported_version")

	if _, ok := hub.Snapshot("room-1"); ok {
		t.Fatalf("rejected join must not create the room")
	}
}

func TestProtocolVersionCurrent(t *testing.T) {
	ts, _ := startTestServer(t, testConfig(), nil)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	client := dialClient(t, ctx, wsURL(ts))
	client.send(proto.InboundTypeJoinRoom, proto.JoinRoomData{
		RoomID:        "room-1",
		ParticipantID: "a",
		Protocol:      proto.ProtocolVersion,
	})
	client.expectEvent(proto.EventExistingUsers, nil)
}
