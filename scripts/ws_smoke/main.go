package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/vovakirdan/roomsignal/internal/proto"
)

// ws_smoke joins two participants to one room, relays an offer between them,
// exchanges a chat line, and checks that the departure is announced.
func main() {
	if err := run(); err != nil {
		log.Printf("ws_smoke: %v", err)
		os.Exit(1)
	}
}

type peer struct {
	name string
	conn *websocket.Conn
}

func run() error {
	addr := flag.String("addr", "ws://localhost:3001/ws", "WebSocket address")
	room := flag.String("room", "smoke-room", "room id")
	token := flag.String("token", "", "identity token for the first peer (when verification is enabled)")
	timeout := flag.Duration("timeout", 5*time.Second, "total timeout for the run")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	a, err := dial(ctx, *addr, *token, "smoke-a")
	if err != nil {
		return err
	}
	defer a.conn.Close(websocket.StatusNormalClosure, "bye")

	b, err := dial(ctx, *addr, "", "smoke-b")
	if err != nil {
		return err
	}

	if err := send(ctx, a, proto.InboundTypeJoinRoom, proto.JoinRoomData{RoomID: *room, ParticipantID: a.name, DisplayName: "Smoke A"}); err != nil {
		return err
	}
	if _, err := expect(ctx, a, proto.EventExistingUsers); err != nil {
		return err
	}

	if err := send(ctx, b, proto.InboundTypeJoinRoom, proto.JoinRoomData{RoomID: *room, ParticipantID: b.name, DisplayName: "Smoke B"}); err != nil {
		return err
	}
	if _, err := expect(ctx, b, proto.EventExistingUsers); err != nil {
		return err
	}
	if _, err := expect(ctx, a, proto.EventUserConnected); err != nil {
		return err
	}

	offer := json.RawMessage(`{"type":"offer","sdp":"v=0 smoke"}`)
	if err := send(ctx, a, proto.InboundTypeOffer, proto.SignalData{To: b.name, Payload: offer}); err != nil {
		return err
	}
	if _, err := expect(ctx, b, proto.EventOffer); err != nil {
		return err
	}

	if err := send(ctx, b, proto.InboundTypeSendMessage, proto.SendMessageData{Text: "hello from smoke test"}); err != nil {
		return err
	}
	if _, err := expect(ctx, a, proto.EventReceiveMessage); err != nil {
		return err
	}

	b.conn.Close(websocket.StatusNormalClosure, "bye")
	if _, err := expect(ctx, a, proto.EventUserDisconnected); err != nil {
		return err
	}

	fmt.Println("smoke ok")
	return nil
}

func dial(ctx context.Context, addr, token, name string) (*peer, error) {
	url := addr
	if token != "" {
		url += "?token=" + token
	}
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", name, err)
	}
	return &peer{name: name, conn: conn}, nil
}

func send(ctx context.Context, p *peer, typ string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", typ, err)
	}
	if err := wsjson.Write(ctx, p.conn, proto.Inbound{Type: typ, Data: payload}); err != nil {
		return fmt.Errorf("%s send %s: %w", p.name, typ, err)
	}
	return nil
}

func expect(ctx context.Context, p *peer, event string) (json.RawMessage, error) {
	var outbound struct {
		Type  string          `json:"type"`
		Event string          `json:"event"`
		Data  json.RawMessage `json:"data"`
		Error *proto.Error    `json:"error"`
	}
	if err := wsjson.Read(ctx, p.conn, &outbound); err != nil {
		return nil, fmt.Errorf("%s read: %w", p.name, err)
	}
	if outbound.Error != nil {
		return nil, fmt.Errorf("%s got error %s: %s", p.name, outbound.Error.Code, outbound.Error.Msg)
	}
	if outbound.Event != event {
		return nil, fmt.Errorf("%s expected %s, got %s", p.name, event, outbound.Event)
	}
	fmt.Printf("%s <- %s %s\n", p.name, outbound.Event, string(outbound.Data))
	return outbound.Data, nil
}
