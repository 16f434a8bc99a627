package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/vovakirdan/roomsignal/internal/proto"
)

// ws_chat is an interactive participant. Plain lines are sent as chat;
// "/offer <to> <json>", "/answer <to> <json>" and "/ice <to> <json>" relay
// raw negotiation payloads; "/leave" leaves the room.
func main() {
	if err := run(); err != nil {
		log.Printf("ws_chat: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:3001/ws", "WebSocket address")
	id := flag.String("id", "cli-user", "participant id")
	name := flag.String("name", "", "display name")
	room := flag.String("room", "general", "room to join")
	token := flag.String("token", "", "identity token")
	flag.Parse()

	baseCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(baseCtx)
	defer cancel()

	url := *addr
	if *token != "" {
		url += "?token=" + *token
	}
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	if err := send(ctx, conn, proto.InboundTypeJoinRoom, proto.JoinRoomData{
		RoomID:        *room,
		ParticipantID: *id,
		DisplayName:   *name,
		Protocol:      proto.ProtocolVersion,
	}); err != nil {
		return err
	}

	fmt.Printf("Connected to %s as %s in room %s\n", *addr, *id, *room)
	fmt.Println("Type messages and press Enter to send. Ctrl+C to exit.")

	go func() {
		defer cancel()
		readLoop(ctx, conn)
	}()

	writeLoop(ctx, conn)

	stop()
	cancel()
	_ = conn.Close(websocket.StatusNormalClosure, "bye")
	return nil
}

func send(ctx context.Context, conn *websocket.Conn, typ string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", typ, err)
	}
	if err := wsjson.Write(ctx, conn, proto.Inbound{Type: typ, Data: payload}); err != nil {
		return fmt.Errorf("send %s: %w", typ, err)
	}
	return nil
}

func readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		var outbound struct {
			Type  string          `json:"type"`
			Event string          `json:"event"`
			Data  json.RawMessage `json:"data"`
			Error *proto.Error    `json:"error"`
		}
		if err := wsjson.Read(ctx, conn, &outbound); err != nil {
			// Treat expected shutdowns quietly.
			if errors.Is(err, context.Canceled) {
				return
			}
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return
			}
			log.Printf("read error: %v", err)
			return
		}

		if outbound.Error != nil {
			fmt.Printf("! %s: %s\n", outbound.Error.Code, outbound.Error.Msg)
			continue
		}

		switch outbound.Event {
		case proto.EventExistingUsers:
			var roster []proto.Participant
			if err := json.Unmarshal(outbound.Data, &roster); err != nil {
				log.Printf("unmarshal roster: %v", err)
				continue
			}
			names := make([]string, 0, len(roster))
			for _, p := range roster {
				names = append(names, fmt.Sprintf("%s (%s)", p.DisplayName, p.ID))
			}
			fmt.Printf("in room: %s\n", strings.Join(names, ", "))
		case proto.EventUserConnected:
			var p proto.Participant
			if err := json.Unmarshal(outbound.Data, &p); err != nil {
				log.Printf("unmarshal user-connected: %v", err)
				continue
			}
			fmt.Printf("%s (%s) joined\n", p.DisplayName, p.ID)
		case proto.EventUserDisconnected:
			var evt proto.EventUserLeft
			if err := json.Unmarshal(outbound.Data, &evt); err != nil {
				log.Printf("unmarshal user-disconnected: %v", err)
				continue
			}
			fmt.Printf("%s left\n", evt.ID)
		case proto.EventReceiveMessage:
			var evt proto.EventMessage
			if err := json.Unmarshal(outbound.Data, &evt); err != nil {
				log.Printf("unmarshal message: %v", err)
				continue
			}
			fmt.Printf("[%s] %s: %s\n", evt.Timestamp, evt.DisplayName, evt.Text)
		case proto.EventOffer, proto.EventAnswer, proto.EventICECandidate:
			var evt proto.EventSignal
			if err := json.Unmarshal(outbound.Data, &evt); err != nil {
				log.Printf("unmarshal %s: %v", outbound.Event, err)
				continue
			}
			fmt.Printf("%s from %s: %s\n", outbound.Event, evt.From, string(evt.Payload))
		default:
			fmt.Printf("event=%s data=%s\n", outbound.Event, string(outbound.Data))
		}
	}
}

var commands = map[string]string{
	"/offer":  proto.InboundTypeOffer,
	"/answer": proto.InboundTypeAnswer,
	"/ice":    proto.InboundTypeICECandidate,
}

func writeLoop(ctx context.Context, conn *websocket.Conn) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			text := strings.TrimSpace(line)
			if text == "" {
				continue
			}
			if err := dispatch(ctx, conn, text); err != nil {
				log.Printf("%v", err)
				return
			}
		}
	}
}

func dispatch(ctx context.Context, conn *websocket.Conn, text string) error {
	if text == "/leave" {
		return send(ctx, conn, proto.InboundTypeLeaveRoom, struct{}{})
	}
	fields := strings.SplitN(text, " ", 3)
	if typ, ok := commands[fields[0]]; ok {
		if len(fields) != 3 || !json.Valid([]byte(fields[2])) {
			fmt.Printf("usage: %s <participant-id> <json>\n", fields[0])
			return nil
		}
		return send(ctx, conn, typ, proto.SignalData{To: fields[1], Payload: json.RawMessage(fields[2])})
	}
	return send(ctx, conn, proto.InboundTypeSendMessage, proto.SendMessageData{Text: text})
}
