package http

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/roomsignal/internal/config"
	"github.com/vovakirdan/roomsignal/internal/core"
	"github.com/vovakirdan/roomsignal/internal/proto"
	"github.com/vovakirdan/roomsignal/internal/store"
)

// testConfig returns defaults suitable for in-process servers.
func testConfig() config.Config {
	cfg := config.Default()
	cfg.Addr = ":0"
	cfg.ReadHeaderTimeout = time.Second
	cfg.ShutdownTimeout = time.Second
	return cfg
}

// startTestServer runs a server over a fresh hub and returns both.
func startTestServer(t *testing.T, cfg config.Config, presence store.PresenceLog) (*httptest.Server, *core.Hub) {
	t.Helper()

	disabledLogger := zerolog.New(nil)
	hub := core.NewHub(&disabledLogger)
	server := NewServer(hub, presence, &cfg, &disabledLogger)

	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)
	return ts, hub
}

func wsURL(ts *httptest.Server) string {
	return strings.Replace(ts.URL, "http", "ws", 1) + "/ws"
}

// testClient is a raw protocol client driven by tests.
type testClient struct {
	t    *testing.T
	ctx  context.Context
	conn *websocket.Conn
}

func dialClient(t *testing.T, ctx context.Context, url string) *testClient {
	t.Helper()
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "done") })
	return &testClient{t: t, ctx: ctx, conn: conn}
}

func (c *testClient) send(typ string, data any) {
	c.t.Helper()
	payload, err := json.Marshal(data)
	if err != nil {
		c.t.Fatalf("marshal %s: %v", typ, err)
	}
	if err := wsjson.Write(c.ctx, c.conn, proto.Inbound{Type: typ, Data: payload}); err != nil {
		c.t.Fatalf("send %s: %v", typ, err)
	}
}

func (c *testClient) join(room, participant, name string) []proto.Participant {
	c.t.Helper()
	c.send(proto.InboundTypeJoinRoom, proto.JoinRoomData{RoomID: room, ParticipantID: participant, DisplayName: name})
	var roster []proto.Participant
	c.expectEvent(proto.EventExistingUsers, &roster)
	return roster
}

// rawOutbound keeps data undecoded until the event name is known.
type rawOutbound struct {
	Type  string          `json:"type"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
	Error *proto.Error    `json:"error"`
}

func (c *testClient) read() rawOutbound {
	c.t.Helper()
	var out rawOutbound
	if err := wsjson.Read(c.ctx, c.conn, &out); err != nil {
		c.t.Fatalf("read outbound: %v", err)
	}
	return out
}

func (c *testClient) expectEvent(event string, dst any) {
	c.t.Helper()
	out := c.read()
	if out.Type != proto.OutboundTypeEvent || out.Event != event {
		c.t.Fatalf("expected event %s, got %+v", event, out)
	}
	if dst != nil {
		if err := json.Unmarshal(out.Data, dst); err != nil {
			c.t.Fatalf("unmarshal %s: %v", event, err)
		}
	}
}

func (c *testClient) expectError(code string) {
	c.t.Helper()
	out := c.read()
	if out.Type != proto.OutboundTypeError || out.Error == nil || out.Error.Code != code {
		c.t.Fatalf("expected %s error, got %+v", code, out)
	}
}

// expectSilence asserts nothing arrives within d. The read deadline closes
// the connection, so this must be the client's last call.
func (c *testClient) expectSilence(d time.Duration) {
	c.t.Helper()
	ctx, cancel := context.WithTimeout(c.ctx, d)
	defer cancel()
	var out rawOutbound
	if err := wsjson.Read(ctx, c.conn, &out); err == nil {
		c.t.Fatalf("unexpected outbound: %+v", out)
	}
}
