package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	stdhttp "net/http"
	"strings"
	"sync"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/roomsignal/internal/auth"
	"github.com/vovakirdan/roomsignal/internal/config"
	"github.com/vovakirdan/roomsignal/internal/core"
	"github.com/vovakirdan/roomsignal/internal/metrics"
	"github.com/vovakirdan/roomsignal/internal/proto"
	"github.com/vovakirdan/roomsignal/internal/utils"
)

// WSHandler upgrades HTTP connections and bridges them to the hub.
type WSHandler struct {
	hub *core.Hub
	cfg *config.Config
	jwt *auth.JWTConfig
	log *zerolog.Logger

	// sessions counts live sockets; closing is set once shutdown starts and
	// done is closed to end every session.
	mu       sync.Mutex
	closing  bool
	done     chan struct{}
	sessions sync.WaitGroup
}

// NewWSHandler builds a new WebSocket handler.
func NewWSHandler(hub *core.Hub, cfg *config.Config, logger *zerolog.Logger) *WSHandler {
	return &WSHandler{
		hub: hub,
		cfg: cfg,
		jwt: &auth.JWTConfig{
			Secret:   []byte(cfg.JWTSecret),
			Issuer:   cfg.JWTIssuer,
			Audience: cfg.JWTAudience,
		},
		log:  logger,
		done: make(chan struct{}),
	}
}

// CloseSessions ends every live session and waits until each has run its
// disconnect. New upgrades are refused from then on.
func (h *WSHandler) CloseSessions(ctx context.Context) error {
	h.mu.Lock()
	if !h.closing {
		h.closing = true
		close(h.done)
	}
	h.mu.Unlock()

	drained := make(chan struct{})
	go func() {
		h.sessions.Wait()
		close(drained)
	}()
	select {
	case <-drained:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("close ws sessions: %w", ctx.Err())
	}
}

// track registers a session unless shutdown has started.
func (h *WSHandler) track() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closing {
		return false
	}
	h.sessions.Add(1)
	return true
}

func (h *WSHandler) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	var subject string
	if h.jwt.Enabled() {
		claims, err := auth.ValidateToken(h.jwt, tokenFromRequest(r))
		if err != nil {
			h.log.Debug().Err(err).Str("remote", r.RemoteAddr).Msg("ws token rejected")
			stdhttp.Error(w, "unauthorized", stdhttp.StatusUnauthorized)
			return
		}
		subject = claims.Subject
	}

	if !h.track() {
		stdhttp.Error(w, "shutting down", stdhttp.StatusServiceUnavailable)
		return
	}
	defer h.sessions.Done()

	opts := &websocket.AcceptOptions{OriginPatterns: h.cfg.AllowedOrigins}
	if len(h.cfg.AllowedOrigins) == 0 {
		opts.InsecureSkipVerify = true
	}
	ws, err := websocket.Accept(w, r, opts)
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer ws.Close(websocket.StatusInternalError, "internal error")
	if h.cfg.MaxMessageBytes > 0 {
		ws.SetReadLimit(h.cfg.MaxMessageBytes)
	}

	conn := newWSConn(core.ConnID(utils.NewID()), h.cfg.SendQueueSize)
	sess := &session{
		hub:     h.hub,
		conn:    conn,
		limiter: newRateLimiter(h.cfg.RateLimitPerMinute),
		subject: subject,
		log:     h.log,
	}

	metrics.OpenConnections.Inc()
	h.log.Debug().Str("conn_id", string(conn.ID())).Str("subject", subject).Msg("ws connected")
	defer func() {
		h.hub.Disconnect(conn.ID())
		conn.close()
		metrics.OpenConnections.Dec()
		h.log.Debug().Str("conn_id", string(conn.ID())).Msg("ws disconnected")
	}()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go func() {
		select {
		case <-h.done:
			cancel()
		case <-ctx.Done():
		}
	}()

	errCh := make(chan error, 2)
	go func() {
		errCh <- h.readLoop(ctx, ws, sess)
	}()
	go func() {
		errCh <- h.writeLoop(ctx, ws, conn)
	}()

	err = <-errCh
	cancel() // stop the other goroutine
	<-errCh

	status := websocket.StatusNormalClosure
	reason := "closing"
	select {
	case <-h.done:
		status = websocket.StatusGoingAway
		reason = "server shutting down"
	default:
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		if errors.Is(err, io.EOF) {
			err = nil
		}
		if s := websocket.CloseStatus(err); s != -1 {
			status = s
		}
		if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
			err = nil
		}
		if err != nil {
			if status == websocket.StatusNormalClosure {
				status = websocket.StatusInternalError
			}
			reason = "read or write failed"
			h.log.Warn().Err(err).Str("conn_id", string(conn.ID())).Msg("ws connection closed with error")
		}
	}

	ws.Close(status, reason)
}

// readLoop feeds inbound events to the hub in arrival order.
func (h *WSHandler) readLoop(ctx context.Context, ws *websocket.Conn, sess *session) error {
	for {
		typ, data, err := ws.Read(ctx)
		if err != nil {
			return err
		}
		if typ != websocket.MessageText {
			sess.reject("binary", &proto.Error{Code: core.ErrCodeInvalidMessage, Msg: "text frames only"})
			continue
		}

		var inbound proto.Inbound
		if err := json.Unmarshal(data, &inbound); err != nil {
			sess.reject("", &proto.Error{Code: core.ErrCodeBadRequest, Msg: "malformed envelope"})
			continue
		}
		sess.handle(inbound)
	}
}

func (h *WSHandler) writeLoop(ctx context.Context, ws *websocket.Conn, conn *wsConn) error {
	for {
		select {
		case event, ok := <-conn.events:
			if !ok {
				return nil
			}
			if err := h.write(ctx, ws, outboundFromEvent(event)); err != nil {
				h.log.Error().Err(err).Str("conn_id", string(conn.ID())).Msg("write ws event")
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (h *WSHandler) write(ctx context.Context, ws *websocket.Conn, out proto.Outbound) error {
	if h.cfg.WriteTimeout <= 0 {
		return wsjson.Write(ctx, ws, out)
	}
	wctx, cancel := context.WithTimeout(ctx, h.cfg.WriteTimeout)
	defer cancel()
	return wsjson.Write(wctx, ws, out)
}

func tokenFromRequest(r *stdhttp.Request) string {
	if token := r.URL.Query().Get("token"); token != "" {
		return token
	}
	header := r.Header.Get("Authorization")
	if after, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(after)
	}
	return ""
}

