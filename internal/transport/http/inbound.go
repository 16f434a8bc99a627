package http

import (
	"github.com/rs/zerolog"

	"github.com/vovakirdan/roomsignal/internal/core"
	"github.com/vovakirdan/roomsignal/internal/metrics"
	"github.com/vovakirdan/roomsignal/internal/proto"
)

// session is the per-connection state of the read loop.
type session struct {
	hub     *core.Hub
	conn    *wsConn
	limiter *rateLimiter
	// subject is the verified participant id, empty when tokens are disabled.
	subject string
	log     *zerolog.Logger
}

// handle applies one inbound event. Rejected events are answered with an
// error frame on the same connection, which stays open.
func (s *session) handle(inbound proto.Inbound) {
	switch inbound.Type {
	case proto.InboundTypeJoinRoom:
		var data proto.JoinRoomData
		if perr := decodeData(inbound.Data, &data); perr != nil {
			s.reject(inbound.Type, perr)
			return
		}
		if data.Protocol > proto.ProtocolVersion {
			s.reject(inbound.Type, &proto.Error{Code: core.ErrCodeUnsupportedVersion, Msg: "unsupported protocol version"})
			return
		}
		if s.subject != "" && data.ParticipantID != s.subject {
			s.reject(inbound.Type, &proto.Error{Code: core.ErrCodeUnauthorized, Msg: "participant id does not match token"})
			return
		}
		s.hub.Join(s.conn, core.RoomID(data.RoomID), core.ParticipantID(data.ParticipantID), data.DisplayName)

	case proto.InboundTypeLeaveRoom:
		s.hub.Leave(s.conn.ID())

	case proto.InboundTypeOffer, proto.InboundTypeAnswer, proto.InboundTypeICECandidate:
		var data proto.SignalData
		if perr := decodeData(inbound.Data, &data); perr != nil {
			s.reject(inbound.Type, perr)
			return
		}
		s.hub.Relay(s.conn.ID(), negotiationKinds[inbound.Type], core.ParticipantID(data.To), data.Payload)

	case proto.InboundTypeSendMessage:
		if !s.limiter.allow() {
			s.reject(inbound.Type, &proto.Error{Code: core.ErrCodeRateLimited, Msg: "too many messages"})
			return
		}
		var data proto.SendMessageData
		if perr := decodeData(inbound.Data, &data); perr != nil {
			s.reject(inbound.Type, perr)
			return
		}
		s.hub.SendMessage(s.conn.ID(), core.RoomID(data.RoomID), data.Text)

	default:
		s.reject(inbound.Type, &proto.Error{Code: core.ErrCodeInvalidMessage, Msg: "unknown message type"})
	}
}

func (s *session) reject(eventType string, perr *proto.Error) {
	metrics.InboundRejected.WithLabelValues(perr.Code).Inc()
	s.log.Warn().
		Str("conn_id", string(s.conn.ID())).
		Str("type", eventType).
		Str("code", perr.Code).
		Str("reason", perr.Msg).
		Msg("inbound event rejected")
	if err := s.conn.Send(&core.Event{Kind: core.EventError, Error: core.NewError(perr.Code, perr.Msg)}); err != nil {
		s.log.Debug().Err(err).Str("conn_id", string(s.conn.ID())).Msg("error frame dropped")
	}
}
