package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"

	"github.com/vovakirdan/roomsignal/internal/core"
	"github.com/vovakirdan/roomsignal/internal/proto"
)

var validate = newValidator()

// newValidator reports fields by their wire names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

var negotiationKinds = map[string]core.EventKind{
	proto.InboundTypeOffer:        core.EventOffer,
	proto.InboundTypeAnswer:       core.EventAnswer,
	proto.InboundTypeICECandidate: core.EventICECandidate,
}

// decodeData unmarshals and validates an inbound payload. Failures are
// reported to the client as bad_request.
func decodeData(raw json.RawMessage, dst any) *proto.Error {
	if len(raw) == 0 {
		return &proto.Error{Code: core.ErrCodeBadRequest, Msg: "data is required"}
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return &proto.Error{Code: core.ErrCodeBadRequest, Msg: "malformed data"}
	}
	if err := validate.Struct(dst); err != nil {
		return &proto.Error{Code: core.ErrCodeBadRequest, Msg: validationMessage(err)}
	}
	return nil
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "invalid data"
	}
	fe := verrs[0]
	return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	switch event.Kind {
	case core.EventExistingUsers:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventExistingUsers,
			Data:  lo.Map(event.Members, func(m core.Member, _ int) proto.Participant { return participantOf(m) }),
		}
	case core.EventUserConnected:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventUserConnected,
			Data:  participantOf(event.Member),
		}
	case core.EventUserDisconnected:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventUserDisconnected,
			Data:  proto.EventUserLeft{ID: string(event.Member.ID)},
		}
	case core.EventOffer, core.EventAnswer, core.EventICECandidate:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: event.Kind.String(),
			Data:  proto.EventSignal{From: string(event.From), Payload: event.Payload},
		}
	case core.EventReceiveMessage:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventReceiveMessage,
			Data: proto.EventMessage{
				SenderID:    string(event.Message.From),
				DisplayName: event.Message.DisplayName,
				Text:        event.Message.Text,
				Timestamp:   event.Message.CreatedAt.Format(time.RFC3339),
			},
		}
	case core.EventError:
		if event.Error == nil {
			return proto.Outbound{Type: proto.OutboundTypeError, Error: &proto.Error{Code: "unknown", Msg: "unknown error"}}
		}
		return proto.Outbound{
			Type:  proto.OutboundTypeError,
			Error: &proto.Error{Code: event.Error.Code, Msg: event.Error.Message},
		}
	default:
		return proto.Outbound{Type: proto.OutboundTypeEvent}
	}
}

func participantOf(m core.Member) proto.Participant {
	return proto.Participant{ID: string(m.ID), DisplayName: m.DisplayName}
}
