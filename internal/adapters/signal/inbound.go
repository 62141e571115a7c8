package signal

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Consult/internal/app/orch"
	"github.com/dkeye/Consult/internal/core"
	"github.com/dkeye/Consult/internal/domain"
)

const (
	msgInvalidFrame = "Invalid message"
	msgUnknownEvent = "Unknown event"
	msgRateLimited  = "Rate limit exceeded"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// session is the per-connection state the read loop carries around.
type session struct {
	sid         core.SessionID
	clientToken string
	conn        *WsSignalConn
	limiter     *eventLimiter
}

// inbound is the tagged union of every event a client may send.
type inbound interface {
	roomID() domain.RoomID
}

type joinRoom struct {
	RoomID   string        `json:"roomId" validate:"required,max=128"`
	UserID   domain.UserID `json:"userId" validate:"required,max=64"`
	UserRole string        `json:"userRole" validate:"required"`
	UserName string        `json:"userName" validate:"max=64"`
	Token    string        `json:"token"`
}

type sendMessage struct {
	RoomID     string `json:"roomId" validate:"required,max=128"`
	Message    string `json:"message" validate:"required"`
	SenderName string `json:"senderName" validate:"max=64"`
	SenderRole string `json:"senderRole"`
}

type signalMessage struct {
	kind      core.SignalKind
	RoomID    string          `json:"roomId" validate:"required,max=128"`
	Offer     json.RawMessage `json:"offer"`
	Answer    json.RawMessage `json:"answer"`
	Candidate json.RawMessage `json:"candidate"`
}

type leaveRoom struct {
	RoomID string `json:"roomId" validate:"required,max=128"`
}

type ping struct{}

func (m joinRoom) roomID() domain.RoomID      { return domain.RoomID(m.RoomID) }
func (m sendMessage) roomID() domain.RoomID   { return domain.RoomID(m.RoomID) }
func (m signalMessage) roomID() domain.RoomID { return domain.RoomID(m.RoomID) }
func (m leaveRoom) roomID() domain.RoomID     { return domain.RoomID(m.RoomID) }
func (ping) roomID() domain.RoomID            { return "" }

// payload returns the negotiation body for the message's kind.
func (m signalMessage) payload() json.RawMessage {
	switch m.kind {
	case core.SignalOffer:
		return m.Offer
	case core.SignalAnswer:
		return m.Answer
	case core.SignalCandidate:
		return m.Candidate
	}
	return nil
}

type unknownEventError struct{ event string }

func (e unknownEventError) Error() string { return "unknown event " + e.event }

// decodeInbound turns an envelope into a validated inbound value.
// Every failure wraps orch.ErrMalformed except unknown event names.
func decodeInbound(env core.Envelope, maxText int) (inbound, error) {
	var msg inbound
	switch env.Event {
	case core.EventJoinRoom:
		var m joinRoom
		if err := decodeData(env, &m); err != nil {
			return nil, err
		}
		if _, err := domain.ParseRole(m.UserRole); err != nil {
			return nil, fmt.Errorf("%w: %v", orch.ErrMalformed, err)
		}
		msg = m
	case core.EventSendMessage:
		var m sendMessage
		if err := decodeData(env, &m); err != nil {
			return nil, err
		}
		if strings.TrimSpace(m.Message) == "" {
			return nil, fmt.Errorf("%w: empty message", orch.ErrMalformed)
		}
		if len(m.Message) > maxText {
			return nil, fmt.Errorf("%w: message too long", orch.ErrMalformed)
		}
		msg = m
	case core.EventOffer, core.EventAnswer, core.EventICECandidate:
		m := signalMessage{kind: core.SignalKind(env.Event)}
		if err := decodeData(env, &m); err != nil {
			return nil, err
		}
		if p := bytes.TrimSpace(m.payload()); len(p) == 0 || bytes.Equal(p, []byte("null")) {
			return nil, fmt.Errorf("%w: missing %s", orch.ErrMalformed, m.kind.Field())
		}
		msg = m
	case core.EventLeaveRoom:
		var m leaveRoom
		if err := decodeData(env, &m); err != nil {
			return nil, err
		}
		msg = m
	case core.EventPing:
		msg = ping{}
	default:
		return nil, unknownEventError{event: env.Event}
	}
	return msg, nil
}

func decodeData(env core.Envelope, v any) error {
	if len(env.Data) == 0 {
		return fmt.Errorf("%w: no data", orch.ErrMalformed)
	}
	if err := json.Unmarshal(env.Data, v); err != nil {
		return fmt.Errorf("%w: %v", orch.ErrMalformed, err)
	}
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", orch.ErrMalformed, err)
	}
	return nil
}

func (ctl *SignalWSController) handleSignal(ctx context.Context, s *session, data []byte) {
	if !s.limiter.Allow() {
		log.Warn().Str("module", "signal").Str("sid", string(s.sid)).Msg("rate limited")
		ctl.Orch.SendError(s.conn, msgRateLimited)
		return
	}

	var env core.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("sid", string(s.sid)).Msg("bad json")
		ctl.Orch.SendError(s.conn, msgInvalidFrame)
		return
	}

	msg, err := decodeInbound(env, ctl.opts.MaxMessageLen)
	if err != nil {
		log.Info().Err(err).Str("module", "signal").Str("sid", string(s.sid)).Str("event", env.Event).Msg("rejected event")
		if _, ok := err.(unknownEventError); ok {
			ctl.Orch.SendError(s.conn, msgUnknownEvent)
			return
		}
		ctl.Orch.SendError(s.conn, "Invalid payload for "+env.Event)
		return
	}
	ctl.dispatch(ctx, s, msg)
}

// dispatch routes one decoded event to the coordinator. Authorization and
// room lookup live in the coordinator so every relay shares them.
func (ctl *SignalWSController) dispatch(ctx context.Context, s *session, msg inbound) {
	switch m := msg.(type) {
	case joinRoom:
		ctl.handleJoin(ctx, s, m)
	case sendMessage:
		_ = ctl.Orch.SendMessage(s.sid, s.conn, m.roomID(), m.Message, m.SenderName)
	case signalMessage:
		_ = ctl.Orch.RelaySignal(s.sid, s.conn, m.roomID(), m.kind, m.payload())
	case leaveRoom:
		_ = ctl.Orch.Leave(s.sid, s.conn, m.roomID())
	case ping:
		ctl.handlePing(s.conn)
	}
}

func (ctl *SignalWSController) handleJoin(ctx context.Context, s *session, m joinRoom) {
	role, _ := domain.ParseRole(m.UserRole)
	id, err := domain.NewIdentity(m.UserID, role, m.UserName)
	if err != nil {
		ctl.Orch.SendError(s.conn, "Invalid payload for "+core.EventJoinRoom)
		return
	}
	if err := ctl.Verifier.Verify(m.Token, id.ID, id.Role); err != nil {
		log.Info().Err(err).Str("module", "signal").Str("sid", string(s.sid)).Msg("join token rejected")
		ctl.Orch.SendError(s.conn, orch.MsgAccessDenied)
		return
	}
	_ = ctl.Orch.Join(ctx, s.sid, s.conn, m.roomID(), domain.NewMember(id, s.clientToken))
}
