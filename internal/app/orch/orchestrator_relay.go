package orch

import (
	"github.com/goccy/go-json"

	"github.com/dkeye/Consult/internal/app"
	"github.com/dkeye/Consult/internal/core"
	"github.com/dkeye/Consult/internal/domain"
	"github.com/rs/zerolog/log"
)

const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// authorize returns sid's entry if it is registered in room.
func (o *Orchestrator) authorize(sid core.SessionID, room domain.RoomID) (app.Entry, bool) {
	e, ok := o.Registry.Lookup(sid)
	if !ok || e.Room != room {
		return app.Entry{}, false
	}
	return e, true
}

// SendMessage broadcasts chat text to every member of room, sender included.
// The sender's id and role come from the registry; the display name falls
// back to the one sent with the message only if none was given at join.
func (o *Orchestrator) SendMessage(sid core.SessionID, sig core.SignalConnection, room domain.RoomID, text, senderName string) error {
	e, ok := o.authorize(sid, room)
	if !ok {
		log.Info().Str("module", "orch").Str("sid", string(sid)).Str("room", string(room)).Msg("chat refused")
		o.SendError(sig, MsgChatNotAuthz)
		return ErrNotAuthorized
	}
	name := e.Member.Name
	if name == "" {
		name = senderName
	}
	sent := o.broadcast(o.Registry.MembersOfRoom(room), core.EventReceiveMessage, core.ReceiveMessage{
		Message:    text,
		SenderName: name,
		SenderRole: e.Member.Role,
		Timestamp:  o.now().UTC().Format(timestampLayout),
		SenderID:   e.Member.ID,
	})
	log.Debug().Str("module", "orch").Str("sid", string(sid)).Str("room", string(room)).Int("sent_to", sent).Msg("chat relayed")
	return nil
}

// RelaySignal forwards a negotiation payload untouched to every other member.
func (o *Orchestrator) RelaySignal(sid core.SessionID, sig core.SignalConnection, room domain.RoomID, kind core.SignalKind, payload json.RawMessage) error {
	e, ok := o.authorize(sid, room)
	if !ok {
		log.Info().Str("module", "orch").Str("sid", string(sid)).Str("room", string(room)).Str("kind", string(kind)).Msg("signal refused")
		o.SendError(sig, MsgWebRTCNotAuthz)
		return ErrNotAuthorized
	}
	out := map[string]any{
		kind.Field():         payload,
		"senderId":           e.Member.ID,
		"senderConnectionId": sid,
	}
	sent := o.broadcast(o.Registry.RoomMates(sid, room), string(kind), out)
	log.Debug().Str("module", "orch").Str("sid", string(sid)).Str("room", string(room)).Str("kind", string(kind)).Int("sent_to", sent).Msg("signal relayed")
	return nil
}
