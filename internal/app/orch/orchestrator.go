package orch

import (
	"context"
	"errors"
	"time"

	"github.com/dkeye/Consult/internal/app"
	"github.com/dkeye/Consult/internal/core"
	"github.com/dkeye/Consult/internal/domain"
	"github.com/rs/zerolog/log"
)

var (
	ErrAccessDenied  = errors.New("access denied")
	ErrNotAuthorized = errors.New("not authorized")
	ErrMalformed     = errors.New("malformed payload")
)

// Client-facing texts for the error event.
const (
	MsgAccessDenied     = "Access denied to this room"
	MsgChatNotAuthz     = "Not authorized to send messages in this room"
	MsgWebRTCNotAuthz   = "Not authorized for WebRTC in this room"
	MsgLeaveNotAuthz    = "Not authorized to leave this room"
	MsgJoined           = "Successfully joined room"
	MsgPeersPresent     = "Other users are in the room"
	presencePublishWait = 2 * time.Second
)

// Orchestrator owns join/leave semantics and the chat and signaling relays.
// Every outbound event goes through it.
type Orchestrator struct {
	Registry *app.Registry
	Rooms    *app.RoomManager
	Policy   app.Policy
	// Presence is optional.
	Presence core.PresenceSink
	Now      func() time.Time
}

func New(reg *app.Registry, rooms *app.RoomManager, policy app.Policy) *Orchestrator {
	return &Orchestrator{
		Registry: reg,
		Rooms:    rooms,
		Policy:   policy,
		Now:      time.Now,
	}
}

func (o *Orchestrator) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

// Send delivers one event to one connection. Delivery is best effort.
func (o *Orchestrator) Send(sig core.SignalConnection, event string, data any) {
	if sig == nil {
		return
	}
	f, err := core.EncodeEvent(event, data)
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Str("event", event).Msg("encode")
		return
	}
	if err := sig.TrySend(f); err != nil {
		log.Warn().Err(err).Str("module", "orch").Str("event", event).Msg("dropped outbound event")
	}
}

// SendError reports a failure to the offending connection only.
func (o *Orchestrator) SendError(sig core.SignalConnection, msg string) {
	o.Send(sig, core.EventError, core.ErrorEvent{Message: msg})
}

func (o *Orchestrator) broadcast(to []app.RegSnap, event string, data any) int {
	if len(to) == 0 {
		return 0
	}
	f, err := core.EncodeEvent(event, data)
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Str("event", event).Msg("encode")
		return 0
	}
	sent := 0
	for _, snap := range to {
		if err := snap.Signal.TrySend(f); err != nil {
			log.Warn().Err(err).Str("module", "orch").Str("event", event).Str("to", string(snap.SID)).Msg("dropped outbound event")
			continue
		}
		sent++
	}
	return sent
}

func (o *Orchestrator) publishPresence(room domain.RoomID, members int) {
	if o.Presence == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), presencePublishWait)
	defer cancel()
	if err := o.Presence.RoomPresence(ctx, room, members); err != nil {
		log.Warn().Err(err).Str("module", "orch").Str("room", string(room)).Msg("presence publish failed")
	}
}
