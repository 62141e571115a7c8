package orch

import (
	"context"

	"github.com/dkeye/Consult/internal/core"
	"github.com/dkeye/Consult/internal/domain"
	"github.com/rs/zerolog/log"
)

// Join admits sid into room if the policy allows it. The emptiness check, the
// registration and the presence update happen under the room lock, so of two
// simultaneous joiners exactly one sees the other and counts land in order.
func (o *Orchestrator) Join(ctx context.Context, sid core.SessionID, sig core.SignalConnection, room domain.RoomID, m *domain.Member) error {
	if !o.Policy.CanEnter(ctx, m.ID, m.Role, room) {
		log.Info().Str("module", "orch").Str("sid", string(sid)).Str("client", m.ClientToken).Str("room", string(room)).Msg("join denied")
		o.SendError(sig, MsgAccessDenied)
		return ErrAccessDenied
	}

	prevRoom, hadRoom := o.Registry.RoomOf(sid)

	o.Rooms.Do(room, func() {
		existing := o.Registry.RoomMates(sid, room)
		o.Registry.Register(sid, m, room, sig)

		if len(existing) > 0 {
			o.broadcast(existing, core.EventUserJoined, core.UserJoined{
				UserID:       m.ID,
				UserRole:     m.Role,
				UserName:     m.Name,
				ConnectionID: sid,
			})
			o.Send(sig, core.EventUserAlreadyInRoom, core.UserAlreadyInRoom{Message: MsgPeersPresent})
			log.Info().Str("module", "orch").Str("sid", string(sid)).Str("client", m.ClientToken).Str("room", string(room)).Int("peers", len(existing)).Msg("joined, peers present")
		} else {
			log.Info().Str("module", "orch").Str("sid", string(sid)).Str("client", m.ClientToken).Str("room", string(room)).Msg("joined, first in room")
		}
		o.Send(sig, core.EventJoinedRoom, core.JoinedRoom{RoomID: room, Message: MsgJoined})
		o.publishPresence(room, len(existing)+1)
	})

	if hadRoom && prevRoom != room {
		o.Rooms.Do(prevRoom, func() {
			o.publishPresence(prevRoom, len(o.Registry.MembersOfRoom(prevRoom)))
		})
	}
	return nil
}

// Leave removes sid from room and tells the remaining members.
func (o *Orchestrator) Leave(sid core.SessionID, sig core.SignalConnection, room domain.RoomID) error {
	var left bool
	o.Rooms.Do(room, func() {
		e, ok := o.Registry.Lookup(sid)
		if !ok || e.Room != room {
			return
		}
		o.Registry.Remove(sid)
		rest := o.Registry.MembersOfRoom(room)
		o.broadcast(rest, core.EventUserLeft, userLeft(e.Member))
		o.Send(sig, core.EventLeftRoom, core.LeftRoom{RoomID: room})
		o.publishPresence(room, len(rest))
		left = true
	})
	if !left {
		log.Info().Str("module", "orch").Str("sid", string(sid)).Str("room", string(room)).Msg("leave refused, not a member")
		o.SendError(sig, MsgLeaveNotAuthz)
		return ErrNotAuthorized
	}
	log.Info().Str("module", "orch").Str("sid", string(sid)).Str("room", string(room)).Msg("left room")
	return nil
}

// Disconnect is the implicit leave performed when the transport goes away.
func (o *Orchestrator) Disconnect(sid core.SessionID) {
	for {
		room, ok := o.Registry.RoomOf(sid)
		if !ok {
			return
		}
		var moved bool
		o.Rooms.Do(room, func() {
			e, ok := o.Registry.Lookup(sid)
			if !ok {
				return
			}
			if e.Room != room {
				moved = true
				return
			}
			o.Registry.Remove(sid)
			rest := o.Registry.MembersOfRoom(room)
			o.broadcast(rest, core.EventUserLeft, userLeft(e.Member))
			o.publishPresence(room, len(rest))
			log.Info().Str("module", "orch").Str("sid", string(sid)).Str("client", e.Member.ClientToken).Str("room", string(room)).Msg("disconnected from room")
		})
		if !moved {
			return
		}
	}
}

func userLeft(m *domain.Member) core.UserLeft {
	return core.UserLeft{UserID: m.ID, UserName: m.Name, UserRole: m.Role}
}
