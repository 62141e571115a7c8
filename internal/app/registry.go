package app

import (
	"sync"

	"github.com/dkeye/Consult/internal/core"
	"github.com/dkeye/Consult/internal/domain"
	"github.com/rs/zerolog/log"
)

// Entry is what the registry knows about one joined connection.
type Entry struct {
	Room   domain.RoomID
	Member *domain.Member
	Signal core.SignalConnection
}

// Registry maps live connections to the room they joined. Rooms are never
// stored on their own; membership is always derived from the entries.
type Registry struct {
	mu       sync.RWMutex
	sessions map[core.SessionID]Entry
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[core.SessionID]Entry),
	}
}

// Register inserts or replaces the entry for sid. A connection that joins a
// second room without leaving the first is simply re-registered.
func (r *Registry) Register(sid core.SessionID, member *domain.Member, room domain.RoomID, sig core.SignalConnection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev, replaced := r.sessions[sid]
	r.sessions[sid] = Entry{Room: room, Member: member, Signal: sig}
	ev := log.Info().Str("module", "app.registry").Str("sid", string(sid)).Str("room", string(room))
	if replaced && prev.Room != room {
		ev = ev.Str("prev_room", string(prev.Room))
	}
	ev.Msg("registered")
}

func (r *Registry) Lookup(sid core.SessionID) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.sessions[sid]
	return e, ok
}

// Remove deletes the entry for sid and returns it.
func (r *Registry) Remove(sid core.SessionID) (Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[sid]
	if !ok {
		return Entry{}, false
	}
	delete(r.sessions, sid)
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Str("room", string(e.Room)).Msg("unregistered")
	return e, true
}

// RoomOf reports the room sid is registered in.
func (r *Registry) RoomOf(sid core.SessionID) (domain.RoomID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.sessions[sid]
	if !ok {
		return "", false
	}
	return e.Room, true
}

type RegSnap struct {
	SID    core.SessionID
	Member *domain.Member
	Signal core.SignalConnection
}

// MembersOfRoom scans every entry. Rooms hold two participants in practice.
func (r *Registry) MembersOfRoom(room domain.RoomID) []RegSnap {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]RegSnap, 0, 2)
	for sid, e := range r.sessions {
		if e.Room == room {
			out = append(out, RegSnap{SID: sid, Member: e.Member, Signal: e.Signal})
		}
	}
	return out
}

// RoomMates is MembersOfRoom without sid itself.
func (r *Registry) RoomMates(sid core.SessionID, room domain.RoomID) []RegSnap {
	all := r.MembersOfRoom(room)
	out := all[:0]
	for _, s := range all {
		if s.SID != sid {
			out = append(out, s)
		}
	}
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Snapshot returns a read-only view of the room for APIs.
func (r *Registry) Snapshot(room domain.RoomID) []core.MemberDTO {
	snaps := r.MembersOfRoom(room)
	out := make([]core.MemberDTO, 0, len(snaps))
	for _, s := range snaps {
		out = append(out, core.MemberDTO{
			SID:      s.SID,
			ID:       s.Member.ID,
			Role:     s.Member.Role,
			Username: s.Member.Name,
		})
	}
	return out
}
