package app

import (
	"testing"

	"github.com/dkeye/Consult/internal/core"
	"github.com/dkeye/Consult/internal/domain"
)

type nopConn struct{}

func (nopConn) TrySend(core.Frame) error { return nil }
func (nopConn) Close()                   {}

func member(id string) *domain.Member {
	return domain.NewMember(domain.Identity{ID: domain.UserID(id), Role: domain.RolePatient, Name: id}, "")
}

func TestRegistryLifecycle(t *testing.T) {
	r := NewRegistry()
	if _, ok := r.Lookup("a"); ok {
		t.Fatal("lookup on empty registry")
	}

	r.Register("a", member("1"), "room", nopConn{})
	r.Register("b", member("2"), "room", nopConn{})
	r.Register("c", member("3"), "other", nopConn{})

	e, ok := r.Lookup("a")
	if !ok || e.Room != "room" || e.Member.ID != "1" {
		t.Fatalf("lookup a = %+v, %v", e, ok)
	}
	if n := len(r.MembersOfRoom("room")); n != 2 {
		t.Fatalf("room members = %d", n)
	}
	mates := r.RoomMates("a", "room")
	if len(mates) != 1 || mates[0].SID != "b" {
		t.Fatalf("mates = %+v", mates)
	}

	if _, ok := r.Remove("a"); !ok {
		t.Fatal("remove a")
	}
	if _, ok := r.Remove("a"); ok {
		t.Fatal("second remove reported an entry")
	}
	if n := len(r.MembersOfRoom("room")); n != 1 {
		t.Fatalf("room members after remove = %d", n)
	}
	if r.Len() != 2 {
		t.Fatalf("len = %d", r.Len())
	}
}

func TestRegistryLastWriteWins(t *testing.T) {
	r := NewRegistry()
	r.Register("a", member("1"), "first", nopConn{})
	r.Register("a", member("1"), "second", nopConn{})

	if room, _ := r.RoomOf("a"); room != "second" {
		t.Fatalf("room = %q", room)
	}
	if n := len(r.MembersOfRoom("first")); n != 0 {
		t.Fatalf("first room still has %d members", n)
	}
	if r.Len() != 1 {
		t.Fatalf("len = %d", r.Len())
	}
}

func TestRegistrySnapshot(t *testing.T) {
	r := NewRegistry()
	r.Register("a", member("1"), "room", nopConn{})
	snap := r.Snapshot("room")
	if len(snap) != 1 || snap[0].SID != "a" || snap[0].ID != "1" || snap[0].Role != domain.RolePatient {
		t.Fatalf("snapshot = %+v", snap)
	}
}
