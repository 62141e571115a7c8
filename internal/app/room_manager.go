package app

import (
	"sync"

	"github.com/dkeye/Consult/internal/domain"
)

type roomLock struct {
	mu   sync.Mutex
	refs int
}

// RoomManager serializes membership changes per room. Each room id gets its
// own mutex for as long as some handler holds or waits on it, so unrelated
// rooms never contend.
type RoomManager struct {
	mu    sync.Mutex
	rooms map[domain.RoomID]*roomLock
}

func NewRoomManager() *RoomManager {
	return &RoomManager{rooms: make(map[domain.RoomID]*roomLock)}
}

// Do runs fn while holding the lock for room.
func (m *RoomManager) Do(room domain.RoomID, fn func()) {
	l := m.acquire(room)
	l.mu.Lock()
	defer m.release(room, l)
	fn()
}

func (m *RoomManager) acquire(room domain.RoomID) *roomLock {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.rooms[room]
	if !ok {
		l = &roomLock{}
		m.rooms[room] = l
	}
	l.refs++
	return l
}

func (m *RoomManager) release(room domain.RoomID, l *roomLock) {
	l.mu.Unlock()
	m.mu.Lock()
	defer m.mu.Unlock()
	l.refs--
	if l.refs == 0 {
		delete(m.rooms, room)
	}
}

// Active reports how many rooms currently have a handler inside or waiting.
func (m *RoomManager) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rooms)
}
