package core

import (
	"context"

	"github.com/dkeye/Consult/internal/domain"
)

// Frame is a raw encoded outbound message.
type Frame []byte

// SessionID identifies one live transport session (one browser tab).
type SessionID string

// SignalConnection abstracts for a system messaging transport
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}

// AppointmentDirectory is the read-only view of the scheduling store.
// Implementations return domain.ErrAppointmentNotFound for unknown rooms.
type AppointmentDirectory interface {
	Appointment(ctx context.Context, room domain.RoomID) (domain.Appointment, error)
}

// PresenceSink receives the member count of a room after every membership change.
type PresenceSink interface {
	RoomPresence(ctx context.Context, room domain.RoomID, members int) error
}

// MemberDTO is a read-only view for APIs (no transport fields).
type MemberDTO struct {
	SID      SessionID     `json:"connectionId"`
	ID       domain.UserID `json:"userId"`
	Role     domain.Role   `json:"userRole"`
	Username string        `json:"userName"`
}
