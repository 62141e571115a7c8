// Package directory holds the appointment directory backends.
package directory

import (
	"context"
	"fmt"
	"sync"

	"github.com/dkeye/Consult/internal/config"
	"github.com/dkeye/Consult/internal/domain"
)

// Memory is a map-backed directory for development and tests.
type Memory struct {
	mu    sync.RWMutex
	appts map[domain.RoomID]domain.Appointment
}

func NewMemory() *Memory {
	return &Memory{appts: make(map[domain.RoomID]domain.Appointment)}
}

// NewMemoryFromSeed builds a directory from the seed section of the config.
func NewMemoryFromSeed(seed []config.SeedAppointment) (*Memory, error) {
	m := NewMemory()
	for _, s := range seed {
		room, err := domain.ParseRoomID(s.RoomID)
		if err != nil {
			return nil, fmt.Errorf("seed %q: %w", s.RoomID, err)
		}
		status, err := domain.ParseAppointmentStatus(s.Status)
		if err != nil {
			return nil, fmt.Errorf("seed %q: %w", s.RoomID, err)
		}
		m.Put(domain.Appointment{
			RoomID:      room,
			Status:      status,
			StartsAt:    s.StartsAt,
			PatientID:   domain.UserID(s.PatientID),
			ClinicianID: domain.UserID(s.ClinicianID),
		})
	}
	return m, nil
}

func (m *Memory) Put(a domain.Appointment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.appts[a.RoomID] = a
}

// SetStatus changes the status of a stored appointment.
func (m *Memory) SetStatus(room domain.RoomID, st domain.AppointmentStatus) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.appts[room]
	if !ok {
		return false
	}
	a.Status = st
	m.appts[room] = a
	return true
}

func (m *Memory) Appointment(ctx context.Context, room domain.RoomID) (domain.Appointment, error) {
	if err := ctx.Err(); err != nil {
		return domain.Appointment{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.appts[room]
	if !ok {
		return domain.Appointment{}, domain.ErrAppointmentNotFound
	}
	return a, nil
}

func (m *Memory) Close() {}
