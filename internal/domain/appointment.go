package domain

import (
	"errors"
	"strings"
	"time"
)

// EntitlementWindow is how long after its scheduled start a confirmed
// appointment's room stays open to its participants.
const EntitlementWindow = 60 * time.Minute

var (
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrUnknownStatus       = errors.New("unknown appointment status")
)

type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "PENDING"
	StatusConfirmed AppointmentStatus = "CONFIRMED"
	StatusRejected  AppointmentStatus = "REJECTED"
	StatusCompleted AppointmentStatus = "COMPLETED"
)

func ParseAppointmentStatus(s string) (AppointmentStatus, error) {
	switch st := AppointmentStatus(strings.ToUpper(strings.TrimSpace(s))); st {
	case StatusPending, StatusConfirmed, StatusRejected, StatusCompleted:
		return st, nil
	}
	return "", ErrUnknownStatus
}

// Appointment is a read-only snapshot fetched from the appointment directory.
type Appointment struct {
	RoomID      RoomID
	Status      AppointmentStatus
	StartsAt    time.Time
	PatientID   UserID
	ClinicianID UserID
}

// Window returns the inclusive interval during which the room may be entered.
func (a Appointment) Window() (from, to time.Time) {
	return a.StartsAt, a.StartsAt.Add(EntitlementWindow)
}

// Entitled reports whether id is the participant the appointment names for role.
func (a Appointment) Entitled(id UserID, role Role) bool {
	switch role {
	case RolePatient:
		return id != "" && id == a.PatientID
	case RoleDoctor:
		return id != "" && id == a.ClinicianID
	}
	return false
}
