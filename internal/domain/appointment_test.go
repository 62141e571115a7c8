package domain

import (
	"testing"
	"time"
)

func TestAppointmentWindowAndEntitlement(t *testing.T) {
	start := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	a := Appointment{RoomID: "R1", Status: StatusConfirmed, StartsAt: start, PatientID: "1", ClinicianID: "2"}

	from, to := a.Window()
	if !from.Equal(start) || !to.Equal(start.Add(time.Hour)) {
		t.Fatalf("window = %s..%s", from, to)
	}

	cases := []struct {
		id   UserID
		role Role
		want bool
	}{
		{"1", RolePatient, true},
		{"2", RoleDoctor, true},
		{"2", RolePatient, false},
		{"1", RoleDoctor, false},
		{"", RolePatient, false},
		{"1", Role("ADMIN"), false},
	}
	for _, c := range cases {
		if got := a.Entitled(c.id, c.role); got != c.want {
			t.Errorf("Entitled(%q, %q) = %v, want %v", c.id, c.role, got, c.want)
		}
	}
}

func TestParseAppointmentStatus(t *testing.T) {
	if st, err := ParseAppointmentStatus(" confirmed "); err != nil || st != StatusConfirmed {
		t.Fatalf("got %q, %v", st, err)
	}
	if _, err := ParseAppointmentStatus("CANCELLED"); err != ErrUnknownStatus {
		t.Fatalf("err = %v", err)
	}
}
