package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dkeye/Consult/internal/domain"
)

type stubDirectory struct {
	appt  domain.Appointment
	err   error
	calls int
	block bool
}

func (d *stubDirectory) Appointment(ctx context.Context, room domain.RoomID) (domain.Appointment, error) {
	d.calls++
	if d.block {
		<-ctx.Done()
		return domain.Appointment{}, ctx.Err()
	}
	if d.err != nil {
		return domain.Appointment{}, d.err
	}
	if room != d.appt.RoomID {
		return domain.Appointment{}, domain.ErrAppointmentNotFound
	}
	return d.appt, nil
}

var policyStart = time.Date(2026, 5, 4, 14, 30, 0, 0, time.UTC)

func confirmed() *stubDirectory {
	return &stubDirectory{appt: domain.Appointment{
		RoomID:      "room-1",
		Status:      domain.StatusConfirmed,
		StartsAt:    policyStart,
		PatientID:   "10",
		ClinicianID: "20",
	}}
}

func policyAt(dir *stubDirectory, now time.Time) *AccessPolicy {
	return &AccessPolicy{Directory: dir, Now: func() time.Time { return now }}
}

func TestCanEnterWindow(t *testing.T) {
	cases := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"one second early", policyStart.Add(-time.Second), false},
		{"exactly at start", policyStart, true},
		{"mid session", policyStart.Add(30 * time.Minute), true},
		{"exactly at end", policyStart.Add(60 * time.Minute), true},
		{"one nanosecond late", policyStart.Add(60*time.Minute + time.Nanosecond), false},
		{"sixty one minutes", policyStart.Add(61 * time.Minute), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := policyAt(confirmed(), tc.at)
			if got := p.CanEnter(context.Background(), "10", domain.RolePatient, "room-1"); got != tc.want {
				t.Fatalf("CanEnter = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCanEnterStatus(t *testing.T) {
	for _, st := range []domain.AppointmentStatus{domain.StatusPending, domain.StatusRejected, domain.StatusCompleted} {
		dir := confirmed()
		dir.appt.Status = st
		p := policyAt(dir, policyStart.Add(time.Minute))
		if p.CanEnter(context.Background(), "10", domain.RolePatient, "room-1") {
			t.Fatalf("status %s admitted", st)
		}
	}
}

func TestCanEnterIdentity(t *testing.T) {
	p := policyAt(confirmed(), policyStart.Add(5*time.Minute))
	ctx := context.Background()
	cases := []struct {
		id   domain.UserID
		role domain.Role
		want bool
	}{
		{"10", domain.RolePatient, true},
		{"20", domain.RoleDoctor, true},
		{"20", domain.RolePatient, false},
		{"10", domain.RoleDoctor, false},
		{"30", domain.RolePatient, false},
		{"", domain.RolePatient, false},
		{"10", domain.Role("ADMIN"), false},
	}
	for _, tc := range cases {
		if got := p.CanEnter(ctx, tc.id, tc.role, "room-1"); got != tc.want {
			t.Errorf("CanEnter(%s, %s) = %v, want %v", tc.id, tc.role, got, tc.want)
		}
	}
}

func TestCanEnterFailsClosed(t *testing.T) {
	now := policyStart.Add(5 * time.Minute)
	ctx := context.Background()

	if policyAt(confirmed(), now).CanEnter(ctx, "10", domain.RolePatient, "unknown-room") {
		t.Fatal("unknown room admitted")
	}

	broken := confirmed()
	broken.err = errors.New("dial tcp: connection refused")
	if policyAt(broken, now).CanEnter(ctx, "10", domain.RolePatient, "room-1") {
		t.Fatal("directory error admitted")
	}

	var nilPolicy *AccessPolicy
	if nilPolicy.CanEnter(ctx, "10", domain.RolePatient, "room-1") {
		t.Fatal("nil policy admitted")
	}
}

func TestCanEnterTimeoutDenies(t *testing.T) {
	dir := confirmed()
	dir.block = true
	p := policyAt(dir, policyStart.Add(5*time.Minute))
	p.Timeout = 20 * time.Millisecond

	begin := time.Now()
	if p.CanEnter(context.Background(), "10", domain.RolePatient, "room-1") {
		t.Fatal("timed out lookup admitted")
	}
	if elapsed := time.Since(begin); elapsed > time.Second {
		t.Fatalf("lookup took %s", elapsed)
	}
}

func TestCanEnterIdempotent(t *testing.T) {
	dir := confirmed()
	p := policyAt(dir, policyStart.Add(5*time.Minute))
	first := p.CanEnter(context.Background(), "10", domain.RolePatient, "room-1")
	second := p.CanEnter(context.Background(), "10", domain.RolePatient, "room-1")
	if first != second || !first {
		t.Fatalf("first=%v second=%v", first, second)
	}
	if dir.calls != 2 {
		t.Fatalf("directory consulted %d times, want a fresh lookup per call", dir.calls)
	}
}
