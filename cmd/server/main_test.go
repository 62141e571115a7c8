package main

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/dkeye/Consult/internal/domain"
)

type steps struct {
	mu  sync.Mutex
	log []string
}

func (s *steps) add(step string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log = append(s.log, step)
}

type stepDirectory struct{ s *steps }

func (d stepDirectory) Appointment(context.Context, domain.RoomID) (domain.Appointment, error) {
	return domain.Appointment{}, domain.ErrAppointmentNotFound
}
func (d stepDirectory) Close() { d.s.add("directory") }

type stepDrainer struct{ s *steps }

func (d stepDrainer) Wait() {
	time.Sleep(10 * time.Millisecond)
	d.s.add("pumps")
}

type stepCloser struct{ s *steps }

func (c stepCloser) Close() error {
	c.s.add("presence")
	return nil
}

func TestShutdownClosesPresenceAfterPumps(t *testing.T) {
	s := &steps{}
	shutdown(&http.Server{}, stepDirectory{s}, stepDrainer{s}, stepCloser{s}, time.Second)

	want := []string{"directory", "pumps", "presence"}
	if len(s.log) != len(want) {
		t.Fatalf("steps = %v", s.log)
	}
	for i := range want {
		if s.log[i] != want[i] {
			t.Fatalf("steps = %v, want %v", s.log, want)
		}
	}
}
