package app

import (
	"context"
	"errors"
	"time"

	"github.com/dkeye/Consult/internal/core"
	"github.com/dkeye/Consult/internal/domain"
	"github.com/rs/zerolog/log"
)

// Policy decides whether an identity may enter a room right now.
type Policy interface {
	CanEnter(ctx context.Context, user domain.UserID, role domain.Role, room domain.RoomID) bool
}

// AccessPolicy checks entitlement against a fresh appointment snapshot on
// every call. It has no side effects and fails closed.
type AccessPolicy struct {
	Directory core.AppointmentDirectory
	// Timeout bounds a single directory lookup. Zero leaves the caller's deadline alone.
	Timeout time.Duration
	Now     func() time.Time
}

func NewAccessPolicy(dir core.AppointmentDirectory, timeout time.Duration) *AccessPolicy {
	return &AccessPolicy{Directory: dir, Timeout: timeout, Now: time.Now}
}

func (p *AccessPolicy) CanEnter(ctx context.Context, user domain.UserID, role domain.Role, room domain.RoomID) bool {
	if p == nil || p.Directory == nil {
		return false
	}
	logger := log.With().
		Str("module", "app.policy").
		Str("room", string(room)).
		Str("user", string(user)).
		Str("role", string(role)).
		Logger()

	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	appt, err := p.Directory.Appointment(ctx, room)
	switch {
	case errors.Is(err, domain.ErrAppointmentNotFound):
		logger.Info().Msg("no appointment for room")
		return false
	case err != nil:
		logger.Warn().Err(err).Msg("directory unavailable, denying")
		return false
	}

	if appt.Status != domain.StatusConfirmed {
		logger.Info().Str("status", string(appt.Status)).Msg("appointment not confirmed")
		return false
	}

	now := p.now()
	from, to := appt.Window()
	if now.Before(from) || now.After(to) {
		logger.Info().Time("now", now).Time("from", from).Time("to", to).Msg("outside entitlement window")
		return false
	}

	if !appt.Entitled(user, role) {
		logger.Info().Msg("identity not entitled")
		return false
	}
	return true
}

func (p *AccessPolicy) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}
