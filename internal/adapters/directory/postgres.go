package directory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Consult/internal/domain"
)

// appointmentByRoom reads the scheduling tables the web application owns.
const appointmentByRoom = `
SELECT a."status", a."date", a."patientId"::text, d."userId"::text
FROM "Appointment" a
JOIN "DoctorProfile" d ON d."id" = a."doctorProfileId"
WHERE a."roomId" = $1`

// Postgres looks appointments up in the application's relational store.
// Nothing is cached: every call is a fresh snapshot.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(ctx context.Context, url string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("directory: connect: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("directory: ping: %w", err)
	}
	log.Info().Str("module", "directory.postgres").Msg("connected")
	return &Postgres{pool: pool}, nil
}

func (p *Postgres) Appointment(ctx context.Context, room domain.RoomID) (domain.Appointment, error) {
	var (
		status    string
		startsAt  time.Time
		patient   string
		clinician string
	)
	err := p.pool.QueryRow(ctx, appointmentByRoom, string(room)).Scan(&status, &startsAt, &patient, &clinician)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Appointment{}, domain.ErrAppointmentNotFound
	}
	if err != nil {
		return domain.Appointment{}, fmt.Errorf("directory: query %s: %w", room, err)
	}
	st, err := domain.ParseAppointmentStatus(status)
	if err != nil {
		return domain.Appointment{}, fmt.Errorf("directory: room %s: %w", room, err)
	}
	return domain.Appointment{
		RoomID:      room,
		Status:      st,
		StartsAt:    startsAt,
		PatientID:   domain.UserID(patient),
		ClinicianID: domain.UserID(clinician),
	}, nil
}

func (p *Postgres) Close() {
	p.pool.Close()
	log.Info().Str("module", "directory.postgres").Msg("closed")
}
