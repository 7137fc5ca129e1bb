package appointment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB abstracts the pgx query interface for testing.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store persists appointments.
type Store struct {
	db DB
}

// NewStore creates an appointment store.
func NewStore(db DB) *Store {
	return &Store{db: db}
}

const appointmentCols = `id, tenant_id, patient_id, doctor_id, service_id, scheduled_at, status, created_at`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.TenantID, &a.PatientID, &a.DoctorID, &a.ServiceID, &a.ScheduledAt, &a.Status, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Create inserts a confirmed appointment and returns it. A nil serviceID is
// allowed for bookings made without a service selection.
func (s *Store) Create(ctx context.Context, tenantID, patientID, doctorID uuid.UUID, serviceID *uuid.UUID, at time.Time) (*Appointment, error) {
	row := s.db.QueryRow(ctx, `
		INSERT INTO appointments (id, tenant_id, patient_id, doctor_id, service_id, scheduled_at, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+appointmentCols,
		uuid.New(), tenantID, patientID, doctorID, serviceID, at.UTC(), string(StatusConfirmed), time.Now().UTC())
	a, err := scanAppointment(row)
	if err != nil {
		return nil, fmt.Errorf("appointment: create: %w", err)
	}
	return a, nil
}

// CountCreatedSince counts non-cancelled appointments a tenant created in the
// current billing window. Cancelled bookings do not refund quota elsewhere;
// they are excluded here only so abandoned mistakes do not eat the limit.
func (s *Store) CountCreatedSince(ctx context.Context, tenantID uuid.UUID, since time.Time) (int, error) {
	var n int
	err := s.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM appointments
		WHERE tenant_id = $1 AND created_at >= $2 AND status <> $3`,
		tenantID, since.UTC(), string(StatusCancelled)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("appointment: count created: %w", err)
	}
	return n, nil
}

// ListUpcomingConfirmed returns the patient's next confirmed appointments in
// ascending time order, capped at limit.
func (s *Store) ListUpcomingConfirmed(ctx context.Context, tenantID, patientID uuid.UUID, limit int) ([]*Appointment, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+appointmentCols+` FROM appointments
		WHERE tenant_id = $1 AND patient_id = $2 AND status = $3 AND scheduled_at > $4
		ORDER BY scheduled_at ASC
		LIMIT $5`,
		tenantID, patientID, string(StatusConfirmed), time.Now().UTC(), limit)
	if err != nil {
		return nil, fmt.Errorf("appointment: list upcoming: %w", err)
	}
	defer rows.Close()

	var out []*Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("appointment: scan: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// GetConfirmed loads a confirmed appointment owned by the given patient, or
// nil when it does not exist or is no longer confirmed.
func (s *Store) GetConfirmed(ctx context.Context, id, patientID uuid.UUID) (*Appointment, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+appointmentCols+` FROM appointments
		WHERE id = $1 AND patient_id = $2 AND status = $3`,
		id, patientID, string(StatusConfirmed))
	a, err := scanAppointment(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("appointment: get confirmed: %w", err)
	}
	return a, nil
}

// ByID loads an appointment by primary key, or nil when missing.
func (s *Store) ByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := s.db.QueryRow(ctx, `SELECT `+appointmentCols+` FROM appointments WHERE id = $1`, id)
	a, err := scanAppointment(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("appointment: get: %w", err)
	}
	return a, nil
}

// Cancel marks a confirmed appointment cancelled. Returns false when the row
// was not confirmed anymore, making cancellation race-safe and idempotent.
func (s *Store) Cancel(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE appointments SET status = $1 WHERE id = $2 AND status = $3`,
		string(StatusCancelled), id, string(StatusConfirmed))
	if err != nil {
		return false, fmt.Errorf("appointment: cancel: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Reschedule moves a confirmed appointment to a new time and clears its
// reminder flags so the new slot gets a fresh pair.
func (s *Store) Reschedule(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE appointments
		SET scheduled_at = $1, reminder_24h_sent = FALSE, reminder_2h_sent = FALSE
		WHERE id = $2 AND status = $3`,
		at.UTC(), id, string(StatusConfirmed))
	if err != nil {
		return false, fmt.Errorf("appointment: reschedule: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// MarkReminderSent flags the given reminder kind ("24h" or "2h") as delivered.
func (s *Store) MarkReminderSent(ctx context.Context, id uuid.UUID, kind string) error {
	col := "reminder_24h_sent"
	if kind == "2h" {
		col = "reminder_2h_sent"
	}
	_, err := s.db.Exec(ctx, `UPDATE appointments SET `+col+` = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("appointment: mark reminder: %w", err)
	}
	return nil
}
