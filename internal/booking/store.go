package booking

import (
	"context"
	"errors"
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

// Store provides doctor, service, and schedule lookups.
type Store struct {
	db DB
}

// NewStore creates a booking store.
func NewStore(db DB) *Store {
	return &Store{db: db}
}

// ActiveServices lists a tenant's active services ordered by Arabic name.
func (s *Store) ActiveServices(ctx context.Context, tenantID uuid.UUID) ([]Service, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, tenant_id, name_ar, name_en, duration_minutes, price, is_active
		FROM services
		WHERE tenant_id = $1 AND is_active
		ORDER BY name_ar ASC`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("booking: list services: %w", err)
	}
	defer rows.Close()
	return scanServices(rows)
}

// Service returns one service by id, or nil when missing.
func (s *Store) Service(ctx context.Context, id uuid.UUID) (*Service, error) {
	var svc Service
	var nameEN *string
	err := s.db.QueryRow(ctx, `
		SELECT id, tenant_id, name_ar, name_en, duration_minutes, price, is_active
		FROM services WHERE id = $1`, id).
		Scan(&svc.ID, &svc.TenantID, &svc.NameAR, &nameEN, &svc.DurationMinutes, &svc.Price, &svc.IsActive)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("booking: get service: %w", err)
	}
	if nameEN != nil {
		svc.NameEN = *nameEN
	}
	return &svc, nil
}

// DoctorsForService lists a tenant's active doctors offering a service,
// ordered by Arabic name.
func (s *Store) DoctorsForService(ctx context.Context, tenantID, serviceID uuid.UUID) ([]Doctor, error) {
	rows, err := s.db.Query(ctx, `
		SELECT d.id, d.tenant_id, d.name_ar, d.name_en, d.specialty, d.is_active
		FROM doctors d
		JOIN doctor_services ds ON ds.doctor_id = d.id
		WHERE d.tenant_id = $1 AND ds.service_id = $2 AND d.is_active
		ORDER BY d.name_ar ASC`, tenantID, serviceID)
	if err != nil {
		return nil, fmt.Errorf("booking: list doctors for service: %w", err)
	}
	defer rows.Close()
	return scanDoctors(rows)
}

// Doctor returns one doctor by id, or nil when missing.
func (s *Store) Doctor(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	var d Doctor
	var nameEN, specialty *string
	err := s.db.QueryRow(ctx, `
		SELECT id, tenant_id, name_ar, name_en, specialty, is_active
		FROM doctors WHERE id = $1`, id).
		Scan(&d.ID, &d.TenantID, &d.NameAR, &nameEN, &specialty, &d.IsActive)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("booking: get doctor: %w", err)
	}
	if nameEN != nil {
		d.NameEN = *nameEN
	}
	if specialty != nil {
		d.Specialty = *specialty
	}
	return &d, nil
}

// ScheduleFor returns the doctor's weekly schedule row for a day of week,
// or nil when none is defined.
func (s *Store) ScheduleFor(ctx context.Context, doctorID uuid.UUID, dayOfWeek int) (*Schedule, error) {
	var sch Schedule
	var breakStart, breakEnd *string
	err := s.db.QueryRow(ctx, `
		SELECT id, doctor_id, day_of_week, is_active, start_time, end_time, break_start, break_end
		FROM schedules
		WHERE doctor_id = $1 AND day_of_week = $2`, doctorID, dayOfWeek).
		Scan(&sch.ID, &sch.DoctorID, &sch.DayOfWeek, &sch.IsActive, &sch.StartTime, &sch.EndTime, &breakStart, &breakEnd)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("booking: get schedule: %w", err)
	}
	if breakStart != nil {
		sch.BreakStart = *breakStart
	}
	if breakEnd != nil {
		sch.BreakEnd = *breakEnd
	}
	return &sch, nil
}

// ExceptionFor returns the doctor's schedule exception for a calendar date,
// or nil when none exists.
func (s *Store) ExceptionFor(ctx context.Context, doctorID uuid.UUID, date time.Time) (*ScheduleException, error) {
	var e ScheduleException
	var customStart, customEnd *string
	err := s.db.QueryRow(ctx, `
		SELECT id, doctor_id, date, is_closed, custom_start, custom_end
		FROM schedule_exceptions
		WHERE doctor_id = $1 AND date = $2`, doctorID, date.Format(time.DateOnly)).
		Scan(&e.ID, &e.DoctorID, &e.Date, &e.IsClosed, &customStart, &customEnd)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("booking: get schedule exception: %w", err)
	}
	if customStart != nil {
		e.CustomStart = *customStart
	}
	if customEnd != nil {
		e.CustomEnd = *customEnd
	}
	return &e, nil
}

// BookedTimes returns the set of "HH:mm" start times already taken by
// PENDING or CONFIRMED appointments for a doctor on a date. Times are
// rendered in the given location.
func (s *Store) BookedTimes(ctx context.Context, doctorID uuid.UUID, dayStart, dayEnd time.Time, loc *time.Location) (map[string]struct{}, error) {
	rows, err := s.db.Query(ctx, `
		SELECT scheduled_at
		FROM appointments
		WHERE doctor_id = $1
		  AND scheduled_at >= $2 AND scheduled_at < $3
		  AND status IN ('PENDING', 'CONFIRMED')`, doctorID, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("booking: list booked times: %w", err)
	}
	defer rows.Close()

	booked := make(map[string]struct{})
	for rows.Next() {
		var at time.Time
		if err := rows.Scan(&at); err != nil {
			return nil, fmt.Errorf("booking: scan booked time: %w", err)
		}
		booked[at.In(loc).Format("15:04")] = struct{}{}
	}
	return booked, rows.Err()
}

func scanServices(rows pgx.Rows) ([]Service, error) {
	var services []Service
	for rows.Next() {
		var svc Service
		var nameEN *string
		if err := rows.Scan(&svc.ID, &svc.TenantID, &svc.NameAR, &nameEN, &svc.DurationMinutes, &svc.Price, &svc.IsActive); err != nil {
			return nil, fmt.Errorf("booking: scan service: %w", err)
		}
		if nameEN != nil {
			svc.NameEN = *nameEN
		}
		services = append(services, svc)
	}
	return services, rows.Err()
}

func scanDoctors(rows pgx.Rows) ([]Doctor, error) {
	var doctors []Doctor
	for rows.Next() {
		var d Doctor
		var nameEN, specialty *string
		if err := rows.Scan(&d.ID, &d.TenantID, &d.NameAR, &nameEN, &specialty, &d.IsActive); err != nil {
			return nil, fmt.Errorf("booking: scan doctor: %w", err)
		}
		if nameEN != nil {
			d.NameEN = *nameEN
		}
		if specialty != nil {
			d.Specialty = *specialty
		}
		doctors = append(doctors, d)
	}
	return doctors, rows.Err()
}
