package booking

import (
	"time"

	"github.com/google/uuid"
)

// Doctor belongs to exactly one tenant and offers zero or more services.
type Doctor struct {
	ID        uuid.UUID
	TenantID  uuid.UUID
	NameAR    string
	NameEN    string
	Specialty string
	IsActive  bool
}

// DisplayName picks the localized doctor name, falling back to Arabic.
func (d *Doctor) DisplayName(arabic bool) string {
	if arabic || d.NameEN == "" {
		return d.NameAR
	}
	return d.NameEN
}

// Service is a bookable offering of a tenant.
type Service struct {
	ID              uuid.UUID
	TenantID        uuid.UUID
	NameAR          string
	NameEN          string
	DurationMinutes int
	Price           *float64
	IsActive        bool
}

// DisplayName picks the localized service name, falling back to Arabic.
func (s *Service) DisplayName(arabic bool) string {
	if arabic || s.NameEN == "" {
		return s.NameAR
	}
	return s.NameEN
}

// Schedule is a doctor's recurring weekly working window for one day of week
// (0=Sunday..6=Saturday). Times are "HH:mm" strings compared lexically.
type Schedule struct {
	ID         uuid.UUID
	DoctorID   uuid.UUID
	DayOfWeek  int
	IsActive   bool
	StartTime  string
	EndTime    string
	BreakStart string
	BreakEnd   string
}

// ScheduleException overrides the weekly schedule for one calendar date:
// either fully closed, or open with custom hours.
type ScheduleException struct {
	ID          uuid.UUID
	DoctorID    uuid.UUID
	Date        time.Time
	IsClosed    bool
	CustomStart string
	CustomEnd   string
}

// HasCustomHours reports whether the exception replaces the day's hours
// rather than closing the day.
func (e *ScheduleException) HasCustomHours() bool {
	return !e.IsClosed && e.CustomStart != "" && e.CustomEnd != ""
}
