package appointment

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status is the appointment lifecycle state.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusCancelled Status = "CANCELLED"
	StatusNoShow    Status = "NO_SHOW"
	StatusCompleted Status = "COMPLETED"
)

// Appointment is a booked slot for a patient with a doctor.
type Appointment struct {
	ID          uuid.UUID
	TenantID    uuid.UUID
	PatientID   uuid.UUID
	DoctorID    uuid.UUID
	ServiceID   *uuid.UUID
	ScheduledAt time.Time
	Status      Status
	CreatedAt   time.Time
}

// Reference is the short booking code shown to patients: the last six hex
// characters of the appointment id, uppercased.
func (a *Appointment) Reference() string {
	s := strings.ReplaceAll(a.ID.String(), "-", "")
	return strings.ToUpper(s[len(s)-6:])
}
