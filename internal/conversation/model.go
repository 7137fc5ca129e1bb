// Package conversation implements the per-(tenant, phone) state machine that
// drives booking, cancellation, and rescheduling over WhatsApp.
package conversation

import (
	"time"

	"github.com/google/uuid"
)

// State is the conversation's position in the flow.
type State string

const (
	StateIdle                State = "IDLE"
	StateMainMenu            State = "MAIN_MENU"
	StateSelectingService    State = "SELECTING_SERVICE"
	StateSelectingDoctor     State = "SELECTING_DOCTOR"
	StateSelectingDate       State = "SELECTING_DATE"
	StateSelectingTime       State = "SELECTING_TIME"
	StateConfirming          State = "CONFIRMING"
	StateCancelling          State = "CANCELLING"
	StateConfirmCancel       State = "CONFIRM_CANCEL"
	StateRescheduling        State = "RESCHEDULING"
	StateShowingAppointments State = "SHOWING_APPOINTMENTS"
)

// TTL is the idle window after which a conversation is treated as IDLE
// regardless of its stored state.
const TTL = 30 * time.Minute

// Draft is the booking in progress. It is always read, modified, and written
// as a whole, so a partially chosen booking can never lose earlier fields.
type Draft struct {
	ServiceID                 *uuid.UUID `json:"service_id,omitempty"`
	DoctorID                  *uuid.UUID `json:"doctor_id,omitempty"`
	Date                      string     `json:"date,omitempty"` // yyyy-mm-dd
	Time                      string     `json:"time,omitempty"` // HH:mm
	ScheduledAt               *time.Time `json:"scheduled_at,omitempty"`
	ReschedulingAppointmentID *uuid.UUID `json:"rescheduling_appointment_id,omitempty"`
}

// Conversation is the durable state for one (tenant, phone) pair.
type Conversation struct {
	ID        uuid.UUID
	TenantID  uuid.UUID
	Phone     string
	State     State
	Draft     Draft
	PatientID *uuid.UUID
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the idle window has lapsed. The engine treats an
// expired conversation as freshly IDLE with an empty draft.
func (c *Conversation) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}
