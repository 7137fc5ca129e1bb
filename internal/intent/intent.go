// Package intent classifies free-text patient messages so the conversation
// engine can route out-of-menu input.
package intent

import (
	"context"

	"github.com/mawidhq/clinic-bot/internal/clinic"
)

// Intent is a coarse label for what the patient is asking for.
type Intent string

const (
	IntentBookAppointment   Intent = "BOOK_APPOINTMENT"
	IntentViewAppointments  Intent = "VIEW_APPOINTMENTS"
	IntentCancelAppointment Intent = "CANCEL_APPOINTMENT"
	IntentGreeting          Intent = "GREETING"
	IntentHelp              Intent = "HELP"
	IntentUnknown           Intent = "UNKNOWN"
)

// Entities are optional slots recognized alongside the intent.
type Entities struct {
	Date        string `json:"date,omitempty"`        // ISO date (yyyy-mm-dd)
	Time        string `json:"time,omitempty"`        // "HH:mm"
	DoctorName  string `json:"doctorName,omitempty"`
	ServiceName string `json:"serviceName,omitempty"`
}

// Extraction is a classified message.
type Extraction struct {
	Intent     Intent   `json:"intent"`
	Confidence float64  `json:"confidence"`
	Entities   Entities `json:"entities"`
}

// Extractor classifies a patient message. Implementations must not fail the
// conversation on classifier trouble: degrade to IntentUnknown instead.
type Extractor interface {
	Extract(ctx context.Context, message string, locale clinic.Locale) (Extraction, error)
}
