package conversation

import (
	"context"
	"fmt"

	"github.com/mawidhq/clinic-bot/internal/clinic"
	"github.com/mawidhq/clinic-bot/internal/whatsapp"
)

// showAppointments renders the patient's upcoming bookings as plain text
// (no action affordances) and returns the conversation to rest.
func (e *Engine) showAppointments(ctx context.Context, s *session) error {
	appts, err := e.appointments.ListUpcomingConfirmed(ctx, s.tenant.ID, s.patient.ID, upcomingListLimit)
	if err != nil {
		return err
	}
	if err := e.reset(ctx, s); err != nil {
		return err
	}
	if len(appts) == 0 {
		return e.send(ctx, s, whatsapp.TextMessage{To: s.phone, Body: noUpcomingBody(s.arabic)})
	}

	lines := make([]string, 0, len(appts))
	for i, a := range appts {
		doctorName := ""
		if doctor, err := e.catalog.Doctor(ctx, a.DoctorID); err == nil && doctor != nil {
			doctorName = doctor.DisplayName(s.arabic)
		}
		lines = append(lines, fmt.Sprintf("%d. %s | %s (%s)",
			i+1, doctorName,
			clinic.FormatDateTime(s.tenant.Locale, a.ScheduledAt.In(s.tenant.Location())),
			a.Reference()))
	}
	return e.send(ctx, s, whatsapp.TextMessage{To: s.phone, Body: upcomingListBody(s.arabic, lines)})
}

// handleShowingAppointments covers a message arriving while the listing state
// is still stored: render the list again and reset.
func (e *Engine) handleShowingAppointments(ctx context.Context, s *session, _ string) error {
	return e.showAppointments(ctx, s)
}
