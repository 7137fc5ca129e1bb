package conversation

import (
	"context"

	"github.com/google/uuid"

	"github.com/mawidhq/clinic-bot/internal/clinic"
	"github.com/mawidhq/clinic-bot/internal/whatsapp"
)

// startReschedulingFlow lists the appointments the patient may move.
func (e *Engine) startReschedulingFlow(ctx context.Context, s *session) error {
	appts, rows, err := e.upcomingRows(ctx, s)
	if err != nil {
		return err
	}
	if len(appts) == 0 {
		if err := e.reset(ctx, s); err != nil {
			return err
		}
		return e.send(ctx, s, whatsapp.TextMessage{To: s.phone, Body: noUpcomingToRescheduleBody(s.arabic)})
	}

	if err := e.transition(ctx, s, StateRescheduling); err != nil {
		return err
	}
	return e.send(ctx, s, whatsapp.ListMessage{
		To:         s.phone,
		Header:     pick(s.arabic, "✏️ تعديل موعد", "✏️ Reschedule Appointment"),
		Body:       pick(s.arabic, "اختر الموعد الذي تريد تعديله:", "Select the appointment to reschedule:"),
		ButtonText: pick(s.arabic, "عرض المواعيد", "View Appointments"),
		Sections:   []whatsapp.Section{{Rows: rows}},
	})
}

// handleRescheduling records the chosen appointment in the draft and reuses
// the date/time sub-flow with the original doctor.
func (e *Engine) handleRescheduling(ctx context.Context, s *session, input string) error {
	notFound := func() error {
		if err := e.reset(ctx, s); err != nil {
			return err
		}
		return e.send(ctx, s, whatsapp.TextMessage{To: s.phone, Body: appointmentNotFoundBody(s.arabic)})
	}

	apptID, err := uuid.Parse(input)
	if err != nil {
		return notFound()
	}
	appt, err := e.appointments.GetConfirmed(ctx, apptID, s.patient.ID)
	if err != nil {
		return err
	}
	if appt == nil {
		return notFound()
	}

	s.conv.Draft.ReschedulingAppointmentID = &appt.ID
	s.conv.Draft.DoctorID = &appt.DoctorID
	if err := e.transition(ctx, s, StateSelectingDate); err != nil {
		return err
	}
	return e.sendDatePicker(ctx, s)
}

// completeReschedule moves the original appointment to the newly chosen slot
// and re-arms its reminders. Quota is not re-counted: the slot was paid for
// when the appointment was first created.
func (e *Engine) completeReschedule(ctx context.Context, s *session) error {
	draft := s.conv.Draft
	apptID := *draft.ReschedulingAppointmentID

	moved, err := e.appointments.Reschedule(ctx, apptID, *draft.ScheduledAt)
	if err != nil {
		return err
	}
	if !moved {
		if err := e.reset(ctx, s); err != nil {
			return err
		}
		return e.send(ctx, s, whatsapp.TextMessage{To: s.phone, Body: appointmentNotFoundBody(s.arabic)})
	}

	if err := e.reminders.Schedule(ctx, apptID, *draft.ScheduledAt); err != nil {
		return err
	}
	if err := e.reset(ctx, s); err != nil {
		return err
	}

	appt, err := e.appointments.GetConfirmed(ctx, apptID, s.patient.ID)
	ref := ""
	if err == nil && appt != nil {
		ref = appt.Reference()
	}
	return e.send(ctx, s, whatsapp.TextMessage{
		To: s.phone,
		Body: rescheduledBody(s.arabic, ref,
			clinic.FormatLongDate(s.tenant.Locale, *draft.ScheduledAt), draft.Time),
	})
}
