package conversation

import (
	"context"

	"github.com/google/uuid"

	"github.com/mawidhq/clinic-bot/internal/appointment"
	"github.com/mawidhq/clinic-bot/internal/clinic"
	"github.com/mawidhq/clinic-bot/internal/whatsapp"
)

// upcomingRows renders the patient's next confirmed appointments as list rows.
func (e *Engine) upcomingRows(ctx context.Context, s *session) ([]*appointment.Appointment, []whatsapp.Row, error) {
	appts, err := e.appointments.ListUpcomingConfirmed(ctx, s.tenant.ID, s.patient.ID, upcomingListLimit)
	if err != nil {
		return nil, nil, err
	}
	rows := make([]whatsapp.Row, 0, len(appts))
	for _, a := range appts {
		doctor, err := e.catalog.Doctor(ctx, a.DoctorID)
		if err != nil {
			return nil, nil, err
		}
		title := a.Reference()
		if doctor != nil {
			title = doctor.DisplayName(s.arabic)
		}
		rows = append(rows, whatsapp.Row{
			ID:          a.ID.String(),
			Title:       title,
			Description: clinic.FormatDateTime(s.tenant.Locale, a.ScheduledAt.In(s.tenant.Location())),
		})
	}
	return appts, rows, nil
}

// handleCancelling lists the cancellable appointments and moves to the
// confirmation step.
func (e *Engine) handleCancelling(ctx context.Context, s *session, _ string) error {
	appts, rows, err := e.upcomingRows(ctx, s)
	if err != nil {
		return err
	}
	if len(appts) == 0 {
		if err := e.reset(ctx, s); err != nil {
			return err
		}
		return e.send(ctx, s, whatsapp.TextMessage{To: s.phone, Body: noUpcomingToCancelBody(s.arabic)})
	}

	if err := e.transition(ctx, s, StateConfirmCancel); err != nil {
		return err
	}
	return e.send(ctx, s, whatsapp.ListMessage{
		To:         s.phone,
		Header:     pick(s.arabic, "❌ إلغاء موعد", "❌ Cancel Appointment"),
		Body:       pick(s.arabic, "اختر الموعد الذي تريد إلغاءه:", "Select the appointment to cancel:"),
		ButtonText: pick(s.arabic, "عرض المواعيد", "View Appointments"),
		Sections:   []whatsapp.Section{{Rows: rows}},
	})
}

// handleConfirmCancel cancels the chosen appointment and withdraws its
// reminders.
func (e *Engine) handleConfirmCancel(ctx context.Context, s *session, input string) error {
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

	cancelled, err := e.appointments.Cancel(ctx, appt.ID)
	if err != nil {
		return err
	}
	if !cancelled {
		return notFound()
	}
	if err := e.reminders.Cancel(ctx, appt.ID); err != nil {
		return err
	}
	if err := e.reset(ctx, s); err != nil {
		return err
	}

	doctorName := ""
	if doctor, err := e.catalog.Doctor(ctx, appt.DoctorID); err == nil && doctor != nil {
		doctorName = doctor.DisplayName(s.arabic)
	}
	dateStr := clinic.FormatDateTime(s.tenant.Locale, appt.ScheduledAt.In(s.tenant.Location()))
	return e.send(ctx, s, whatsapp.TextMessage{To: s.phone, Body: cancelledBody(s.arabic, doctorName, dateStr)})
}
