package conversation

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mawidhq/clinic-bot/internal/clinic"
	"github.com/mawidhq/clinic-bot/internal/whatsapp"
)

var greetingsAR = []string{"مرحبا", "أهلا", "هلا", "السلام عليكم", "وعليكم", "صباح", "مساء"}

var greetingEN = regexp.MustCompile(`(?i)^(hi|hello|hey|سلام)`)

func isGreeting(text string) bool {
	for _, g := range greetingsAR {
		if strings.Contains(text, g) {
			return true
		}
	}
	return greetingEN.MatchString(text)
}

// handleIdle greets and shows the main menu regardless of input.
func (e *Engine) handleIdle(ctx context.Context, s *session, input string) error {
	if err := e.transition(ctx, s, StateMainMenu); err != nil {
		return err
	}

	body := welcomeBody(s.arabic, isGreeting(strings.TrimSpace(input)), s.patient.DisplayName(s.arabic))
	book, myAppointments, cancel := menuButtons(s.arabic)
	return e.send(ctx, s, whatsapp.ButtonMessage{
		To:   s.phone,
		Body: body,
		Buttons: []whatsapp.Button{
			{ID: "book", Title: book},
			{ID: "my_appointments", Title: myAppointments},
			{ID: "cancel", Title: cancel},
		},
	})
}

func (e *Engine) handleMainMenu(ctx context.Context, s *session, selection string) error {
	switch selection {
	case "book":
		return e.startBookingFlow(ctx, s)
	case "my_appointments":
		if err := e.transition(ctx, s, StateShowingAppointments); err != nil {
			return err
		}
		if err := e.send(ctx, s, whatsapp.TextMessage{To: s.phone, Body: loadingAppointmentsBody(s.arabic)}); err != nil {
			return err
		}
		return e.showAppointments(ctx, s)
	case "reschedule":
		return e.startReschedulingFlow(ctx, s)
	case "cancel":
		if err := e.transition(ctx, s, StateCancelling); err != nil {
			return err
		}
		return e.send(ctx, s, whatsapp.TextMessage{To: s.phone, Body: cancelPromptBody(s.arabic)})
	default:
		// unknown selection; next message re-shows the menu
		return e.transition(ctx, s, StateIdle)
	}
}

func (e *Engine) startBookingFlow(ctx context.Context, s *session) error {
	services, err := e.catalog.ActiveServices(ctx, s.tenant.ID)
	if err != nil {
		return err
	}
	if len(services) == 0 {
		return e.send(ctx, s, whatsapp.TextMessage{To: s.phone, Body: noServicesBody(s.arabic)})
	}

	if err := e.transition(ctx, s, StateSelectingService); err != nil {
		return err
	}

	rows := make([]whatsapp.Row, 0, len(services))
	for _, svc := range services {
		row := whatsapp.Row{ID: svc.ID.String(), Title: svc.DisplayName(s.arabic)}
		if svc.Price != nil {
			row.Description = fmt.Sprintf("%.0f SAR", *svc.Price)
		}
		rows = append(rows, row)
	}
	return e.send(ctx, s, whatsapp.ListMessage{
		To:         s.phone,
		Header:     pick(s.arabic, "🏥 حجز موعد", "🏥 Book Appointment"),
		Body:       pick(s.arabic, "اختر الخدمة المطلوبة:", "Select a service:"),
		ButtonText: pick(s.arabic, "عرض الخدمات", "View Services"),
		Sections: []whatsapp.Section{
			{Title: pick(s.arabic, "الخدمات المتاحة", "Available Services"), Rows: rows},
		},
	})
}

func (e *Engine) handleSelectingService(ctx context.Context, s *session, input string) error {
	serviceID, err := uuid.Parse(input)
	if err != nil {
		return e.send(ctx, s, whatsapp.TextMessage{To: s.phone, Body: selectionNotUnderstoodBody(s.arabic)})
	}

	doctors, err := e.catalog.DoctorsForService(ctx, s.tenant.ID, serviceID)
	if err != nil {
		return err
	}
	if len(doctors) == 0 {
		return e.send(ctx, s, whatsapp.TextMessage{To: s.phone, Body: noDoctorsBody(s.arabic)})
	}

	s.conv.Draft.ServiceID = &serviceID

	if len(doctors) == 1 {
		// single provider, skip the doctor step
		s.conv.Draft.DoctorID = &doctors[0].ID
		if err := e.transition(ctx, s, StateSelectingDate); err != nil {
			return err
		}
		return e.sendDatePicker(ctx, s)
	}

	if err := e.transition(ctx, s, StateSelectingDoctor); err != nil {
		return err
	}

	rows := make([]whatsapp.Row, 0, len(doctors))
	for _, d := range doctors {
		rows = append(rows, whatsapp.Row{ID: d.ID.String(), Title: d.DisplayName(s.arabic), Description: d.Specialty})
	}
	return e.send(ctx, s, whatsapp.ListMessage{
		To:         s.phone,
		Header:     pick(s.arabic, "👨‍⚕️ اختر الطبيب", "👨‍⚕️ Choose a Doctor"),
		Body:       pick(s.arabic, "الأطباء المتاحون:", "Available doctors:"),
		ButtonText: pick(s.arabic, "عرض الأطباء", "View Doctors"),
		Sections:   []whatsapp.Section{{Rows: rows}},
	})
}

func (e *Engine) handleSelectingDoctor(ctx context.Context, s *session, input string) error {
	doctorID, err := uuid.Parse(input)
	if err != nil {
		return e.send(ctx, s, whatsapp.TextMessage{To: s.phone, Body: selectionNotUnderstoodBody(s.arabic)})
	}

	s.conv.Draft.DoctorID = &doctorID
	if err := e.transition(ctx, s, StateSelectingDate); err != nil {
		return err
	}
	return e.sendDatePicker(ctx, s)
}

// sendDatePicker scans the next 7 days starting tomorrow and offers up to 5
// dates that have at least one open slot.
func (e *Engine) sendDatePicker(ctx context.Context, s *session) error {
	if s.conv.Draft.DoctorID == nil {
		return e.reset(ctx, s)
	}
	doctorID := *s.conv.Draft.DoctorID
	loc := s.tenant.Location()
	today := e.now().In(loc)

	var available []time.Time
	for i := 1; i <= 7 && len(available) < 5; i++ {
		date := today.AddDate(0, 0, i)
		slots, err := e.slots.Slots(ctx, doctorID, date)
		if err != nil {
			return err
		}
		if len(slots) > 0 {
			available = append(available, date)
		}
	}

	if len(available) == 0 {
		return e.send(ctx, s, whatsapp.TextMessage{To: s.phone, Body: noSlotsNextWeekBody(s.arabic)})
	}

	rows := make([]whatsapp.Row, 0, len(available))
	for _, date := range available {
		rows = append(rows, whatsapp.Row{
			ID:    date.Format("2006-01-02"),
			Title: clinic.FormatDayDate(s.tenant.Locale, date),
		})
	}
	return e.send(ctx, s, whatsapp.ListMessage{
		To:         s.phone,
		Header:     pick(s.arabic, "📅 اختر التاريخ", "📅 Choose a Date"),
		Body:       pick(s.arabic, "المواعيد المتاحة:", "Available dates:"),
		ButtonText: pick(s.arabic, "عرض التواريخ", "View Dates"),
		Sections:   []whatsapp.Section{{Rows: rows}},
	})
}

var literalDate = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

func (e *Engine) handleSelectingDate(ctx context.Context, s *session, input string) error {
	dateStr := input
	if !literalDate.MatchString(input) {
		extracted, err := e.extractor.Extract(ctx, input, s.tenant.Locale)
		if err != nil {
			e.logger.Warn("intent extraction failed", "error", err)
		}
		if extracted.Entities.Date == "" {
			return e.send(ctx, s, whatsapp.TextMessage{To: s.phone, Body: dateNotUnderstoodBody(s.arabic)})
		}
		dateStr = extracted.Entities.Date
	}
	if s.conv.Draft.DoctorID == nil {
		return e.reset(ctx, s)
	}

	loc := s.tenant.Location()
	date, err := time.ParseInLocation("2006-01-02", dateStr, loc)
	if err != nil {
		return e.send(ctx, s, whatsapp.TextMessage{To: s.phone, Body: dateNotUnderstoodBody(s.arabic)})
	}

	s.conv.Draft.Date = dateStr
	if err := e.transition(ctx, s, StateSelectingTime); err != nil {
		return err
	}

	slots, err := e.slots.Slots(ctx, *s.conv.Draft.DoctorID, date)
	if err != nil {
		return err
	}
	if len(slots) == 0 {
		if err := e.send(ctx, s, whatsapp.TextMessage{To: s.phone, Body: noSlotsThatDayBody(s.arabic)}); err != nil {
			return err
		}
		if err := e.transition(ctx, s, StateSelectingDate); err != nil {
			return err
		}
		return e.sendDatePicker(ctx, s)
	}

	// WhatsApp lists cap at 10 rows; split day at 13:00 and cap each half at 5
	var morning, afternoon []whatsapp.Row
	for _, slot := range slots {
		if slot < "13:00" {
			if len(morning) < 5 {
				morning = append(morning, whatsapp.Row{ID: slot, Title: slot})
			}
		} else if len(afternoon) < 5 {
			afternoon = append(afternoon, whatsapp.Row{ID: slot, Title: slot})
		}
	}

	var sections []whatsapp.Section
	if len(morning) > 0 {
		sections = append(sections, whatsapp.Section{Title: pick(s.arabic, "صباحاً", "Morning"), Rows: morning})
	}
	if len(afternoon) > 0 {
		sections = append(sections, whatsapp.Section{Title: pick(s.arabic, "مساءً", "Afternoon"), Rows: afternoon})
	}

	return e.send(ctx, s, whatsapp.ListMessage{
		To:         s.phone,
		Header:     pick(s.arabic, "⏰ اختر الوقت", "⏰ Choose a Time"),
		Body:       pick(s.arabic, "الأوقات المتاحة:", "Available time slots:"),
		ButtonText: pick(s.arabic, "عرض الأوقات", "View Times"),
		Sections:   sections,
	})
}

var literalTime = regexp.MustCompile(`^\d{2}:\d{2}$`)

func (e *Engine) handleSelectingTime(ctx context.Context, s *session, input string) error {
	if !literalTime.MatchString(input) || s.conv.Draft.DoctorID == nil || s.conv.Draft.Date == "" {
		return e.send(ctx, s, whatsapp.TextMessage{To: s.phone, Body: dateNotUnderstoodBody(s.arabic)})
	}

	loc := s.tenant.Location()
	scheduledAt, err := time.ParseInLocation("2006-01-02 15:04", s.conv.Draft.Date+" "+input, loc)
	if err != nil {
		return e.send(ctx, s, whatsapp.TextMessage{To: s.phone, Body: dateNotUnderstoodBody(s.arabic)})
	}

	doctor, err := e.catalog.Doctor(ctx, *s.conv.Draft.DoctorID)
	if err != nil {
		return err
	}
	if doctor == nil {
		return e.reset(ctx, s)
	}
	var serviceName string
	if s.conv.Draft.ServiceID != nil {
		svc, err := e.catalog.Service(ctx, *s.conv.Draft.ServiceID)
		if err != nil {
			return err
		}
		if svc != nil {
			serviceName = svc.DisplayName(s.arabic)
		}
	}

	s.conv.Draft.Time = input
	s.conv.Draft.ScheduledAt = &scheduledAt
	if err := e.transition(ctx, s, StateConfirming); err != nil {
		return err
	}

	confirm, changeDate, cancelFlow := confirmButtons(s.arabic)
	return e.send(ctx, s, whatsapp.ButtonMessage{
		To: s.phone,
		Body: confirmSummaryBody(s.arabic, serviceName, doctor.DisplayName(s.arabic),
			clinic.FormatLongDate(s.tenant.Locale, scheduledAt), input),
		Buttons: []whatsapp.Button{
			{ID: "confirm", Title: confirm},
			{ID: "change_date", Title: changeDate},
			{ID: "cancel_flow", Title: cancelFlow},
		},
	})
}

func (e *Engine) handleConfirming(ctx context.Context, s *session, selection string) error {
	switch selection {
	case "confirm":
		return e.confirmBooking(ctx, s)
	case "change_date":
		if err := e.transition(ctx, s, StateSelectingDate); err != nil {
			return err
		}
		return e.sendDatePicker(ctx, s)
	default:
		if err := e.reset(ctx, s); err != nil {
			return err
		}
		return e.send(ctx, s, whatsapp.TextMessage{To: s.phone, Body: abandonedBody(s.arabic)})
	}
}

func (e *Engine) confirmBooking(ctx context.Context, s *session) error {
	draft := s.conv.Draft
	if draft.DoctorID == nil || draft.ScheduledAt == nil {
		return e.reset(ctx, s)
	}

	// a reschedule moves the existing appointment instead of creating one,
	// and does not count against the monthly quota
	if draft.ReschedulingAppointmentID != nil {
		return e.completeReschedule(ctx, s)
	}

	if limit := s.tenant.SubscriptionTier.MonthlyLimit(); limit > 0 {
		loc := s.tenant.Location()
		now := e.now().In(loc)
		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
		count, err := e.appointments.CountCreatedSince(ctx, s.tenant.ID, monthStart)
		if err != nil {
			return err
		}
		if count >= limit {
			if err := e.reset(ctx, s); err != nil {
				return err
			}
			return e.send(ctx, s, whatsapp.TextMessage{To: s.phone, Body: quotaReachedBody(s.arabic)})
		}
	}

	appt, err := e.appointments.Create(ctx, s.tenant.ID, s.patient.ID, *draft.DoctorID, draft.ServiceID, *draft.ScheduledAt)
	if err != nil {
		return err
	}
	// the appointment exists now; a reminder failure must not leave the
	// conversation in CONFIRMING where a retry would book a second one
	if err := e.reset(ctx, s); err != nil {
		return err
	}
	if err := e.reminders.Schedule(ctx, appt.ID, appt.ScheduledAt); err != nil {
		e.logger.Error("failed to schedule reminders", "appointment_id", appt.ID, "error", err)
	}
	return e.send(ctx, s, whatsapp.TextMessage{To: s.phone, Body: bookedBody(s.arabic, appt.Reference())})
}
