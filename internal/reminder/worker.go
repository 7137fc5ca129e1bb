package reminder

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mawidhq/clinic-bot/internal/appointment"
	"github.com/mawidhq/clinic-bot/internal/booking"
	"github.com/mawidhq/clinic-bot/internal/clinic"
	"github.com/mawidhq/clinic-bot/internal/observability/metrics"
	"github.com/mawidhq/clinic-bot/internal/patient"
	"github.com/mawidhq/clinic-bot/internal/tasks"
	"github.com/mawidhq/clinic-bot/internal/whatsapp"
	"github.com/mawidhq/clinic-bot/pkg/logging"
)

// AppointmentSource loads appointments and records delivery.
type AppointmentSource interface {
	ByID(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error)
	MarkReminderSent(ctx context.Context, id uuid.UUID, kind string) error
}

// PatientSource loads the reminder recipient.
type PatientSource interface {
	ByID(ctx context.Context, id uuid.UUID) (*patient.Patient, error)
}

// DoctorSource loads the doctor named in the reminder text.
type DoctorSource interface {
	Doctor(ctx context.Context, id uuid.UUID) (*booking.Doctor, error)
}

// TenantSource loads the tenant whose WhatsApp number delivers the reminder.
type TenantSource interface {
	ByID(ctx context.Context, id uuid.UUID) (*clinic.Tenant, error)
}

// MessageSender delivers outbound WhatsApp messages.
type MessageSender interface {
	Send(ctx context.Context, phoneNumberID, accessToken string, msg whatsapp.Message) error
}

type workerConfig struct {
	workers      int
	pollInterval time.Duration
	claimBatch   int
}

// WorkerOption customizes the reminder worker.
type WorkerOption func(*workerConfig)

// WithWorkerCount sets the number of concurrent delivery goroutines.
func WithWorkerCount(count int) WorkerOption {
	return func(cfg *workerConfig) {
		if count > 0 {
			cfg.workers = count
		}
	}
}

// WithPollInterval sets how often the queue is polled for due tasks.
func WithPollInterval(d time.Duration) WorkerOption {
	return func(cfg *workerConfig) {
		if d > 0 {
			cfg.pollInterval = d
		}
	}
}

// Worker claims due reminder tasks and delivers them over WhatsApp.
type Worker struct {
	queue        tasks.Queue
	appointments AppointmentSource
	patients     PatientSource
	doctors      DoctorSource
	tenants      TenantSource
	sender       MessageSender
	metrics      *metrics.BotMetrics
	logger       *logging.Logger

	cfg workerConfig
	wg  sync.WaitGroup
	now func() time.Time
}

// NewWorker creates a reminder worker.
func NewWorker(queue tasks.Queue, appointments AppointmentSource, patients PatientSource,
	doctors DoctorSource, tenants TenantSource, sender MessageSender,
	m *metrics.BotMetrics, logger *logging.Logger, opts ...WorkerOption) *Worker {
	if logger == nil {
		logger = logging.Default()
	}
	cfg := workerConfig{workers: 10, pollInterval: 5 * time.Second, claimBatch: 20}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Worker{
		queue:        queue,
		appointments: appointments,
		patients:     patients,
		doctors:      doctors,
		tenants:      tenants,
		sender:       sender,
		metrics:      m,
		logger:       logger,
		cfg:          cfg,
		now:          time.Now,
	}
}

// Start launches the poller and delivery goroutines. It returns immediately;
// call Wait after cancelling ctx to drain.
func (w *Worker) Start(ctx context.Context) {
	due := make(chan tasks.Task)

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer close(due)
		ticker := time.NewTicker(w.cfg.pollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				claimed, err := w.queue.Claim(ctx, w.now(), w.cfg.claimBatch)
				if err != nil {
					w.logger.Error("reminder claim failed", "error", err)
					continue
				}
				for _, t := range claimed {
					select {
					case due <- t:
					case <-ctx.Done():
						return
					}
				}
			}
		}
	}()

	for i := 0; i < w.cfg.workers; i++ {
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			for t := range due {
				w.deliver(context.WithoutCancel(ctx), t)
			}
		}()
	}
}

// Wait blocks until all goroutines have drained after ctx cancellation.
func (w *Worker) Wait() {
	w.wg.Wait()
}

// deliver sends one claimed reminder. A task whose appointment is gone or no
// longer confirmed is dropped silently: cancellation withdraws tasks
// best-effort, and this is the backstop.
func (w *Worker) deliver(ctx context.Context, t tasks.Task) {
	var p Payload
	if err := json.Unmarshal(t.Payload, &p); err != nil {
		w.logger.Error("undecodable reminder task", "key", t.Key, "error", err)
		w.metrics.ObserveReminder("unknown", "error")
		return
	}

	appt, err := w.appointments.ByID(ctx, p.AppointmentID)
	if err != nil {
		w.logger.Error("reminder appointment load failed", "appointment_id", p.AppointmentID, "error", err)
		w.metrics.ObserveReminder(p.Kind, "error")
		return
	}
	if appt == nil || appt.Status != appointment.StatusConfirmed {
		w.metrics.ObserveReminder(p.Kind, "skipped")
		return
	}

	tenant, err := w.tenants.ByID(ctx, appt.TenantID)
	if err != nil || tenant == nil {
		w.logger.Error("reminder tenant load failed", "tenant_id", appt.TenantID, "error", err)
		w.metrics.ObserveReminder(p.Kind, "error")
		return
	}
	pat, err := w.patients.ByID(ctx, appt.PatientID)
	if err != nil || pat == nil {
		w.logger.Error("reminder patient load failed", "patient_id", appt.PatientID, "error", err)
		w.metrics.ObserveReminder(p.Kind, "error")
		return
	}
	doctor, err := w.doctors.Doctor(ctx, appt.DoctorID)
	if err != nil {
		w.logger.Error("reminder doctor load failed", "doctor_id", appt.DoctorID, "error", err)
		w.metrics.ObserveReminder(p.Kind, "error")
		return
	}

	arabic := pat.LanguagePreference == clinic.LocaleAR
	doctorName := ""
	if doctor != nil {
		doctorName = doctor.DisplayName(arabic)
	}
	locale := clinic.LocaleEN
	if arabic {
		locale = clinic.LocaleAR
	}
	when := clinic.FormatLongDate(locale, appt.ScheduledAt.In(tenant.Location())) +
		pick(arabic, " الساعة ", " at ") + appt.ScheduledAt.In(tenant.Location()).Format("15:04")

	body := reminderBody(arabic, p.Kind, doctorName, when)
	err = w.sender.Send(ctx, tenant.PhoneNumberID, tenant.AccessToken, whatsapp.TextMessage{
		To:   pat.Phone,
		Body: body,
	})
	if err != nil {
		w.logger.Error("reminder send failed", "appointment_id", appt.ID, "kind", p.Kind, "error", err)
		w.metrics.ObserveReminder(p.Kind, "error")
		return
	}

	if err := w.appointments.MarkReminderSent(ctx, appt.ID, p.Kind); err != nil {
		w.logger.Error("reminder mark failed", "appointment_id", appt.ID, "kind", p.Kind, "error", err)
	}
	w.metrics.ObserveReminder(p.Kind, "sent")
	w.logger.Info("reminder sent", "appointment_id", appt.ID, "kind", p.Kind)
}

func pick(arabic bool, ar, en string) string {
	if arabic {
		return ar
	}
	return en
}

func reminderBody(arabic bool, kind, doctorName, when string) string {
	if kind == "24h" {
		if arabic {
			return "🔔 تذكير: لديك موعد غداً\n\n👨‍⚕️ الطبيب: " + doctorName + "\n📅 " + when + "\n\nللإلغاء أو التعديل، تواصل معنا."
		}
		return "🔔 Reminder: You have an appointment tomorrow\n\n👨‍⚕️ Doctor: " + doctorName + "\n📅 " + when + "\n\nTo cancel or reschedule, contact us."
	}
	if arabic {
		return "🔔 تذكير: موعدك بعد ساعتين\n\n👨‍⚕️ الطبيب: " + doctorName + "\n📅 " + when
	}
	return "🔔 Reminder: Your appointment is in 2 hours\n\n👨‍⚕️ Doctor: " + doctorName + "\n📅 " + when
}
