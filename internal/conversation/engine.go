package conversation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mawidhq/clinic-bot/internal/appointment"
	"github.com/mawidhq/clinic-bot/internal/booking"
	"github.com/mawidhq/clinic-bot/internal/clinic"
	"github.com/mawidhq/clinic-bot/internal/intent"
	"github.com/mawidhq/clinic-bot/internal/observability/metrics"
	"github.com/mawidhq/clinic-bot/internal/patient"
	"github.com/mawidhq/clinic-bot/internal/whatsapp"
	"github.com/mawidhq/clinic-bot/pkg/logging"
)

// TenantDirectory resolves tenants from the WhatsApp business number.
type TenantDirectory interface {
	ByPhoneNumberID(ctx context.Context, phoneNumberID string) (*clinic.Tenant, error)
}

// PatientStore upserts patients on every inbound message.
type PatientStore interface {
	Upsert(ctx context.Context, tenantID uuid.UUID, phone string, locale clinic.Locale) (*patient.Patient, error)
}

// ConversationStore persists conversation rows.
type ConversationStore interface {
	GetOrCreate(ctx context.Context, tenantID uuid.UUID, phone string) (*Conversation, error)
	Update(ctx context.Context, c *Conversation) error
	LinkPatient(ctx context.Context, id, patientID uuid.UUID) error
	Reset(ctx context.Context, id uuid.UUID) error
}

// Catalog reads the tenant's bookable services and doctors.
type Catalog interface {
	ActiveServices(ctx context.Context, tenantID uuid.UUID) ([]booking.Service, error)
	Service(ctx context.Context, id uuid.UUID) (*booking.Service, error)
	DoctorsForService(ctx context.Context, tenantID, serviceID uuid.UUID) ([]booking.Doctor, error)
	Doctor(ctx context.Context, id uuid.UUID) (*booking.Doctor, error)
}

// SlotFinder computes open slots for a doctor on a date.
type SlotFinder interface {
	Slots(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]string, error)
}

// AppointmentBook is the appointment persistence surface the engine needs.
type AppointmentBook interface {
	Create(ctx context.Context, tenantID, patientID, doctorID uuid.UUID, serviceID *uuid.UUID, at time.Time) (*appointment.Appointment, error)
	CountCreatedSince(ctx context.Context, tenantID uuid.UUID, since time.Time) (int, error)
	ListUpcomingConfirmed(ctx context.Context, tenantID, patientID uuid.UUID, limit int) ([]*appointment.Appointment, error)
	GetConfirmed(ctx context.Context, id, patientID uuid.UUID) (*appointment.Appointment, error)
	Cancel(ctx context.Context, id uuid.UUID) (bool, error)
	Reschedule(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)
}

// ReminderScheduler arms and withdraws appointment reminders.
type ReminderScheduler interface {
	Schedule(ctx context.Context, appointmentID uuid.UUID, at time.Time) error
	Cancel(ctx context.Context, appointmentID uuid.UUID) error
}

// MessageSender delivers outbound WhatsApp messages.
type MessageSender interface {
	Send(ctx context.Context, phoneNumberID, accessToken string, msg whatsapp.Message) error
}

// Locker serializes handling per conversation.
type Locker interface {
	Acquire(ctx context.Context, tenantID uuid.UUID, phone string) (release func(), ok bool, err error)
}

const upcomingListLimit = 5

// Engine routes each inbound message to the handler for the conversation's
// current state.
type Engine struct {
	tenants       TenantDirectory
	patients      PatientStore
	conversations ConversationStore
	catalog       Catalog
	slots         SlotFinder
	appointments  AppointmentBook
	reminders     ReminderScheduler
	sender        MessageSender
	extractor     intent.Extractor
	lock          Locker
	metrics       *metrics.BotMetrics
	logger        *logging.Logger

	handlers map[State]handlerFunc
	now      func() time.Time
}

type handlerFunc func(context.Context, *session, string) error

// EngineDeps bundles the engine's collaborators.
type EngineDeps struct {
	Tenants       TenantDirectory
	Patients      PatientStore
	Conversations ConversationStore
	Catalog       Catalog
	Slots         SlotFinder
	Appointments  AppointmentBook
	Reminders     ReminderScheduler
	Sender        MessageSender
	Extractor     intent.Extractor
	Lock          Locker
	Metrics       *metrics.BotMetrics
	Logger        *logging.Logger
}

// NewEngine creates the conversation engine.
func NewEngine(deps EngineDeps) *Engine {
	logger := deps.Logger
	if logger == nil {
		logger = logging.Default()
	}
	e := &Engine{
		tenants:       deps.Tenants,
		patients:      deps.Patients,
		conversations: deps.Conversations,
		catalog:       deps.Catalog,
		slots:         deps.Slots,
		appointments:  deps.Appointments,
		reminders:     deps.Reminders,
		sender:        deps.Sender,
		extractor:     deps.Extractor,
		lock:          deps.Lock,
		metrics:       deps.Metrics,
		logger:        logger,
		now:           time.Now,
	}
	e.handlers = map[State]handlerFunc{
		StateMainMenu:            e.handleMainMenu,
		StateSelectingService:    e.handleSelectingService,
		StateSelectingDoctor:     e.handleSelectingDoctor,
		StateSelectingDate:       e.handleSelectingDate,
		StateSelectingTime:       e.handleSelectingTime,
		StateConfirming:          e.handleConfirming,
		StateCancelling:          e.handleCancelling,
		StateConfirmCancel:       e.handleConfirmCancel,
		StateRescheduling:        e.handleRescheduling,
		StateShowingAppointments: e.handleShowingAppointments,
	}
	return e
}

// session carries the per-message context through the state handlers.
type session struct {
	tenant  *clinic.Tenant
	conv    *Conversation
	patient *patient.Patient
	phone   string
	arabic  bool
}

// Dispatch implements the webhook's Dispatcher contract. It resolves the
// tenant and patient, serializes on the conversation lock, and routes the
// message text to the current state's handler.
func (e *Engine) Dispatch(ctx context.Context, phoneNumberID string, msg whatsapp.IncomingMessage) error {
	tenant, err := e.tenants.ByPhoneNumberID(ctx, phoneNumberID)
	if err != nil {
		return fmt.Errorf("conversation: resolve tenant: %w", err)
	}
	if tenant == nil || !tenant.IsActive {
		e.logger.Warn("message for unknown or inactive tenant", "phone_number_id", phoneNumberID)
		return nil
	}

	input := msg.InputText()
	if input == "" {
		return nil
	}
	phone := msg.From

	release, ok, err := e.lock.Acquire(ctx, tenant.ID, phone)
	if err != nil {
		return fmt.Errorf("conversation: lock: %w", err)
	}
	if !ok {
		// a concurrent handler owns this conversation; WhatsApp will not
		// retry an acked message, so the duplicate is dropped
		e.logger.Warn("conversation locked, dropping message", "tenant_id", tenant.ID, "phone", phone)
		return nil
	}
	defer release()

	conv, err := e.conversations.GetOrCreate(ctx, tenant.ID, phone)
	if err != nil {
		return err
	}
	if conv.Expired(e.now()) && conv.State != StateIdle {
		conv.State = StateIdle
		conv.Draft = Draft{}
		if err := e.conversations.Reset(ctx, conv.ID); err != nil {
			return err
		}
	}

	pat, err := e.patients.Upsert(ctx, tenant.ID, phone, tenant.Locale)
	if err != nil {
		return err
	}
	if conv.PatientID == nil {
		if err := e.conversations.LinkPatient(ctx, conv.ID, pat.ID); err != nil {
			return err
		}
		conv.PatientID = &pat.ID
	}

	s := &session{
		tenant:  tenant,
		conv:    conv,
		patient: pat,
		phone:   phone,
		arabic:  tenant.Locale == clinic.LocaleAR,
	}

	started := e.now()
	state := conv.State
	err = e.route(ctx, s, input)
	e.metrics.ObserveDispatchLatency(string(state), e.now().Sub(started).Seconds())
	return err
}

func (e *Engine) route(ctx context.Context, s *session, input string) error {
	if h, ok := e.handlers[s.conv.State]; ok {
		return h(ctx, s, input)
	}
	// IDLE and anything unrecognized both land on the menu
	return e.handleIdle(ctx, s, input)
}

// send delivers one outbound message on the tenant's WhatsApp number.
func (e *Engine) send(ctx context.Context, s *session, msg whatsapp.Message) error {
	if err := e.sender.Send(ctx, s.tenant.PhoneNumberID, s.tenant.AccessToken, msg); err != nil {
		e.metrics.ObserveOutbound("error")
		return err
	}
	e.metrics.ObserveOutbound("ok")
	return nil
}

// transition persists a state change together with the current draft.
func (e *Engine) transition(ctx context.Context, s *session, next State) error {
	s.conv.State = next
	return e.conversations.Update(ctx, s.conv)
}

// reset returns the conversation to IDLE with an empty draft.
func (e *Engine) reset(ctx context.Context, s *session) error {
	s.conv.State = StateIdle
	s.conv.Draft = Draft{}
	return e.conversations.Reset(ctx, s.conv.ID)
}
