package bootstrap

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/mawidhq/clinic-bot/internal/appointment"
	"github.com/mawidhq/clinic-bot/internal/booking"
	"github.com/mawidhq/clinic-bot/internal/clinic"
	appconfig "github.com/mawidhq/clinic-bot/internal/config"
	"github.com/mawidhq/clinic-bot/internal/conversation"
	"github.com/mawidhq/clinic-bot/internal/intent"
	"github.com/mawidhq/clinic-bot/internal/observability/metrics"
	"github.com/mawidhq/clinic-bot/internal/patient"
	"github.com/mawidhq/clinic-bot/internal/reminder"
	"github.com/mawidhq/clinic-bot/internal/tasks"
	"github.com/mawidhq/clinic-bot/internal/whatsapp"
	"github.com/mawidhq/clinic-bot/pkg/logging"
)

// Stores bundles the pgx-backed stores built from one pool.
type Stores struct {
	Clinics       *clinic.Store
	Patients      *patient.Store
	Bookings      *booking.Store
	Appointments  *appointment.Store
	Conversations *conversation.Store
}

// BuildStores constructs all database stores over the shared pool.
func BuildStores(pool *pgxpool.Pool) *Stores {
	return &Stores{
		Clinics:       clinic.NewStore(pool),
		Patients:      patient.NewStore(pool),
		Bookings:      booking.NewStore(pool),
		Appointments:  appointment.NewStore(pool),
		Conversations: conversation.NewStore(pool),
	}
}

// BuildEngine wires the conversation engine with its collaborators.
func BuildEngine(cfg *appconfig.Config, stores *Stores, redisClient *redis.Client,
	queue tasks.Queue, extractor intent.Extractor, m *metrics.BotMetrics,
	logger *logging.Logger) *conversation.Engine {
	sender := whatsapp.NewSender(cfg.WhatsAppAPIBaseURL, logger)
	return conversation.NewEngine(conversation.EngineDeps{
		Tenants:       stores.Clinics,
		Patients:      stores.Patients,
		Conversations: stores.Conversations,
		Catalog:       stores.Bookings,
		Slots:         booking.NewAvailability(stores.Bookings),
		Appointments:  stores.Appointments,
		Reminders:     reminder.NewScheduler(queue),
		Sender:        sender,
		Extractor:     extractor,
		Lock:          conversation.NewLock(redisClient, cfg.ConversationLockTTL),
		Metrics:       m,
		Logger:        logger,
	})
}

// BuildReminderWorker wires the reminder delivery worker.
func BuildReminderWorker(cfg *appconfig.Config, stores *Stores, queue tasks.Queue,
	m *metrics.BotMetrics, logger *logging.Logger) *reminder.Worker {
	sender := whatsapp.NewSender(cfg.WhatsAppAPIBaseURL, logger)
	return reminder.NewWorker(queue, stores.Appointments, stores.Patients,
		stores.Bookings, stores.Clinics, sender, m, logger,
		reminder.WithWorkerCount(cfg.ReminderWorkers),
		reminder.WithPollInterval(cfg.TaskPollInterval),
	)
}
