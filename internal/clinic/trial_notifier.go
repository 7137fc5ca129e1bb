package clinic

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mawidhq/clinic-bot/internal/whatsapp"
	"github.com/mawidhq/clinic-bot/pkg/logging"
)

const (
	trialLengthDays      = 14
	trialNoticeAfterDays = 12
)

// TrialTenantLister finds tenants whose trial started within a day window.
type TrialTenantLister interface {
	TrialStartedOn(ctx context.Context, dayStart, dayEnd time.Time) ([]Tenant, error)
}

// NoticeSender delivers the trial notice over WhatsApp.
type NoticeSender interface {
	Send(ctx context.Context, phoneNumberID, accessToken string, msg whatsapp.Message) error
}

// TrialNotifier sweeps for tenants whose trial ends in two days and notifies
// the clinic owner. The sweep runs strictly single-flight: the Redis day key
// guarantees at-most-once execution per calendar day across all processes.
type TrialNotifier struct {
	tenants TrialTenantLister
	sender  NoticeSender
	redis   *redis.Client
	logger  *logging.Logger
	now     func() time.Time
}

// NewTrialNotifier creates a trial-expiry notifier.
func NewTrialNotifier(tenants TrialTenantLister, sender NoticeSender, redisClient *redis.Client, logger *logging.Logger) *TrialNotifier {
	if logger == nil {
		logger = logging.Default()
	}
	return &TrialNotifier{
		tenants: tenants,
		sender:  sender,
		redis:   redisClient,
		logger:  logger,
		now:     time.Now,
	}
}

// RunDaily executes the sweep if it has not yet run today.
// Returns the number of tenants notified.
func (n *TrialNotifier) RunDaily(ctx context.Context) (int, error) {
	today := n.now().UTC().Truncate(24 * time.Hour)

	if n.redis != nil {
		key := "trial_sweep:" + today.Format(time.DateOnly)
		acquired, err := n.redis.SetNX(ctx, key, "1", 48*time.Hour).Result()
		if err != nil {
			return 0, fmt.Errorf("clinic: acquire sweep day key: %w", err)
		}
		if !acquired {
			return 0, nil
		}
	}

	return n.sweep(ctx, today)
}

func (n *TrialNotifier) sweep(ctx context.Context, today time.Time) (int, error) {
	dayStart := today.AddDate(0, 0, -trialNoticeAfterDays)
	dayEnd := dayStart.AddDate(0, 0, 1)

	tenants, err := n.tenants.TrialStartedOn(ctx, dayStart, dayEnd)
	if err != nil {
		return 0, fmt.Errorf("clinic: trial sweep: %w", err)
	}

	notified := 0
	for i := range tenants {
		t := &tenants[i]
		msg := whatsapp.TextMessage{
			To:   t.OwnerPhone,
			Body: trialNoticeBody(t.Locale, t.Name),
		}
		if err := n.sender.Send(ctx, t.PhoneNumberID, t.AccessToken, msg); err != nil {
			n.logger.Error("trial notice send failed", "error", err, "tenant_id", t.ID)
			continue
		}
		notified++
	}

	if notified > 0 {
		n.logger.Info("trial sweep complete", "notified", notified)
	}
	return notified, nil
}

func trialNoticeBody(loc Locale, clinicName string) string {
	if loc == LocaleAR {
		return fmt.Sprintf("⏳ تنبيه: الفترة التجريبية لعيادة %s تنتهي خلال يومين. يرجى الاشتراك لمواصلة استقبال الحجوزات.", clinicName)
	}
	return fmt.Sprintf("⏳ Heads up: the trial for %s ends in 2 days. Subscribe to keep receiving bookings.", clinicName)
}
