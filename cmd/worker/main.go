package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mawidhq/clinic-bot/internal/app/bootstrap"
	"github.com/mawidhq/clinic-bot/internal/clinic"
	appconfig "github.com/mawidhq/clinic-bot/internal/config"
	"github.com/mawidhq/clinic-bot/internal/observability/metrics"
	"github.com/mawidhq/clinic-bot/internal/whatsapp"
	"github.com/mawidhq/clinic-bot/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting clinic-bot worker", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := bootstrap.BuildDBPool(ctx, cfg)
	if err != nil {
		logger.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	stores := bootstrap.BuildStores(pool)

	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	if redisClient == nil {
		logger.Error("redis is required for the reminder queue and sweep guard")
		os.Exit(1)
	}
	defer redisClient.Close()

	if cfg.UseMemoryQueue {
		logger.Error("worker cannot run with USE_MEMORY_QUEUE=true; reminders must live in redis")
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	botMetrics := metrics.NewBotMetrics(registry)

	queue := bootstrap.BuildTaskQueue(cfg, redisClient, logger)
	worker := bootstrap.BuildReminderWorker(cfg, stores, queue, botMetrics, logger)
	worker.Start(ctx)
	logger.Info("reminder worker started", "workers", cfg.ReminderWorkers, "poll_interval", cfg.TaskPollInterval.String())

	sender := whatsapp.NewSender(cfg.WhatsAppAPIBaseURL, logger)
	notifier := clinic.NewTrialNotifier(stores.Clinics, sender, redisClient, logger)

	// hourly tick; the notifier's redis guard keeps the sweep at once per day
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if time.Now().UTC().Hour() != cfg.TrialSweepHour {
					continue
				}
				sent, err := notifier.RunDaily(ctx)
				if err != nil {
					logger.Error("trial sweep failed", "error", err)
					continue
				}
				if sent > 0 {
					logger.Info("trial notices sent", "count", sent)
				}
			}
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down worker...")

	done := make(chan struct{})
	go func() {
		worker.Wait()
		close(done)
	}()
	select {
	case <-done:
		logger.Info("worker stopped")
	case <-time.After(30 * time.Second):
		logger.Error("worker shutdown timed out")
	}
}
