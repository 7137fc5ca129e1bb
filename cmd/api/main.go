package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mawidhq/clinic-bot/internal/api/router"
	"github.com/mawidhq/clinic-bot/internal/app/bootstrap"
	appconfig "github.com/mawidhq/clinic-bot/internal/config"
	"github.com/mawidhq/clinic-bot/internal/observability/metrics"
	"github.com/mawidhq/clinic-bot/internal/whatsapp"
	"github.com/mawidhq/clinic-bot/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting clinic-bot API server", "env", cfg.Env, "port", cfg.Port)

	ctx := context.Background()

	pool, err := bootstrap.BuildDBPool(ctx, cfg)
	if err != nil {
		logger.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	stores := bootstrap.BuildStores(pool)

	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	if redisClient == nil {
		logger.Error("redis is required for conversation locking and reminders")
		os.Exit(1)
	}
	defer redisClient.Close()

	registry := prometheus.NewRegistry()
	botMetrics := metrics.NewBotMetrics(registry)

	queue := bootstrap.BuildTaskQueue(cfg, redisClient, logger)
	extractor, err := bootstrap.BuildIntentExtractor(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to build intent extractor", "error", err)
		os.Exit(1)
	}

	engine := bootstrap.BuildEngine(cfg, stores, redisClient, queue, extractor, botMetrics, logger)
	webhook := whatsapp.NewHandler(cfg.WhatsAppVerifyToken, cfg.WhatsAppAppSecret, engine, botMetrics, logger)

	r := router.New(&router.Config{
		Logger:         logger,
		WebhookHandler: webhook,
		MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
