package main

import (
	"context"
	"os"
	"time"

	"expensex/internal/amqp"
	"expensex/internal/app"
	"expensex/internal/cache"
	"expensex/internal/cli"
	applog "expensex/internal/log"
	"expensex/internal/notify"
	"expensex/internal/services"
	"expensex/internal/worker"
)

const cacheCleanupInterval = 5 * time.Minute

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL")).WithComponent(applog.ComponentWorker)
	cfg := cli.LoadAndValidateConfig(logger)
	logger.Info("Starting expensex-notifier", applog.FieldOperation, applog.OpStartup)

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the notifier")
		os.Exit(1)
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
		os.Exit(1)
	}

	downstream := services.MultiNotifier{notify.NewLog(logger)}
	if cfg.EmailEnabled() {
		downstream = append(downstream, notify.NewEmail(app.EmailConfig(cfg)))
		logger.Info("Alert email delivery enabled", "to", cfg.AlertEmailTo)
	} else {
		logger.Warn("SMTP not configured, alerts will only be logged")
	}

	relay := worker.NewAlertRelay(client, downstream, worker.DefaultRelayConfig(), logger)

	caches := cache.NewManager(logger)
	for _, c := range relay.Cleaners() {
		caches.Register(c)
	}

	ctx, done := cli.GracefulShutdown(logger, cfg.ShutdownTimeout, func(ctx context.Context) {
		if err := relay.Stop(ctx); err != nil {
			logger.ErrorContext(ctx, "Alert relay stopped with error", applog.FieldError, err)
		}
		caches.Stop()
		if err := client.Close(); err != nil {
			logger.ErrorContext(ctx, "Failed to close AMQP client", applog.FieldError, err)
		}
		stats := relay.Stats()
		logger.InfoContext(ctx, "Alert relay totals",
			"delivered", stats.Delivered,
			"duplicates", stats.Duplicates,
			"failed", stats.Failed,
			"dropped", stats.Dropped)
	})
	caches.StartCleanup(ctx, cacheCleanupInterval)

	if err := relay.Start(ctx); err != nil {
		logger.Error("Failed to start alert relay", applog.FieldError, err)
		os.Exit(1)
	}

	select {
	case <-ctx.Done():
	case <-relay.Done():
		if ctx.Err() == nil {
			// The consumer gave up for good.
			logger.Error("Alert consumer exited unexpectedly")
			_ = client.Close()
			os.Exit(1)
		}
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Notifier stopped gracefully")
}
