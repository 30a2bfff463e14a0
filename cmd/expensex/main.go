package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"expensex/internal/app"
	"expensex/internal/backend"
	"expensex/internal/cache"
	"expensex/internal/cli"
	apphttp "expensex/internal/http"
	applog "expensex/internal/log"
)

const cacheCleanupInterval = time.Minute

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)
	logger.Info("Starting expensex", applog.FieldOperation, applog.OpStartup)

	startCtx := context.Background()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err)
		os.Exit(1)
	}
	res, err := backend.NewFactory(logger).CreateBackend(startCtx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize data backend", applog.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	notifier, closeNotifier := app.NewNotifier(cfg, logger)
	opts, closeOptions := app.NewOptions(startCtx, cfg, logger)

	a := app.New(res.Store, notifier, opts, logger)
	if err := a.Load(startCtx); err != nil {
		logger.Error("Failed to load application state", applog.FieldError, err)
		os.Exit(1)
	}

	srv := apphttp.NewServer(apphttp.Config{
		Addr:              ":" + cfg.Port,
		RequestsPerMinute: cfg.RateLimitPerMinute,
		BlockSuspicious:   cfg.BlockSuspicious,
		TrustedProxies:    cfg.TrustedProxies,
	}, a, logger)

	caches := cache.NewManager(logger)
	for _, c := range res.Cleaners {
		caches.Register(c)
	}
	for _, c := range srv.Cleaners() {
		caches.Register(c)
	}

	ctx, done := cli.GracefulShutdown(logger, cfg.ShutdownTimeout, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.ErrorContext(ctx, "Server shutdown error", applog.FieldError, err)
		}
		caches.Stop()
		if err := a.Close(ctx); err != nil {
			logger.ErrorContext(ctx, "Failed to flush pending writes", applog.FieldError, err)
		}
		if err := closeOptions(); err != nil {
			logger.ErrorContext(ctx, "Failed to close integrations", applog.FieldError, err)
		}
		if err := closeNotifier(); err != nil {
			logger.ErrorContext(ctx, "Failed to close alert queue", applog.FieldError, err)
		}
		if err := res.Close(); err != nil {
			logger.ErrorContext(ctx, "Failed to close data backend", applog.FieldError, err)
		}
	})
	caches.StartCleanup(ctx, cacheCleanupInterval)

	// Catch limits crossed while the process was down.
	if _, err := a.CheckBudgets(startCtx); err != nil {
		logger.Warn("Startup budget check failed", applog.FieldError, err)
	}

	logger.Info("Starting HTTP server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"currency", a.Currency(),
		"assistant", a.Assistant.Available(),
		"sheets", a.Sheets != nil)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
