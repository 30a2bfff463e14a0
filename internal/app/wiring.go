package app

import (
	"context"
	"errors"

	"expensex/internal/amqp"
	"expensex/internal/assistant"
	"expensex/internal/config"
	"expensex/internal/export"
	applog "expensex/internal/log"
	"expensex/internal/notify"
	"expensex/internal/services"
)

// Closer releases resources acquired while wiring optional integrations.
type Closer func() error

func joinClosers(cs []Closer) Closer {
	return func() error {
		var errs []error
		for i := len(cs) - 1; i >= 0; i-- {
			if err := cs[i](); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}
}

// EmailConfig extracts SMTP settings from the application config.
func EmailConfig(cfg *config.Config) notify.EmailConfig {
	return notify.EmailConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
		To:       cfg.AlertEmailTo,
	}
}

// NewNotifier builds the API process's alert sink. Alerts are always
// logged; with AMQP configured they are queued for the notifier worker,
// otherwise they are mailed directly when SMTP is configured. An
// unreachable broker is logged and skipped.
func NewNotifier(cfg *config.Config, logger *applog.Logger) (services.Notifier, Closer) {
	notifiers := services.MultiNotifier{notify.NewLog(logger)}
	var closers []Closer

	switch {
	case cfg.AMQPURL != "":
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without alert queue", applog.FieldError, err)
			break
		}
		logger.Info("Initialized AMQP client",
			"exchange", cfg.AMQPExchange,
			"queue", cfg.AMQPQueue)
		notifiers = append(notifiers, client)
		closers = append(closers, client.Close)
	case cfg.EmailEnabled():
		notifiers = append(notifiers, notify.NewEmail(EmailConfig(cfg)))
		logger.Info("Alert email delivery enabled", "to", cfg.AlertEmailTo)
	}

	return notifiers, joinClosers(closers)
}

// NewOptions wires the optional assistant model and Google Sheets export.
// Either one failing to initialize is logged and left disabled.
func NewOptions(ctx context.Context, cfg *config.Config, logger *applog.Logger) (Options, Closer) {
	opts := Options{Currency: cfg.Currency}
	var closers []Closer

	if cfg.GeminiAPIKey != "" {
		gem, err := assistant.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.WarnContext(ctx, "Failed to initialize Gemini client, assistant disabled", applog.FieldError, err)
		} else {
			opts.Completer = gem
			closers = append(closers, gem.Close)
		}
	}

	if cfg.SheetsEnabled() {
		sheets, err := export.NewSheets(ctx, export.SheetsConfig{
			SpreadsheetID:   cfg.GoogleSpreadsheetID,
			SheetName:       cfg.GoogleSheetName,
			CredentialsFile: cfg.GoogleServiceAccountFile,
			CredentialsJSON: cfg.GoogleServiceAccountJSON,
		}, logger)
		if err != nil {
			logger.WarnContext(ctx, "Failed to initialize Google Sheets export", applog.FieldError, err)
		} else {
			opts.Sheets = sheets
		}
	}

	return opts, joinClosers(closers)
}
