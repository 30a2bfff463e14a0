// Package notify delivers budget alerts to the user.
package notify

import (
	"context"

	applog "expensex/internal/log"
	"expensex/internal/services"
)

// Log writes alerts to the application log. It never fails.
type Log struct {
	logger *applog.Logger
}

func NewLog(logger *applog.Logger) *Log {
	if logger == nil {
		logger = applog.Discard()
	}
	return &Log{logger: logger.WithComponent(applog.ComponentNotify)}
}

func (l *Log) Notify(ctx context.Context, a services.Alert) error {
	l.logger.WarnContext(ctx, a.Title,
		"alert_id", a.ID,
		applog.FieldCategory, a.Category,
		applog.FieldTotal, a.Total.String(),
		applog.FieldLimit, a.Limit.String(),
		"body", a.Body)
	return nil
}
