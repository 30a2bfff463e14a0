package notify

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"expensex/internal/services"
)

type captureSender struct {
	msgs []*gomail.Message
	err  error
}

func (c *captureSender) DialAndSend(m ...*gomail.Message) error {
	c.msgs = append(c.msgs, m...)
	return c.err
}

func testAlert() services.Alert {
	return services.Alert{
		ID:       "alert-Food",
		Title:    services.AlertTitle,
		Body:     "You've spent $1,100.00 on Food. Limit: $1,000.00",
		Category: "Food",
		Total:    decimal.NewFromInt(1100),
		Limit:    decimal.NewFromInt(1000),
		Currency: "USD",
		RaisedAt: time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC),
	}
}

func TestEmailNotify(t *testing.T) {
	sender := &captureSender{}
	e := NewEmailWithSender(EmailConfig{From: "alerts@example.com", To: "me@example.com"}, sender)

	require.NoError(t, e.Notify(context.Background(), testAlert()))
	require.Len(t, sender.msgs, 1)

	m := sender.msgs[0]
	assert.Equal(t, []string{"me@example.com"}, m.GetHeader("To"))
	assert.Equal(t, []string{"[expensex] Budget Exceeded: Food"}, m.GetHeader("Subject"))

	var buf bytes.Buffer
	_, err := m.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "You've spent $1,100.00 on Food.")
}

func TestEmailNotifyError(t *testing.T) {
	sender := &captureSender{err: errors.New("connection refused")}
	e := NewEmailWithSender(EmailConfig{From: "a@example.com", To: "b@example.com"}, sender)
	err := e.Notify(context.Background(), testAlert())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "send alert email")
}

func TestLogNotify(t *testing.T) {
	assert.NoError(t, NewLog(nil).Notify(context.Background(), testAlert()))
}
