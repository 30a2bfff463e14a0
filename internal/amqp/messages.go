package amqp

import (
	"encoding/json"
	"time"

	"expensex/internal/services"
)

// AlertMessage carries a budget alert from the process that raised it to the
// notifier worker that delivers it.
type AlertMessage struct {
	Alert     services.Alert `json:"alert"`
	Timestamp time.Time      `json:"timestamp"`
}

// NewAlertMessage wraps an alert stamped with the current time.
func NewAlertMessage(alert services.Alert) *AlertMessage {
	return &AlertMessage{
		Alert:     alert,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *AlertMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// AlertMessageFromJSON decodes a message body.
func AlertMessageFromJSON(data []byte) (*AlertMessage, error) {
	var msg AlertMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
