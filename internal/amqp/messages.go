package amqp

import (
	"encoding/json"
	"time"

	"fintrack/internal/notify"
)

// NotificationMessage is the envelope published for every notification.
// The consumer delivers it through its own notify.Sender.
type NotificationMessage struct {
	Notification notify.Notification `json:"notification"`
	Timestamp    time.Time           `json:"timestamp"`
}

func NewNotificationMessage(n notify.Notification) *NotificationMessage {
	return &NotificationMessage{
		Notification: n,
		Timestamp:    time.Now().UTC(),
	}
}

func (m *NotificationMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func NotificationMessageFromJSON(data []byte) (*NotificationMessage, error) {
	var msg NotificationMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
