package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"lifedash/internal/services"
)

// WriteEventMessage carries one write event to the journal worker.
type WriteEventMessage struct {
	Event     services.WriteEvent `json:"event"`
	Timestamp time.Time           `json:"timestamp"`
}

func NewWriteEventMessage(ev services.WriteEvent) *WriteEventMessage {
	return &WriteEventMessage{
		Event:     ev,
		Timestamp: time.Now(),
	}
}

func (m *WriteEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// WriteEventMessageFromJSON decodes a message and rejects one without a key.
func WriteEventMessageFromJSON(data []byte) (*WriteEventMessage, error) {
	var msg WriteEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Event.Key == "" {
		return nil, fmt.Errorf("write event without key")
	}
	return &msg, nil
}
