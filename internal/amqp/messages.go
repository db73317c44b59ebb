package amqp

import (
	"encoding/json"
	"errors"
	"time"
)

// RefreshMessage announces that new monthly data landed in the document
// store. Consumers drop cached summaries and rebuild.
type RefreshMessage struct {
	Period    string    `json:"period,omitempty"` // newest period ingested, e.g. "2025M07"
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
}

// NewRefreshMessage creates a refresh message stamped with the current time.
func NewRefreshMessage(period, source string) *RefreshMessage {
	return &RefreshMessage{
		Period:    period,
		Source:    source,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *RefreshMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RefreshMessageFromJSON decodes a message. A message without source is rejected.
func RefreshMessageFromJSON(data []byte) (*RefreshMessage, error) {
	var msg RefreshMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Source == "" {
		return nil, errors.New("refresh message without source")
	}
	return &msg, nil
}
