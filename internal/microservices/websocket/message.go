package websocket

import (
	"encoding/json"
	"time"
)

// Message protocol definitions

type MessageType string

const (
	TypeNotification MessageType = "notification" // a stored notification for this user
	TypeSystem       MessageType = "system"       // connection status
)

// Message is one frame sent to the client
type Message struct {
	Type         MessageType     `json:"type"`
	Notification json.RawMessage `json:"notification,omitempty"`
	Content      string          `json:"content,omitempty"`
	Timestamp    time.Time       `json:"timestamp"`
}

// NewNotificationMessage wraps a published notification event as received from redis
func NewNotificationMessage(payload []byte) *Message {
	return &Message{
		Type:         TypeNotification,
		Notification: json.RawMessage(payload),
		Timestamp:    time.Now().UTC(),
	}
}

func NewSystemMessage(content string) *Message {
	return &Message{
		Type:      TypeSystem,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON: marshal Message struct to JSON
func (m *Message) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// MessageFromJSON: unmarshal JSON data to Message struct
func MessageFromJSON(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
