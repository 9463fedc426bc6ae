package amqp

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"gastos/internal/intent"
)

// ChatMessage is one inbound message from a chat integration.
type ChatMessage struct {
	ID        string    `json:"id"`
	From      string    `json:"from"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// ChatReply answers a ChatMessage on the reply queue.
type ChatReply struct {
	MessageID string          `json:"message_id"`
	To        string          `json:"to"`
	Text      string          `json:"text"`
	Parsed    intent.Envelope `json:"parsed"`
	Error     string          `json:"error,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

func (m *ChatMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ChatMessageFromJSON decodes a message. A message without text is rejected.
func ChatMessageFromJSON(data []byte) (*ChatMessage, error) {
	var msg ChatMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if strings.TrimSpace(msg.Text) == "" {
		return nil, errors.New("message has no text")
	}
	return &msg, nil
}

func (r *ChatReply) ToJSON() ([]byte, error) {
	return json.Marshal(r)
}

func ChatReplyFromJSON(data []byte) (*ChatReply, error) {
	var r ChatReply
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	return &r, nil
}
