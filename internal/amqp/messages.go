package amqp

import (
	"encoding/json"
	"time"
)

// ExpensesSavedMessage announces that a user's expense table was written.
// It carries a summary only; consumers read the table from storage.
type ExpensesSavedMessage struct {
	Username  string    `json:"username"`
	Resource  string    `json:"resource"`
	Count     int       `json:"count"`
	Total     string    `json:"total"`
	Timestamp time.Time `json:"timestamp"`
}

// NewExpensesSavedMessage stamps a save summary with the current time.
func NewExpensesSavedMessage(username, resource string, count int, total string) *ExpensesSavedMessage {
	return &ExpensesSavedMessage{
		Username:  username,
		Resource:  resource,
		Count:     count,
		Total:     total,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ExpensesSavedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ExpensesSavedMessageFromJSON decodes a message body.
func ExpensesSavedMessageFromJSON(data []byte) (*ExpensesSavedMessage, error) {
	var msg ExpensesSavedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
