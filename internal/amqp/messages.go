package amqp

import (
	"encoding/json"
	"time"

	"mitcash/internal/core"
)

// Action identifies the kind of write that produced an event.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

// TransactionEventMessage is a lightweight change notification. Consumers
// fetch the full transaction from the store by kind and ID.
type TransactionEventMessage struct {
	Kind      core.Kind `json:"kind"`
	ID        string    `json:"id"`
	Action    Action    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

func NewTransactionEventMessage(kind core.Kind, id string, action Action) *TransactionEventMessage {
	return &TransactionEventMessage{
		Kind:      kind,
		ID:        id,
		Action:    action,
		Timestamp: time.Now(),
	}
}

func (m *TransactionEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func TransactionEventMessageFromJSON(data []byte) (*TransactionEventMessage, error) {
	var msg TransactionEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
