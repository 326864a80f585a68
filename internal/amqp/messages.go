package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// LedgerEventMessage carries one committed ledger change. Consumers that
// need the full entity reload the ledger snapshot from the shared store.
type LedgerEventMessage struct {
	Type      string          `json:"type"`
	EntityID  string          `json:"entityId"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// NewLedgerEventMessage builds a message, encoding payload when present.
func NewLedgerEventMessage(eventType, entityID string, ts time.Time, payload any) (*LedgerEventMessage, error) {
	if ts.IsZero() {
		ts = time.Now()
	}
	msg := &LedgerEventMessage{
		Type:      eventType,
		EntityID:  entityID,
		Timestamp: ts,
	}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal payload: %w", err)
		}
		msg.Payload = raw
	}
	return msg, nil
}

// ToJSON converts the message to JSON bytes
func (m *LedgerEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// DecodePayload unmarshals the payload into v.
func (m *LedgerEventMessage) DecodePayload(v any) error {
	if len(m.Payload) == 0 {
		return fmt.Errorf("message %s has no payload", m.Type)
	}
	return json.Unmarshal(m.Payload, v)
}

// LedgerEventMessageFromJSON creates a message from JSON bytes
func LedgerEventMessageFromJSON(data []byte) (*LedgerEventMessage, error) {
	var msg LedgerEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Type == "" {
		return nil, fmt.Errorf("message without type")
	}
	return &msg, nil
}
