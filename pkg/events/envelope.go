package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Envelope is the wire form of a DomainEvent on the message bus.
type Envelope struct {
	OccurredAt    time.Time       `json:"occurred_at"`
	EventType     string          `json:"event_type"`
	AggregateType string          `json:"aggregate_type"`
	Payload       json.RawMessage `json:"payload"`
	EventID       uuid.UUID       `json:"event_id"`
	AggregateID   uuid.UUID       `json:"aggregate_id"`
}

// NewEnvelope wraps event. An empty payload is encoded as JSON null.
func NewEnvelope(event DomainEvent) Envelope {
	payload := json.RawMessage(event.Payload())
	if len(payload) == 0 {
		payload = json.RawMessage("null")
	}
	return Envelope{
		EventID:       event.EventID(),
		EventType:     event.EventType(),
		AggregateID:   event.AggregateID(),
		AggregateType: event.AggregateType(),
		OccurredAt:    event.OccurredAt(),
		Payload:       payload,
	}
}

// Marshal encodes event as an Envelope.
func Marshal(event DomainEvent) ([]byte, error) {
	return json.Marshal(NewEnvelope(event))
}
