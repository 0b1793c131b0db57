package events

import "time"

// Event type codes published on the internal bus.
const (
	LeadCaptured = "LEAD_CAPTURED"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "LEAD_CAPTURED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is a plain implementation for events with no extra behavior.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// NewLeadCaptured builds the event emitted once when a conversation yields a
// complete contact record.
func NewLeadCaptured(sessionKey, name, phone, email, rawText, language string) BaseEvent {
	return BaseEvent{
		Type: LeadCaptured,
		Data: map[string]interface{}{
			"session_key": sessionKey,
			"name":        name,
			"phone":       phone,
			"email":       email,
			"raw_text":    rawText,
			"language":    language,
		},
		OccurredAt: time.Now(),
	}
}
