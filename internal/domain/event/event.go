package event

import (
	"time"

	"github.com/google/uuid"
)

// Event represents a domain event published after a committed change.
// Delivery is best-effort, at-most-once: no subscriber may be required for
// correctness.
type Event struct {
	ID            string                 `json:"id"`
	Type          Type                   `json:"type"`
	EngagementID  int64                  `json:"engagement_id"`
	WorkpaperID   int64                  `json:"workpaper_id,omitempty"`
	Payload       map[string]interface{} `json:"payload"`
	Timestamp     time.Time              `json:"timestamp"`
	CorrelationID string                 `json:"correlation_id"`
}

// NewEvent creates a new domain event with auto-generated ID and timestamp
func NewEvent(eventType Type, engagementID int64, payload map[string]interface{}) *Event {
	return &Event{
		ID:            uuid.NewString(),
		Type:          eventType,
		EngagementID:  engagementID,
		Payload:       payload,
		Timestamp:     time.Now(),
		CorrelationID: uuid.NewString(),
	}
}

// NewWorkpaperEvent creates an event scoped to a single workpaper
func NewWorkpaperEvent(eventType Type, engagementID, workpaperID int64, payload map[string]interface{}) *Event {
	evt := NewEvent(eventType, engagementID, payload)
	evt.WorkpaperID = workpaperID
	return evt
}

// WithPayload returns a new Event with an added payload key-value pair
// (immutable operation)
func (e *Event) WithPayload(key string, value interface{}) *Event {
	newPayload := make(map[string]interface{}, len(e.Payload)+1)
	for k, v := range e.Payload {
		newPayload[k] = v
	}
	newPayload[key] = value

	clone := *e
	clone.Payload = newPayload
	return &clone
}

// GetPayloadString retrieves a string value from the payload
func (e *Event) GetPayloadString(key string) string {
	if val, ok := e.Payload[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}
