package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Domain event types
const (
	SessionReset             = "session.reset"
	QuestionsGenerated       = "questions.generated"
	RecommendationsGenerated = "recommendations.generated"
	PromptGenerated          = "prompt.generated"
	PromptEdited             = "prompt.edited"
	PromptSaved              = "prompt.saved"
	PromptExported           = "prompt.exported"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "prompt.saved").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

type BaseEvent struct {
	ID         string
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func New(eventType string, data map[string]interface{}) BaseEvent {
	return BaseEvent{
		ID:         uuid.NewString(),
		Type:       eventType,
		Data:       data,
		OccurredAt: time.Now().UTC(),
	}
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

// envelope is the wire form shared by the in-process bus and NATS
type envelope struct {
	ID         string                 `json:"id,omitempty"`
	Type       string                 `json:"type"`
	OccurredAt time.Time              `json:"occurred_at"`
	Data       map[string]interface{} `json:"data"`
}

// Encode serializes an event with its type and timestamp
func Encode(e Event) ([]byte, error) {
	env := envelope{
		Type:       e.EventType(),
		OccurredAt: e.Timestamp(),
		Data:       e.Payload(),
	}
	if b, ok := e.(BaseEvent); ok {
		env.ID = b.ID
	}
	return json.Marshal(env)
}

// Decode reads an encoded event. ok is false when data is valid JSON but not
// an envelope, so callers can treat it as a bare payload.
func Decode(data []byte) (BaseEvent, bool, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return BaseEvent{}, false, fmt.Errorf("decode event: %w", err)
	}
	if env.Type == "" {
		return BaseEvent{}, false, nil
	}
	return BaseEvent{
		ID:         env.ID,
		Type:       env.Type,
		Data:       env.Data,
		OccurredAt: env.OccurredAt,
	}, true, nil
}
