package events

import "time"

// Event types published on the bus. The subject is "events.<TYPE>".
const (
	NoteCreated         = "NOTE_CREATED"
	NoteIndexed         = "NOTE_INDEXED"
	NoteDeleted         = "NOTE_DELETED"
	StyleProfileLearned = "STYLE_PROFILE_LEARNED"
	PipelineCompleted   = "PIPELINE_COMPLETED"
	PipelineFailed      = "PIPELINE_FAILED"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "NOTE_CREATED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

// NewEvent stamps an event with the current time.
func NewEvent(eventType string, data map[string]interface{}) BaseEvent {
	if data == nil {
		data = map[string]interface{}{}
	}
	return BaseEvent{Type: eventType, Data: data, OccurredAt: time.Now().UTC()}
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
