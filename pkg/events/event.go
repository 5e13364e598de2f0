package events

import "time"

// Board events published after a committed mutation. Every payload carries
// "user_id" so subscribers can route it to the owner's devices.
const (
	NoteCreated    = "NOTE_CREATED"
	NoteUpdated    = "NOTE_UPDATED"
	NotePinToggled = "NOTE_PIN_TOGGLED"
	NoteArchived   = "NOTE_ARCHIVED"
	NoteRestored   = "NOTE_RESTORED"
	NotesDeleted   = "NOTES_DELETED"
	NotesReordered = "NOTES_REORDERED"
)

// SubjectPrefix is prepended to the event type to form the NATS subject.
const SubjectPrefix = "events."

// Event defines the contract for all system events.
type Event interface {
	EventType() string
	Payload() map[string]interface{}
	Timestamp() time.Time
}

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
