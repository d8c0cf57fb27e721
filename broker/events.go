package broker

type EventType string

const (
	// Standardized event types in format: <resource>.<action>
	NoteCreated EventType = "note.created"
	NoteUpdated EventType = "note.updated"
	NoteDeleted EventType = "note.deleted"
)

// Operation is the action part of the event type.
func (e EventType) Operation() string {
	switch e {
	case NoteCreated:
		return "create"
	case NoteUpdated:
		return "update"
	case NoteDeleted:
		return "delete"
	default:
		return "unknown"
	}
}
