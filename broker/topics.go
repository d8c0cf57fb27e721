package broker

const (
	NoteEventsSubject = "note_events"

	noteEntity = "note"
)
