package broker

type EventType string

const (
	// Standardized event types in format: <resource>.<action>
	NoteCreated           EventType = "note.created"
	NoteUpdated           EventType = "note.updated"
	NoteDeleted           EventType = "note.deleted"
	NoteCompletionToggled EventType = "note.completion_toggled"
	NoteRescheduled       EventType = "note.rescheduled"

	UserCreated EventType = "user.created"
)

// NoteSubject matches every note event for subscribers that want the whole
// stream.
const NoteSubject = "note.>"
