package core

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventWelcome confirms a join; History carries the replayed backlog.
	EventWelcome EventKind = iota
	// EventMessage delivers a broadcast chat message.
	EventMessage
	// EventWhisper delivers a direct message to its target.
	EventWhisper
	// EventNotice carries join/leave/rename/shutdown notifications.
	EventNotice
	// EventUsers answers a list request.
	EventUsers
	// EventError notifies the client about a domain error.
	EventError
)

// Event is sent to clients to describe what happened in the system.
type Event struct {
	Kind EventKind
	// Name is the welcomed username or the whisper sender.
	Name    string
	Text    string
	Message Message
	// History is the broadcast backlog replayed on EventWelcome.
	History []Message
	Users   []string
	Error   *CoreError
}

func errorEvent(code, msg string) *Event {
	return &Event{Kind: EventError, Error: NewError(code, msg)}
}
