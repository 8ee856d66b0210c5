package core

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandJoin registers the client under a username.
	CommandJoin CommandKind = iota
	// CommandLeave disconnects the client voluntarily.
	CommandLeave
	// CommandBroadcast delivers a chat message to everyone.
	CommandBroadcast
	// CommandWhisper delivers a message to one named user.
	CommandWhisper
	// CommandList requests the active-user list.
	CommandList
	// CommandNick renames the client.
	CommandNick
)

// Command represents an action requested by a client.
type Command struct {
	Kind CommandKind
	// Name is the join username, the whisper target, or the new nick.
	Name string
	Text string
}
