package core

// clientQueueSize bounds the per-client channels. The hub never blocks on a
// full outbound queue; it drops for that client only.
const clientQueueSize = 16

// Client is one connected participant as seen by the core layer. The
// transport owns the network connection and the channel endpoints; the hub
// owns everything else.
type Client struct {
	// ConnID correlates log lines for a connection before it has a username.
	ConnID string

	// Commands carries parsed requests toward the hub. The transport's read
	// loop is the single producer and must close it when the loop exits; the
	// hub turns the close into a leave.
	Commands chan *Command

	// Events is the client's outbound queue. The hub is the only writer and
	// closes it exactly once when the session is removed; the transport's
	// write loop is the single consumer.
	Events chan *Event

	// session is set by the hub on a successful join. Hub goroutine only.
	session *Session

	// detached flips when the hub has processed this client's leave, making
	// any duplicate leave a no-op. Hub goroutine only.
	detached bool
}

// NewClient constructs a client with initialized channels.
func NewClient(connID string) *Client {
	return &Client{
		ConnID:   connID,
		Commands: make(chan *Command, clientQueueSize),
		Events:   make(chan *Event, clientQueueSize),
	}
}

func (c *Client) joined() bool {
	return c.session != nil
}
