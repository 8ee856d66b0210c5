package core

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Options configure hub behavior.
type Options struct {
	// HistorySize bounds the broadcast backlog replayed to new joiners.
	HistorySize int
	// RateBurst is the token-bucket capacity per session.
	RateBurst float64
	// RateRefill is the bucket refill rate in tokens per second.
	RateRefill float64
	// MaxClients caps registered sessions (0 = unlimited).
	MaxClients int
}

// DefaultOptions returns the hub defaults used when a field is unset.
func DefaultOptions() Options {
	return Options{
		HistorySize: 50,
		RateBurst:   5,
		RateRefill:  1,
		MaxClients:  256,
	}
}

// inbound is one queue entry: a nil cmd marks the end of the client's
// command stream and synthesizes a leave.
type inbound struct {
	client *Client
	cmd    *Command
}

// Hub routes every chat command through a single goroutine. That confinement
// is what keeps registry, history, and rate-limit state free of locks:
// transports only ever talk to the hub through channels.
type Hub struct {
	opts     Options
	log      *zerolog.Logger
	registry *Registry
	history  *History
	inbound  chan inbound
	done     chan struct{}

	attachedMu sync.Mutex
	attached   map[*Client]struct{}
}

// NewHub builds a hub; a nil logger disables logging.
func NewHub(opts Options, logger *zerolog.Logger) *Hub {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Hub{
		opts:     opts,
		log:      logger,
		registry: NewRegistry(opts.MaxClients),
		history:  NewHistory(opts.HistorySize),
		inbound:  make(chan inbound, 256),
		done:     make(chan struct{}),
		attached: make(map[*Client]struct{}),
	}
}

// Registry exposes membership state for read-only diagnostics. Callers
// outside the hub goroutine may only use Snapshot.
func (h *Hub) Registry() *Registry {
	return h.registry
}

// Attach starts forwarding the client's commands into the hub queue. The
// transport must close the client's Commands channel when its read loop
// exits; the hub turns that into a leave.
func (h *Hub) Attach(client *Client) {
	h.attachedMu.Lock()
	h.attached[client] = struct{}{}
	h.attachedMu.Unlock()
	go h.pump(client)
}

// pump preserves the client's send order while merging all clients into one
// FIFO queue.
func (h *Hub) pump(client *Client) {
	for cmd := range client.Commands {
		select {
		case h.inbound <- inbound{client: client, cmd: cmd}:
		case <-h.done:
			return
		}
	}
	select {
	case h.inbound <- inbound{client: client}:
	case <-h.done:
	}
}

// Run processes commands until ctx is cancelled, then notifies every session
// of the shutdown and closes every outbound queue. It is the only goroutine
// allowed to mutate hub state.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case in := <-h.inbound:
			h.dispatch(in.client, in.cmd)
		case <-ctx.Done():
			h.drain()
			return
		}
	}
}

// dispatch applies one command. The recover boundary keeps a single bad
// command from taking the router down with every queue still attached.
func (h *Hub) dispatch(client *Client, cmd *Command) {
	defer func() {
		if rec := recover(); rec != nil {
			h.log.Error().Interface("panic", rec).Str("conn_id", client.ConnID).Msg("router recovered")
		}
	}()

	if client.detached {
		return
	}
	if cmd == nil {
		h.handleLeave(client)
		return
	}

	switch cmd.Kind {
	case CommandJoin:
		h.handleJoin(client, cmd.Name)
	case CommandLeave:
		h.handleLeave(client)
	default:
		if !client.joined() {
			h.send(client, errorEvent(ErrCodeNotJoined, "join first"))
			return
		}
		switch cmd.Kind {
		case CommandBroadcast:
			h.handleBroadcast(client.session, cmd.Text)
		case CommandWhisper:
			h.handleWhisper(client.session, cmd.Name, cmd.Text)
		case CommandList:
			h.send(client, &Event{Kind: EventUsers, Users: h.registry.ActiveUsers()})
		case CommandNick:
			h.handleNick(client.session, cmd.Name)
		}
	}
}

func (h *Hub) handleJoin(client *Client, name string) {
	if client.joined() {
		h.send(client, errorEvent(ErrCodeBadRequest, "already joined"))
		return
	}
	if !ValidName(name) {
		h.send(client, errorEvent(ErrCodeInvalidName, "username must be 1-32 chars of letters, digits, _ or -"))
		return
	}

	now := time.Now()
	sess, cerr := h.registry.Register(client, name, now)
	if cerr != nil {
		h.send(client, &Event{Kind: EventError, Error: cerr})
		return
	}
	sess.bucket = NewTokenBucket(h.opts.RateBurst, h.opts.RateRefill, now)
	client.session = sess

	// History snapshot is taken before the join notice so the joiner never
	// sees a message both replayed and delivered live.
	h.send(client, &Event{Kind: EventWelcome, Name: sess.Name, History: h.history.Snapshot()})
	h.broadcastExcept(sess.ID, &Event{Kind: EventNotice, Text: sess.Name + " joined"})

	h.log.Info().
		Str("conn_id", client.ConnID).
		Int64("session_id", sess.ID).
		Str("user", sess.Name).
		Msg("client joined")
}

// handleLeave retires the client. It is idempotent: explicit QUIT, a read
// loop closing its command stream, and shutdown may all race here.
func (h *Hub) handleLeave(client *Client) {
	if client.detached {
		return
	}
	client.detached = true

	h.attachedMu.Lock()
	delete(h.attached, client)
	h.attachedMu.Unlock()

	sess := client.session
	if sess != nil {
		h.registry.Unregister(sess.ID)
		client.session = nil
	}
	close(client.Events)

	if sess != nil {
		h.broadcastAll(&Event{Kind: EventNotice, Text: sess.Name + " left"})
		h.log.Info().
			Int64("session_id", sess.ID).
			Str("user", sess.Name).
			Msg("client left")
	}
}

func (h *Hub) handleBroadcast(sess *Session, text string) {
	now := time.Now()
	if !sess.bucket.Allow(now) {
		h.send(sess.Client, errorEvent(ErrCodeRateLimited, "too many messages, slow down"))
		return
	}
	sess.LastMessageAt = now

	msg := Message{From: sess.Name, Text: text, CreatedAt: now}
	h.history.Append(msg)
	h.broadcastAll(&Event{Kind: EventMessage, Message: msg})
}

func (h *Hub) handleWhisper(sess *Session, to, text string) {
	// Resolve the target first so a typo'd name does not cost a token.
	target := h.registry.FindByName(to)
	if target == nil {
		h.send(sess.Client, errorEvent(ErrCodeNoSuchUser, "no such user: "+to))
		return
	}
	now := time.Now()
	if !sess.bucket.Allow(now) {
		h.send(sess.Client, errorEvent(ErrCodeRateLimited, "too many messages, slow down"))
		return
	}
	sess.LastMessageAt = now

	h.send(target.Client, &Event{Kind: EventWhisper, Name: sess.Name, Text: text})
	h.send(sess.Client, &Event{Kind: EventNotice, Text: "whisper sent to " + target.Name})
}

func (h *Hub) handleNick(sess *Session, newName string) {
	if !ValidName(newName) {
		h.send(sess.Client, errorEvent(ErrCodeInvalidName, "username must be 1-32 chars of letters, digits, _ or -"))
		return
	}
	old := sess.Name
	if cerr := h.registry.Rename(sess.ID, newName); cerr != nil {
		h.send(sess.Client, &Event{Kind: EventError, Error: cerr})
		return
	}
	h.broadcastAll(&Event{Kind: EventNotice, Text: old + " is now known as " + sess.Name})
}

// send enqueues without blocking: a full queue means a slow consumer, and
// stalling the router on it would stall every other client.
func (h *Hub) send(client *Client, ev *Event) {
	if client.detached {
		return
	}
	select {
	case client.Events <- ev:
	default:
		h.log.Warn().Str("conn_id", client.ConnID).Msg("outbound queue full, dropping event")
	}
}

func (h *Hub) broadcastAll(ev *Event) {
	h.registry.Each(func(s *Session) { h.send(s.Client, ev) })
}

func (h *Hub) broadcastExcept(id int64, ev *Event) {
	h.registry.Each(func(s *Session) {
		if s.ID != id {
			h.send(s.Client, ev)
		}
	})
}

// drain runs once at shutdown: every session gets the shutdown notice
// through its normal outbound path, then every attached queue closes so the
// write loops can flush and exit.
func (h *Hub) drain() {
	h.broadcastAll(&Event{Kind: EventNotice, Text: "server shutting down"})

	h.attachedMu.Lock()
	clients := make([]*Client, 0, len(h.attached))
	for c := range h.attached {
		clients = append(clients, c)
	}
	h.attached = make(map[*Client]struct{})
	h.attachedMu.Unlock()

	for _, c := range clients {
		if c.detached {
			continue
		}
		c.detached = true
		if c.session != nil {
			h.registry.Unregister(c.session.ID)
			c.session = nil
		}
		close(c.Events)
	}
	close(h.done)
	h.log.Info().Msg("router stopped")
}
