package tcp

import (
	"context"
	"errors"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/linechat/internal/core"
)

// State tracks the listener lifecycle.
type State int32

const (
	StateRunning State = iota
	StateDraining
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateDraining:
		return "draining"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Server accepts TCP chat connections and hands each one to a handler. On
// shutdown it stops accepting, waits a bounded time for handlers to flush
// their outbound drains, then force-closes whatever is left.
type Server struct {
	addr         string
	hub          *core.Hub
	log          *zerolog.Logger
	drainTimeout time.Duration

	state atomic.Int32
	wg    sync.WaitGroup

	mu       sync.Mutex
	listener net.Listener
	conns    map[net.Conn]struct{}
}

// NewServer builds a server for the given listen address.
func NewServer(addr string, hub *core.Hub, drainTimeout time.Duration, logger *zerolog.Logger) *Server {
	return &Server{
		addr:         addr,
		hub:          hub,
		log:          logger,
		drainTimeout: drainTimeout,
		conns:        make(map[net.Conn]struct{}),
	}
}

// State reports the current lifecycle phase.
func (s *Server) State() State {
	return State(s.state.Load())
}

// Listen binds the address. It is separate from Serve so callers can learn
// the bound port first (tests listen on :0).
func (s *Server) Listen() (net.Addr, error) {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()
	return ln.Addr(), nil
}

// Serve accepts connections until ctx is cancelled, then drains. Listen must
// have been called first.
func (s *Server) Serve(ctx context.Context) error {
	s.mu.Lock()
	ln := s.listener
	s.mu.Unlock()

	go s.acceptLoop(ln)

	<-ctx.Done()
	s.state.Store(int32(StateDraining))
	s.log.Info().Msg("draining tcp connections")
	_ = ln.Close()

	// The hub, cancelled by the same context, closes every outbound queue
	// after the shutdown notice; handlers exit once their writes are done.
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(s.drainTimeout):
		remaining := s.closeAll()
		s.log.Warn().Int("connections", remaining).Msg("drain timeout elapsed, forced close")
		<-done
	}

	s.state.Store(int32(StateStopped))
	s.log.Info().Msg("tcp server stopped")
	return nil
}

func (s *Server) acceptLoop(ln net.Listener) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			if s.State() != StateRunning || errors.Is(err, net.ErrClosed) {
				return
			}
			// Transient accept failures (EMFILE and friends) must not kill
			// the listener; log and keep accepting.
			s.log.Error().Err(err).Msg("accept failed, retrying")
			time.Sleep(50 * time.Millisecond)
			continue
		}

		s.track(conn)
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.untrack(conn)
			newConnHandler(conn, s.hub, s.log).run()
		}()
	}
}

func (s *Server) track(conn net.Conn) {
	s.mu.Lock()
	s.conns[conn] = struct{}{}
	s.mu.Unlock()
}

func (s *Server) untrack(conn net.Conn) {
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
}

// closeAll force-closes every live connection, unblocking stuck handlers.
func (s *Server) closeAll() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.conns {
		_ = conn.Close()
	}
	return len(s.conns)
}
