package tcp

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/linechat/internal/core"
	"github.com/vovakirdan/linechat/internal/proto"
)

var errLineTooLong = errors.New("line exceeds protocol limit")

// connHandler bridges one TCP connection to a core.Client: a read loop
// parsing lines into commands and a write loop draining the outbound queue.
type connHandler struct {
	conn   net.Conn
	client *core.Client
	hub    *core.Hub
	log    *zerolog.Logger

	// writeMu serializes the write loop with local protocol-error replies
	// sent straight from the read loop.
	writeMu sync.Mutex
}

func newConnHandler(conn net.Conn, hub *core.Hub, logger *zerolog.Logger) *connHandler {
	return &connHandler{
		conn:   conn,
		client: core.NewClient(uuid.NewString()),
		hub:    hub,
		log:    logger,
	}
}

// run drives both loops until either fails, then tears the connection down.
// The lifetime is the connection's own: during server drain the write loop
// keeps flushing until the hub closes the outbound queue.
func (h *connHandler) run() {
	h.hub.Attach(h.client)
	h.log.Info().
		Str("conn_id", h.client.ConnID).
		Str("remote", h.conn.RemoteAddr().String()).
		Msg("client connected")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 2)
	go func() {
		// Closing Commands is what makes the hub retire the session, so it
		// must happen on every read-loop exit, panics included.
		defer close(h.client.Commands)
		errCh <- h.guarded(ctx, h.readLoop)
	}()
	go func() {
		errCh <- h.guarded(ctx, h.writeLoop)
	}()

	err := <-errCh
	cancel()
	_ = h.conn.SetDeadline(time.Now()) // unblock the other loop's socket call
	<-errCh

	_ = h.conn.Close()

	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, context.Canceled) && !errors.Is(err, net.ErrClosed) {
		h.log.Warn().Err(err).Str("conn_id", h.client.ConnID).Msg("connection closed with error")
		return
	}
	h.log.Info().Str("conn_id", h.client.ConnID).Msg("client disconnected")
}

// guarded converts a loop panic into an error so one connection's failure
// ends in a synthesized leave instead of taking the process down.
func (h *connHandler) guarded(ctx context.Context, loop func(context.Context) error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("connection handler panic: %v", rec)
		}
	}()
	return loop(ctx)
}

func (h *connHandler) readLoop(ctx context.Context) error {
	reader := bufio.NewReaderSize(h.conn, proto.MaxLineBytes)
	for {
		line, err := readLine(reader)
		if errors.Is(err, errLineTooLong) {
			if werr := h.writeLine(proto.FormatError(core.NewError(core.ErrCodeBadRequest, "line too long"))); werr != nil {
				return werr
			}
			continue
		}
		if err != nil {
			return err
		}

		cmd, perr := proto.ParseLine(line)
		if perr != nil {
			// Malformed input is answered locally and never reaches the hub.
			if werr := h.writeLine(proto.FormatError(perr)); werr != nil {
				return werr
			}
			continue
		}

		select {
		case h.client.Commands <- cmd:
		case <-ctx.Done():
			return ctx.Err()
		}

		if cmd.Kind == core.CommandLeave {
			// Voluntary QUIT: stop reading, the hub will close our queue.
			return nil
		}
	}
}

func (h *connHandler) writeLoop(ctx context.Context) error {
	for {
		select {
		case ev, ok := <-h.client.Events:
			if !ok {
				return nil
			}
			for _, line := range proto.FormatEvent(ev) {
				if err := h.writeLine(line); err != nil {
					return err
				}
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (h *connHandler) writeLine(line string) error {
	h.writeMu.Lock()
	defer h.writeMu.Unlock()
	_, err := h.conn.Write([]byte(line + "\n"))
	return err
}

// readLine reads one newline-terminated line. Oversized input is discarded
// through to the next newline so a single bad line cannot break framing.
func readLine(r *bufio.Reader) (string, error) {
	slice, err := r.ReadSlice('\n')
	if errors.Is(err, bufio.ErrBufferFull) {
		for errors.Is(err, bufio.ErrBufferFull) {
			_, err = r.ReadSlice('\n')
		}
		if err != nil {
			return "", err
		}
		return "", errLineTooLong
	}
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(slice), "\r\n"), nil
}
