package http

import (
	"context"
	"errors"
	"io"
	stdhttp "net/http"
	"strings"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/linechat/internal/core"
	"github.com/vovakirdan/linechat/internal/proto"
)

// WSHandler upgrades HTTP connections and bridges them to core.Client. The
// bridge carries the same line protocol as the TCP listener, one line per
// text frame, so any chat client logic works over either transport.
type WSHandler struct {
	hub *core.Hub
	log *zerolog.Logger
}

// NewWSHandler builds a new WebSocket handler.
func NewWSHandler(hub *core.Hub, logger *zerolog.Logger) stdhttp.Handler {
	return &WSHandler{hub: hub, log: logger}
}

func (h *WSHandler) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "internal error")

	client := core.NewClient(uuid.NewString())
	h.hub.Attach(client)
	h.log.Info().Str("conn_id", client.ConnID).Str("remote", r.RemoteAddr).Msg("ws client connected")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	errCh := make(chan error, 2)
	go func() {
		// The hub retires the session when the command stream closes.
		defer close(client.Commands)
		errCh <- h.readLoop(ctx, conn, client)
	}()
	go func() {
		errCh <- h.writeLoop(ctx, conn, client)
	}()

	err = <-errCh
	cancel()
	<-errCh

	status := websocket.StatusNormalClosure
	reason := "closing"
	if err != nil && !errors.Is(err, context.Canceled) {
		if errors.Is(err, io.EOF) {
			err = nil
		}
		if s := websocket.CloseStatus(err); s != 0 {
			status = s
		}
		if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
			err = nil
		}
		if err != nil {
			if status == websocket.StatusNormalClosure {
				status = websocket.StatusInternalError
			}
			reason = err.Error()
			h.log.Warn().Err(err).Str("conn_id", client.ConnID).Msg("ws connection closed with error")
		}
	}

	conn.Close(status, reason)
	h.log.Info().Str("conn_id", client.ConnID).Msg("ws client disconnected")
}

func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, client *core.Client) error {
	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			return err
		}
		if typ != websocket.MessageText {
			continue
		}
		if len(data) > proto.MaxLineBytes {
			if werr := writeLine(ctx, conn, proto.FormatError(core.NewError(core.ErrCodeBadRequest, "line too long"))); werr != nil {
				return werr
			}
			continue
		}

		line := strings.TrimRight(string(data), "\r\n")
		cmd, perr := proto.ParseLine(line)
		if perr != nil {
			if werr := writeLine(ctx, conn, proto.FormatError(perr)); werr != nil {
				return werr
			}
			continue
		}

		select {
		case client.Commands <- cmd:
		case <-ctx.Done():
			return ctx.Err()
		}

		if cmd.Kind == core.CommandLeave {
			return nil
		}
	}
}

func (h *WSHandler) writeLoop(ctx context.Context, conn *websocket.Conn, client *core.Client) error {
	for {
		select {
		case ev, ok := <-client.Events:
			if !ok {
				return nil
			}
			for _, line := range proto.FormatEvent(ev) {
				if err := writeLine(ctx, conn, line); err != nil {
					h.log.Error().Err(err).Str("conn_id", client.ConnID).Msg("write ws event")
					return err
				}
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func writeLine(ctx context.Context, conn *websocket.Conn, line string) error {
	return conn.Write(ctx, websocket.MessageText, []byte(line))
}
