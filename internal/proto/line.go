// Package proto maps the line-oriented wire protocol onto core commands and
// events. Lines are UTF-8, newline-terminated, at most MaxLineBytes long.
package proto

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/vovakirdan/linechat/internal/core"
)

// MaxLineBytes bounds one protocol line including the terminating newline.
const MaxLineBytes = 1024

const (
	prefixJoin = "JOIN:"
	prefixMsg  = "MSG:"
	cmdQuit    = "QUIT"
	cmdList    = "LIST"
	cmdWhisper = "/whisper"
	cmdNick    = "/nick"

	outWelcome = "WELCOME:"
	outError   = "ERROR:"
	outMsg     = "MSG:"
	outWhisper = "WHISPER:"
	outNotice  = "NOTICE:"
	outUsers   = "USERS:"
)

// ParseLine maps one inbound line (already stripped of its newline) to a
// command. A nil command with a non-nil error means the line was malformed;
// the caller answers with an ERROR line locally, without involving the hub.
func ParseLine(line string) (*core.Command, *core.CoreError) {
	if !utf8.ValidString(line) {
		return nil, core.NewError(core.ErrCodeBadRequest, "invalid utf-8")
	}

	switch {
	case strings.HasPrefix(line, prefixJoin):
		name := line[len(prefixJoin):]
		if !core.ValidName(name) {
			return nil, core.NewError(core.ErrCodeInvalidName, "username must be 1-32 chars of letters, digits, _ or -")
		}
		return &core.Command{Kind: core.CommandJoin, Name: name}, nil

	case strings.HasPrefix(line, prefixMsg):
		text := line[len(prefixMsg):]
		if text == "" {
			return nil, core.NewError(core.ErrCodeBadRequest, "empty message")
		}
		return &core.Command{Kind: core.CommandBroadcast, Text: text}, nil

	case line == cmdQuit:
		return &core.Command{Kind: core.CommandLeave}, nil

	case line == cmdList:
		return &core.Command{Kind: core.CommandList}, nil

	case strings.HasPrefix(line, cmdWhisper+" "):
		rest := line[len(cmdWhisper)+1:]
		target, text, ok := strings.Cut(rest, " ")
		if !ok || target == "" || text == "" {
			return nil, core.NewError(core.ErrCodeBadRequest, "usage: /whisper <user> <text>")
		}
		return &core.Command{Kind: core.CommandWhisper, Name: target, Text: text}, nil

	case strings.HasPrefix(line, cmdNick+" "):
		name := line[len(cmdNick)+1:]
		if !core.ValidName(name) {
			return nil, core.NewError(core.ErrCodeInvalidName, "username must be 1-32 chars of letters, digits, _ or -")
		}
		return &core.Command{Kind: core.CommandNick, Name: name}, nil

	default:
		return nil, core.NewError(core.ErrCodeBadRequest, "unrecognized input")
	}
}

// FormatEvent renders an outbound event as wire lines. A welcome expands to
// the greeting followed by the replayed history.
func FormatEvent(ev *core.Event) []string {
	switch ev.Kind {
	case core.EventWelcome:
		lines := make([]string, 0, len(ev.History)+1)
		lines = append(lines, outWelcome+ev.Name)
		for _, m := range ev.History {
			lines = append(lines, formatMessage(m))
		}
		return lines
	case core.EventMessage:
		return []string{formatMessage(ev.Message)}
	case core.EventWhisper:
		return []string{outWhisper + ev.Name + ":" + ev.Text}
	case core.EventNotice:
		return []string{outNotice + ev.Text}
	case core.EventUsers:
		return []string{outUsers + strings.Join(ev.Users, ",")}
	case core.EventError:
		return []string{FormatError(ev.Error)}
	default:
		return nil
	}
}

// FormatError renders the ERROR line for a domain or protocol error.
func FormatError(err *core.CoreError) string {
	return outError + err.Code
}

func formatMessage(m core.Message) string {
	return outMsg + strconv.FormatInt(m.CreatedAt.Unix(), 10) + ":" + m.From + ":" + m.Text
}
