package proto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/linechat/internal/core"
)

func TestParseLineCommands(t *testing.T) {
	tests := []struct {
		name string
		line string
		want core.Command
	}{
		{"join", "JOIN:alice", core.Command{Kind: core.CommandJoin, Name: "alice"}},
		{"broadcast", "MSG:hello there", core.Command{Kind: core.CommandBroadcast, Text: "hello there"}},
		{"broadcast with colons", "MSG:a:b:c", core.Command{Kind: core.CommandBroadcast, Text: "a:b:c"}},
		{"quit", "QUIT", core.Command{Kind: core.CommandLeave}},
		{"list", "LIST", core.Command{Kind: core.CommandList}},
		{"whisper", "/whisper bob see you at 5", core.Command{Kind: core.CommandWhisper, Name: "bob", Text: "see you at 5"}},
		{"nick", "/nick alicia", core.Command{Kind: core.CommandNick, Name: "alicia"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, perr := ParseLine(tt.line)
			require.Nil(t, perr)
			require.NotNil(t, cmd)
			assert.Equal(t, tt.want, *cmd)
		})
	}
}

func TestParseLineErrors(t *testing.T) {
	tests := []struct {
		name string
		line string
		code string
	}{
		{"garbage", "HELLO", core.ErrCodeBadRequest},
		{"empty", "", core.ErrCodeBadRequest},
		{"empty message", "MSG:", core.ErrCodeBadRequest},
		{"bad join name", "JOIN:white space", core.ErrCodeInvalidName},
		{"empty join name", "JOIN:", core.ErrCodeInvalidName},
		{"long join name", "JOIN:abcdefghijklmnopqrstuvwxyz0123456", core.ErrCodeInvalidName},
		{"bad nick", "/nick white space", core.ErrCodeInvalidName},
		{"whisper without text", "/whisper bob", core.ErrCodeBadRequest},
		{"whisper without target", "/whisper ", core.ErrCodeBadRequest},
		{"unknown slash command", "/dance", core.ErrCodeBadRequest},
		{"invalid utf8", "MSG:\xff\xfe", core.ErrCodeBadRequest},
		{"lowercase quit", "quit", core.ErrCodeBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, perr := ParseLine(tt.line)
			assert.Nil(t, cmd)
			require.NotNil(t, perr)
			assert.Equal(t, tt.code, perr.Code)
		})
	}
}

func TestFormatEvent(t *testing.T) {
	ts := time.Unix(1700000000, 0)

	t.Run("welcome with history", func(t *testing.T) {
		lines := FormatEvent(&core.Event{
			Kind: core.EventWelcome,
			Name: "alice",
			History: []core.Message{
				{From: "bob", Text: "hi", CreatedAt: ts},
				{From: "carol", Text: "hey", CreatedAt: ts},
			},
		})
		assert.Equal(t, []string{
			"WELCOME:alice",
			"MSG:1700000000:bob:hi",
			"MSG:1700000000:carol:hey",
		}, lines)
	})

	t.Run("message", func(t *testing.T) {
		lines := FormatEvent(&core.Event{
			Kind:    core.EventMessage,
			Message: core.Message{From: "alice", Text: "a:b", CreatedAt: ts},
		})
		assert.Equal(t, []string{"MSG:1700000000:alice:a:b"}, lines)
	})

	t.Run("whisper", func(t *testing.T) {
		lines := FormatEvent(&core.Event{Kind: core.EventWhisper, Name: "bob", Text: "psst"})
		assert.Equal(t, []string{"WHISPER:bob:psst"}, lines)
	})

	t.Run("notice", func(t *testing.T) {
		lines := FormatEvent(&core.Event{Kind: core.EventNotice, Text: "bob joined"})
		assert.Equal(t, []string{"NOTICE:bob joined"}, lines)
	})

	t.Run("users", func(t *testing.T) {
		lines := FormatEvent(&core.Event{Kind: core.EventUsers, Users: []string{"alice", "bob"}})
		assert.Equal(t, []string{"USERS:alice,bob"}, lines)
	})

	t.Run("error", func(t *testing.T) {
		lines := FormatEvent(&core.Event{Kind: core.EventError, Error: core.NewError(core.ErrCodeNameTaken, "taken")})
		assert.Equal(t, []string{"ERROR:name_taken"}, lines)
	})
}
