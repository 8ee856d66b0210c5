package core

import (
	"testing"
	"time"
)

func mustEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev == nil {
				continue
			}
			if ev.Kind == kind {
				return ev
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	t.Fatalf("expected event kind %v not received", kind)
	return nil
}

func mustErrorCode(t *testing.T, ch <-chan *Event, code string) *Event {
	t.Helper()

	ev := mustEvent(t, ch, EventError)
	if ev.Error == nil || ev.Error.Code != code {
		t.Fatalf("expected error code %q, got %+v", code, ev)
	}
	return ev
}

// mustClosed waits for the client's outbound queue to be closed by the hub.
func mustClosed(t *testing.T, ch <-chan *Event) {
	t.Helper()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("outbound queue was not closed")
		}
	}
}

func mustJoin(t *testing.T, hub *Hub, connID, name string) *Client {
	t.Helper()

	c := NewClient(connID)
	hub.Attach(c)
	c.Commands <- &Command{Kind: CommandJoin, Name: name}

	ev := mustEvent(t, c.Events, EventWelcome)
	if ev.Name != name {
		t.Fatalf("unexpected welcome: %+v", ev)
	}
	return c
}
