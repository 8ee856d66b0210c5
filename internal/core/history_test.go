package core

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHistoryEvictsOldestFirst(t *testing.T) {
	h := NewHistory(3)
	for i := 1; i <= 5; i++ {
		h.Append(Message{Text: strconv.Itoa(i)})
	}

	snap := h.Snapshot()
	assert.Equal(t, 3, h.Len())
	assert.Equal(t, "3", snap[0].Text)
	assert.Equal(t, "5", snap[2].Text)
}

func TestHistorySnapshotIsACopy(t *testing.T) {
	h := NewHistory(3)
	h.Append(Message{Text: "first"})

	snap := h.Snapshot()
	h.Append(Message{Text: "second"})
	snap[0].Text = "tampered"

	assert.Len(t, snap, 1)
	assert.Equal(t, "first", h.Snapshot()[0].Text)
	assert.Len(t, h.Snapshot(), 2)
}

func TestHistoryZeroSizeKeepsNothing(t *testing.T) {
	h := NewHistory(0)
	h.Append(Message{Text: "hi"})
	assert.Zero(t, h.Len())
	assert.Empty(t, h.Snapshot())
}
