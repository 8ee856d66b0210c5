package core

// History is a bounded FIFO of the most recent broadcast messages, replayed
// to newly joined clients. Owned by the hub goroutine.
type History struct {
	max     int
	entries []Message
}

// NewHistory builds a history buffer holding at most max entries.
func NewHistory(max int) *History {
	return &History{max: max}
}

// Append inserts a message, evicting the oldest entry when full.
func (h *History) Append(m Message) {
	if h.max <= 0 {
		return
	}
	if len(h.entries) >= h.max {
		copy(h.entries, h.entries[1:])
		h.entries = h.entries[:len(h.entries)-1]
	}
	h.entries = append(h.entries, m)
}

// Snapshot returns a point-in-time copy, oldest first. New joiners replay
// from the copy so later writes never leak into their backlog.
func (h *History) Snapshot() []Message {
	return append([]Message(nil), h.entries...)
}

// Len reports the number of buffered entries.
func (h *History) Len() int {
	return len(h.entries)
}
