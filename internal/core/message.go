package core

import "time"

// Message is the domain model for one broadcast chat message.
type Message struct {
	From      string
	Text      string
	CreatedAt time.Time
}
