package domain

import "time"

// Message is a note left on the message board.
type Message struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}
