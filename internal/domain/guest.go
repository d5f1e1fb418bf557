package domain

import "time"

// Guest is a registered uploader. Email is unique.
type Guest struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}
