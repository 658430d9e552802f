package domain

import "time"

// ResponseTemplate is a per-user saved reply, independent of tickets.
type ResponseTemplate struct {
	ID        string
	UserID    string
	Title     string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
