package domain

import "time"

// Comment is a message on a ticket thread. Comments are immutable after
// creation; internal comments are hidden from customers.
type Comment struct {
	ID         string
	TicketID   string
	UserID     string
	Content    string
	IsInternal bool
	CreatedAt  time.Time
}
