package domain

import "time"

// Tag labels tickets. Tickets reference tags by id array, so deleting a
// tag does not strip it from tickets; stale ids resolve to nothing.
type Tag struct {
	ID          string
	Name        string
	Color       string
	Description *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
