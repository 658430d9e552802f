package domain

import "time"

// ArchivedTicket is the parallel representation a ticket moves to after
// the age threshold. Rows are created and restored by database functions,
// never edited by the application.
type ArchivedTicket struct {
	Ticket
	ArchivedAt time.Time
	ArchivedBy *string
}
