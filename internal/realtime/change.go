package realtime

// ChangeType mirrors row-level change kinds.
type ChangeType string

const (
	ChangeInsert ChangeType = "INSERT"
	ChangeUpdate ChangeType = "UPDATE"
	ChangeDelete ChangeType = "DELETE"
)

// Table names change events are scoped to.
const (
	TableTickets     = "tickets"
	TableComments    = "comments"
	TableAttachments = "attachments"
)

// ChangeEvent is what travels over the per-ticket Redis channel. New and
// Old carry row-level columns only (foreign keys, not resolved display
// names), and New carries just the columns the mutation touched.
type ChangeEvent struct {
	Table    string         `json:"table"`
	Type     ChangeType     `json:"type"`
	TicketID string         `json:"ticket_id"`
	New      map[string]any `json:"new,omitempty"`
	Old      map[string]any `json:"old,omitempty"`
}

// ChannelForTicket names the Redis pub/sub channel carrying all change
// events for one ticket.
func ChannelForTicket(ticketID string) string {
	return "changes:ticket:" + ticketID
}
