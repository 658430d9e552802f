package events

import (
	"time"

	"github.com/spec-kit/support-desk/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated     EventType = "ticket_created"
	EventTicketUpdated     EventType = "ticket_updated"
	EventTicketAssigned    EventType = "ticket_assigned"
	EventCommentAdded      EventType = "comment_added"
	EventAttachmentChanged EventType = "attachment_changed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	ActorID   *string     `json:"actor_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Title    string                `json:"title"`
	Priority domain.TicketPriority `json:"priority"`
}

// TicketUpdatedPayload carries only the row columns the mutation actually
// changed, keyed by column name. Resolved relational values (display
// names) are never part of it.
type TicketUpdatedPayload struct {
	Fields map[string]any `json:"fields"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	AssignedTo *string `json:"assigned_to,omitempty"`
}

// CommentAddedPayload payload.
type CommentAddedPayload struct {
	CommentID  string `json:"comment_id"`
	IsInternal bool   `json:"is_internal"`
}

// AttachmentChange mirrors the row-change kind for attachment events.
type AttachmentChange string

const (
	AttachmentInserted AttachmentChange = "INSERT"
	AttachmentUpdated  AttachmentChange = "UPDATE"
	AttachmentDeleted  AttachmentChange = "DELETE"
)

// AttachmentChangedPayload payload.
type AttachmentChangedPayload struct {
	AttachmentID string           `json:"attachment_id"`
	Change       AttachmentChange `json:"change"`
}
