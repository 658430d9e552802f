package realtime

import (
	"context"
	"time"

	"github.com/spec-kit/support-desk/internal/domain"
)

// TicketView is the resolved view state pushed to a connected client.
// CustomerName and AssigneeName are resolved relational fields that do
// not exist on the ticket row itself, so partial row merges must never
// clobber them.
type TicketView struct {
	ID           string                `json:"id"`
	Title        string                `json:"title"`
	Description  string                `json:"description"`
	Status       domain.TicketStatus   `json:"status"`
	Priority     domain.TicketPriority `json:"priority"`
	CustomerID   string                `json:"customer_id"`
	CustomerName string                `json:"customer_name"`
	AssignedTo   *string               `json:"assigned_to"`
	AssigneeName *string               `json:"assignee_name"`
	Category     *string               `json:"category"`
	CustomFields map[string]any        `json:"custom_fields"`
	Tags         []string              `json:"tags"`
	SLADeadline  *time.Time            `json:"sla_deadline"`
	SLAState     domain.SLAState       `json:"sla_state"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
	ClosedAt     *time.Time            `json:"closed_at"`
	Comments     []CommentView         `json:"comments"`
	Attachments  []AttachmentView      `json:"attachments"`
}

// CommentView is a comment with its author resolved.
type CommentView struct {
	ID         string    `json:"id"`
	AuthorID   string    `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Content    string    `json:"content"`
	IsInternal bool      `json:"is_internal"`
	CreatedAt  time.Time `json:"created_at"`
}

// AttachmentView is attachment metadata as rendered.
type AttachmentView struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	IsInternal  bool      `json:"is_internal"`
	CreatedAt   time.Time `json:"created_at"`
}

// ViewLoader resolves view state from the primary store. Implementations
// filter comments and attachments by the viewer's role.
type ViewLoader interface {
	LoadTicketView(ctx context.Context, ticketID string, viewer *domain.Profile) (*TicketView, error)
	LoadComments(ctx context.Context, ticketID string, viewer *domain.Profile) ([]CommentView, error)
	LoadAttachments(ctx context.Context, ticketID string, viewer *domain.Profile) ([]AttachmentView, error)
	ResolveDisplayName(ctx context.Context, profileID string) (string, error)
}

// Reconciler merges incoming change events into a TicketView without
// discarding locally-resolved fields. Each stream re-establishes its own
// consistent snapshot, so no ordering is assumed between ticket, comment
// and attachment events.
type Reconciler struct {
	loader ViewLoader
	now    func() time.Time
}

// NewReconciler builds a reconciler over the given loader.
func NewReconciler(loader ViewLoader) *Reconciler {
	return &Reconciler{loader: loader, now: time.Now}
}

// Apply folds one change event into the view, mutating it in place.
func (r *Reconciler) Apply(ctx context.Context, view *TicketView, viewer *domain.Profile, event ChangeEvent) error {
	switch event.Table {
	case TableTickets:
		if event.Type != ChangeUpdate {
			return nil
		}
		if err := r.applyTicketUpdate(ctx, view, event.New); err != nil {
			return err
		}
	case TableComments:
		if event.Type != ChangeInsert {
			return nil
		}
		// The payload carries the author's foreign key, not a display
		// name; re-fetch the whole list instead of append-merging.
		comments, err := r.loader.LoadComments(ctx, view.ID, viewer)
		if err != nil {
			return err
		}
		view.Comments = comments
	case TableAttachments:
		attachments, err := r.loader.LoadAttachments(ctx, view.ID, viewer)
		if err != nil {
			return err
		}
		view.Attachments = attachments
	}
	view.SLAState = domain.ClassifySLA(view.SLADeadline, r.now())
	return nil
}

// applyTicketUpdate shallow-merges only the fields present in the
// payload. CustomerName is always preserved; AssigneeName is preserved
// unless assigned_to itself changed, in which case it is re-resolved.
func (r *Reconciler) applyTicketUpdate(ctx context.Context, view *TicketView, fields map[string]any) error {
	for key, raw := range fields {
		switch key {
		case "title":
			if s, ok := raw.(string); ok {
				view.Title = s
			}
		case "description":
			if s, ok := raw.(string); ok {
				view.Description = s
			}
		case "status":
			if s, ok := raw.(string); ok {
				view.Status = domain.TicketStatus(s)
			}
		case "priority":
			if s, ok := raw.(string); ok {
				view.Priority = domain.TicketPriority(s)
			}
		case "category":
			view.Category = asStringPtr(raw)
		case "custom_fields":
			if m, ok := raw.(map[string]any); ok {
				view.CustomFields = m
			}
		case "tags":
			if tags, ok := asStringSlice(raw); ok {
				view.Tags = tags
			}
		case "sla_deadline":
			view.SLADeadline = asTimePtr(raw)
		case "closed_at":
			view.ClosedAt = asTimePtr(raw)
		case "updated_at":
			if t := asTimePtr(raw); t != nil {
				view.UpdatedAt = *t
			}
		case "assigned_to":
			view.AssignedTo = asStringPtr(raw)
			if view.AssignedTo == nil {
				view.AssigneeName = nil
				break
			}
			name, err := r.loader.ResolveDisplayName(ctx, *view.AssignedTo)
			if err != nil {
				// Foreign key applied, name resolution degraded; the
				// next full load repairs it.
				view.AssigneeName = nil
				break
			}
			view.AssigneeName = &name
		}
	}
	return nil
}

func asStringPtr(raw any) *string {
	if s, ok := raw.(string); ok {
		return &s
	}
	return nil
}

func asStringSlice(raw any) ([]string, bool) {
	switch v := raw.(type) {
	case []string:
		return v, true
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}

func asTimePtr(raw any) *time.Time {
	switch v := raw.(type) {
	case time.Time:
		return &v
	case string:
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return &t
		}
	}
	return nil
}
