package realtime

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/events"
)

// Bridge translates domain events into ChangeEvents on per-ticket Redis
// channels. Publish failures degrade to stale client views and are only
// logged; the originating mutation has already committed.
type Bridge struct {
	client *redis.Client
	logger *zap.Logger
}

// NewBridge creates the bridge.
func NewBridge(client *redis.Client, logger *zap.Logger) *Bridge {
	return &Bridge{client: client, logger: logger}
}

// Register subscribes the bridge to every event type that maps to a row
// change.
func (b *Bridge) Register(dispatcher events.Dispatcher) {
	dispatcher.Subscribe(events.EventTicketUpdated, b.handleTicketUpdated)
	dispatcher.Subscribe(events.EventTicketAssigned, b.handleTicketAssigned)
	dispatcher.Subscribe(events.EventCommentAdded, b.handleCommentAdded)
	dispatcher.Subscribe(events.EventAttachmentChanged, b.handleAttachmentChanged)
}

func (b *Bridge) handleTicketUpdated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketUpdatedPayload)
	if !ok {
		return nil
	}
	return b.publish(ctx, ChangeEvent{
		Table:    TableTickets,
		Type:     ChangeUpdate,
		TicketID: event.TicketID,
		New:      payload.Fields,
	})
}

func (b *Bridge) handleTicketAssigned(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketAssignedPayload)
	if !ok {
		return nil
	}
	var assigned any
	if payload.AssignedTo != nil {
		assigned = *payload.AssignedTo
	}
	return b.publish(ctx, ChangeEvent{
		Table:    TableTickets,
		Type:     ChangeUpdate,
		TicketID: event.TicketID,
		New:      map[string]any{"assigned_to": assigned},
	})
}

func (b *Bridge) handleCommentAdded(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.CommentAddedPayload)
	if !ok {
		return nil
	}
	return b.publish(ctx, ChangeEvent{
		Table:    TableComments,
		Type:     ChangeInsert,
		TicketID: event.TicketID,
		New:      map[string]any{"id": payload.CommentID, "is_internal": payload.IsInternal},
	})
}

func (b *Bridge) handleAttachmentChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.AttachmentChangedPayload)
	if !ok {
		return nil
	}
	return b.publish(ctx, ChangeEvent{
		Table:    TableAttachments,
		Type:     ChangeType(payload.Change),
		TicketID: event.TicketID,
		New:      map[string]any{"id": payload.AttachmentID},
	})
}

func (b *Bridge) publish(ctx context.Context, change ChangeEvent) error {
	if b.client == nil {
		return nil
	}
	data, err := json.Marshal(change)
	if err != nil {
		return err
	}
	if err := b.client.Publish(ctx, ChannelForTicket(change.TicketID), data).Err(); err != nil {
		b.logger.Warn("publish change event",
			zap.String("ticket_id", change.TicketID),
			zap.String("table", change.Table),
			zap.Error(err))
	}
	return nil
}
