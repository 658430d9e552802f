package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/events"
	"github.com/spec-kit/support-desk/internal/repository"
	apperrors "github.com/spec-kit/support-desk/pkg/util"
)

// TicketService coordinates ticket lifecycle workflows.
type TicketService struct {
	tickets    repository.TicketRepository
	audit      repository.TicketEventRepository
	settings   *SettingsService
	fields     *FieldsService
	dispatcher events.Dispatcher
	sanitizer  *bluemonday.Policy
	now        func() time.Time
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	AuditRepo  repository.TicketEventRepository
	Settings   *SettingsService
	Fields     *FieldsService
	Dispatcher events.Dispatcher
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		audit:      deps.AuditRepo,
		settings:   deps.Settings,
		fields:     deps.Fields,
		dispatcher: deps.Dispatcher,
		sanitizer:  bluemonday.UGCPolicy(),
		now:        time.Now,
	}
}

// TicketCreateInput describes a creation payload.
type TicketCreateInput struct {
	Title        string
	Description  string
	Priority     domain.TicketPriority
	Category     *string
	CustomFields map[string]any
	Tags         []string
}

// TicketUpdateInput describes an edit payload. Nil pointers leave the
// column untouched; CustomFields and Tags replace wholesale when non-nil.
type TicketUpdateInput struct {
	Title        *string
	Description  *string
	Category     *string
	CustomFields map[string]any
	Tags         []string
}

// TicketListInput describes queue filters.
type TicketListInput struct {
	Statuses    []domain.TicketStatus
	Priorities  []domain.TicketPriority
	AssignedTo  *string
	CustomerID  *string
	SearchTerm  *string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	SortBy      string
	Limit       int
	Offset      int
}

// CreateTicket opens a new ticket owned by the actor. The SLA deadline is
// stamped here from the configured windows and never recomputed, even
// when the priority is edited later.
func (s *TicketService) CreateTicket(ctx context.Context, actor *domain.Profile, input TicketCreateInput) (*domain.Ticket, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.NewValidationError("title is required", nil)
	}

	priority := input.Priority
	if priority == "" {
		priority = s.settings.DefaultPriority(ctx)
	}
	if !domain.ValidPriority(priority) {
		return nil, apperrors.NewValidationError("unknown priority", map[string]any{"priority": string(priority)})
	}

	customFields, err := s.fields.ValidateValues(ctx, input.CustomFields)
	if err != nil {
		return nil, err
	}

	durations, err := s.settings.SLADurations(ctx)
	if err != nil {
		return nil, err
	}

	createdAt := s.now().UTC()
	deadline := domain.ComputeSLADeadline(priority, createdAt, durations)

	ticket := &domain.Ticket{
		Title:        title,
		Description:  s.sanitizer.Sanitize(input.Description),
		Status:       domain.TicketStatusOpen,
		Priority:     priority,
		CustomerID:   actor.ID,
		Category:     input.Category,
		CustomFields: customFields,
		Tags:         input.Tags,
		SLADeadline:  &deadline,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		ActorID:  &actor.ID,
		Payload: events.TicketCreatedPayload{
			Title:    ticket.Title,
			Priority: ticket.Priority,
		},
	})
	return ticket, nil
}

// GetTicket fetches a ticket, enforcing that customers only see their
// own.
func (s *TicketService) GetTicket(ctx context.Context, viewer *domain.Profile, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !viewer.HasWorkerAccess() && ticket.CustomerID != viewer.ID {
		return nil, apperrors.NewForbidden("access denied")
	}
	return ticket, nil
}

// ListTickets returns the viewer's queue. Workers may narrow to a
// single customer's history; customers are pinned to their own tickets
// regardless of the filter.
func (s *TicketService) ListTickets(ctx context.Context, viewer *domain.Profile, input TicketListInput) ([]domain.Ticket, error) {
	filter := repository.TicketFilter{
		Statuses:    input.Statuses,
		Priorities:  input.Priorities,
		SearchTerm:  input.SearchTerm,
		CreatedFrom: input.CreatedFrom,
		CreatedTo:   input.CreatedTo,
		SortBy:      input.SortBy,
		Limit:       input.Limit,
		Offset:      input.Offset,
	}
	if viewer.HasWorkerAccess() {
		filter.AssignedTo = input.AssignedTo
		filter.CustomerID = input.CustomerID
	} else {
		filter.CustomerID = &viewer.ID
	}
	return s.tickets.ListWithFilter(ctx, filter)
}

// AssignToSelf claims an unassigned ticket for the acting worker. An open
// ticket is promoted to in_progress; any other status is kept as-is.
func (s *TicketService) AssignToSelf(ctx context.Context, actor *domain.Profile, ticketID string) (*domain.Ticket, error) {
	if !actor.HasWorkerAccess() {
		return nil, apperrors.NewForbidden("worker access required")
	}
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.AssignedTo != nil {
		return nil, apperrors.NewConflict("ticket already assigned", map[string]any{"assigned_to": *ticket.AssignedTo})
	}

	oldStatus := ticket.Status
	ticket.AssignedTo = &actor.ID
	if ticket.Status == domain.TicketStatusOpen {
		ticket.Status = domain.TicketStatusInProgress
	}
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}

	s.recordAudit(ctx, ticket.ID, actor.ID, domain.ChangeTypeAssignee,
		map[string]any{"assigned_to": nil},
		map[string]any{"assigned_to": actor.ID})
	publishEvent(ctx, s.dispatcher, events.Event{
		Type:     events.EventTicketAssigned,
		TicketID: ticket.ID,
		ActorID:  &actor.ID,
		Payload:  events.TicketAssignedPayload{AssignedTo: ticket.AssignedTo},
	})
	if ticket.Status != oldStatus {
		s.recordAudit(ctx, ticket.ID, actor.ID, domain.ChangeTypeStatus,
			map[string]any{"status": string(oldStatus)},
			map[string]any{"status": string(ticket.Status)})
		publishEvent(ctx, s.dispatcher, events.Event{
			Type:     events.EventTicketUpdated,
			TicketID: ticket.ID,
			ActorID:  &actor.ID,
			Payload: events.TicketUpdatedPayload{Fields: map[string]any{
				"status":     string(ticket.Status),
				"updated_at": ticket.UpdatedAt,
			}},
		})
	}
	return ticket, nil
}

// SetStatus overwrites a ticket's status. Any valid status may be set
// from any current status; setting closed twice keeps the original
// closed_at, and moving away from closed clears it.
func (s *TicketService) SetStatus(ctx context.Context, actor *domain.Profile, ticketID string, status domain.TicketStatus) (*domain.Ticket, error) {
	if !actor.HasWorkerAccess() {
		return nil, apperrors.NewForbidden("worker access required")
	}
	if !domain.ValidStatus(status) {
		return nil, apperrors.NewValidationError("unknown status", map[string]any{"status": string(status)})
	}
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	oldStatus := ticket.Status
	ticket.Status = status
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}

	if oldStatus != status {
		s.recordAudit(ctx, ticket.ID, actor.ID, domain.ChangeTypeStatus,
			map[string]any{"status": string(oldStatus)},
			map[string]any{"status": string(status)})
	}
	publishEvent(ctx, s.dispatcher, events.Event{
		Type:     events.EventTicketUpdated,
		TicketID: ticket.ID,
		ActorID:  &actor.ID,
		Payload: events.TicketUpdatedPayload{Fields: map[string]any{
			"status":     string(ticket.Status),
			"closed_at":  ticket.ClosedAt,
			"updated_at": ticket.UpdatedAt,
		}},
	})
	return ticket, nil
}

// UpdatePriority changes urgency without touching the SLA deadline.
func (s *TicketService) UpdatePriority(ctx context.Context, actor *domain.Profile, ticketID string, priority domain.TicketPriority) (*domain.Ticket, error) {
	if !actor.HasWorkerAccess() {
		return nil, apperrors.NewForbidden("worker access required")
	}
	if !domain.ValidPriority(priority) {
		return nil, apperrors.NewValidationError("unknown priority", map[string]any{"priority": string(priority)})
	}
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	oldPriority := ticket.Priority
	ticket.Priority = priority
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}

	if oldPriority != priority {
		s.recordAudit(ctx, ticket.ID, actor.ID, domain.ChangeTypePriority,
			map[string]any{"priority": string(oldPriority)},
			map[string]any{"priority": string(priority)})
	}
	publishEvent(ctx, s.dispatcher, events.Event{
		Type:     events.EventTicketUpdated,
		TicketID: ticket.ID,
		ActorID:  &actor.ID,
		Payload: events.TicketUpdatedPayload{Fields: map[string]any{
			"priority":   string(ticket.Priority),
			"updated_at": ticket.UpdatedAt,
		}},
	})
	return ticket, nil
}

// UpdateTicket edits content fields. Customers may edit their own
// tickets; workers may edit any. Concurrent edits are last-write-wins at
// the column level.
func (s *TicketService) UpdateTicket(ctx context.Context, actor *domain.Profile, ticketID string, input TicketUpdateInput) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !actor.HasWorkerAccess() && ticket.CustomerID != actor.ID {
		return nil, apperrors.NewForbidden("access denied")
	}

	changed := map[string]any{}
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, apperrors.NewValidationError("title is required", nil)
		}
		ticket.Title = title
		changed["title"] = title
	}
	if input.Description != nil {
		ticket.Description = s.sanitizer.Sanitize(*input.Description)
		changed["description"] = ticket.Description
	}
	if input.Category != nil {
		ticket.Category = input.Category
		changed["category"] = *input.Category
	}
	if input.CustomFields != nil {
		customFields, err := s.fields.ValidateValues(ctx, input.CustomFields)
		if err != nil {
			return nil, err
		}
		ticket.CustomFields = customFields
		changed["custom_fields"] = customFields
	}
	if input.Tags != nil {
		ticket.Tags = input.Tags
		changed["tags"] = input.Tags
	}
	if len(changed) == 0 {
		return ticket, nil
	}

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}
	changed["updated_at"] = ticket.UpdatedAt

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:     events.EventTicketUpdated,
		TicketID: ticket.ID,
		ActorID:  &actor.ID,
		Payload:  events.TicketUpdatedPayload{Fields: changed},
	})
	return ticket, nil
}

// History returns the audit trail for a ticket.
func (s *TicketService) History(ctx context.Context, viewer *domain.Profile, ticketID string, limit, offset int) ([]domain.TicketEvent, error) {
	if _, err := s.GetTicket(ctx, viewer, ticketID); err != nil {
		return nil, err
	}
	return s.audit.ListByTicket(ctx, ticketID, limit, offset)
}

// recordAudit persists an audit entry. A failed write does not roll the
// mutation back.
func (s *TicketService) recordAudit(ctx context.Context, ticketID, actorID string, changeType domain.TicketChangeType, oldValue, newValue map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Create(ctx, &domain.TicketEvent{
		TicketID:   ticketID,
		ActorID:    &actorID,
		ChangeType: changeType,
		OldValue:   oldValue,
		NewValue:   newValue,
	})
}

// publishEvent fills in envelope fields and fires the event. Dispatch
// failures never fail the originating mutation.
func publishEvent(ctx context.Context, dispatcher events.Dispatcher, event events.Event) {
	if dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	_ = dispatcher.Publish(ctx, event)
}
