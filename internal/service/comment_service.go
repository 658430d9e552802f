package service

import (
	"context"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/events"
	"github.com/spec-kit/support-desk/internal/repository"
	apperrors "github.com/spec-kit/support-desk/pkg/util"
)

// CommentService appends to ticket threads. Comments are immutable once
// created.
type CommentService struct {
	comments   repository.CommentRepository
	tickets    repository.TicketRepository
	dispatcher events.Dispatcher
	sanitizer  *bluemonday.Policy
}

// NewCommentService constructs the service.
func NewCommentService(comments repository.CommentRepository, tickets repository.TicketRepository, dispatcher events.Dispatcher) *CommentService {
	return &CommentService{
		comments:   comments,
		tickets:    tickets,
		dispatcher: dispatcher,
		sanitizer:  bluemonday.UGCPolicy(),
	}
}

// AddComment appends a comment. Customers may only comment on their own
// tickets and cannot mark comments internal.
func (s *CommentService) AddComment(ctx context.Context, actor *domain.Profile, ticketID, content string, isInternal bool) (*domain.Comment, error) {
	content = strings.TrimSpace(s.sanitizer.Sanitize(content))
	if content == "" {
		return nil, apperrors.NewValidationError("content is required", nil)
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !actor.HasWorkerAccess() {
		if ticket.CustomerID != actor.ID {
			return nil, apperrors.NewForbidden("access denied")
		}
		if isInternal {
			return nil, apperrors.NewForbidden("internal comments require worker access")
		}
	}

	comment := &domain.Comment{
		TicketID:   ticket.ID,
		UserID:     actor.ID,
		Content:    content,
		IsInternal: isInternal,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:     events.EventCommentAdded,
		TicketID: ticket.ID,
		ActorID:  &actor.ID,
		Payload: events.CommentAddedPayload{
			CommentID:  comment.ID,
			IsInternal: comment.IsInternal,
		},
	})
	return comment, nil
}

// ListForTicket returns the thread visible to the viewer.
func (s *CommentService) ListForTicket(ctx context.Context, viewer *domain.Profile, ticketID string) ([]domain.Comment, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !viewer.HasWorkerAccess() && ticket.CustomerID != viewer.ID {
		return nil, apperrors.NewForbidden("access denied")
	}

	comments, err := s.comments.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if viewer.HasWorkerAccess() {
		return comments, nil
	}
	visible := comments[:0]
	for _, comment := range comments {
		if !comment.IsInternal {
			visible = append(visible, comment)
		}
	}
	return visible, nil
}
