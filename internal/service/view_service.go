package service

import (
	"context"
	"time"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/realtime"
	"github.com/spec-kit/support-desk/internal/repository"
	apperrors "github.com/spec-kit/support-desk/pkg/util"
)

// ViewService assembles resolved ticket views for detail responses and
// for the realtime push path. It is the only place display names get
// joined onto row data.
type ViewService struct {
	tickets     repository.TicketRepository
	comments    repository.CommentRepository
	attachments repository.AttachmentRepository
	profiles    repository.ProfileRepository
	now         func() time.Time
}

// NewViewService constructs the service.
func NewViewService(tickets repository.TicketRepository, comments repository.CommentRepository, attachments repository.AttachmentRepository, profiles repository.ProfileRepository) *ViewService {
	return &ViewService{
		tickets:     tickets,
		comments:    comments,
		attachments: attachments,
		profiles:    profiles,
		now:         time.Now,
	}
}

// LoadTicketView builds the full resolved view for one ticket, scoped to
// the viewer's role.
func (s *ViewService) LoadTicketView(ctx context.Context, ticketID string, viewer *domain.Profile) (*realtime.TicketView, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !viewer.HasWorkerAccess() && ticket.CustomerID != viewer.ID {
		return nil, apperrors.NewForbidden("access denied")
	}

	view := &realtime.TicketView{
		ID:           ticket.ID,
		Title:        ticket.Title,
		Description:  ticket.Description,
		Status:       ticket.Status,
		Priority:     ticket.Priority,
		CustomerID:   ticket.CustomerID,
		AssignedTo:   ticket.AssignedTo,
		Category:     ticket.Category,
		CustomFields: ticket.CustomFields,
		Tags:         ticket.Tags,
		SLADeadline:  ticket.SLADeadline,
		SLAState:     domain.ClassifySLA(ticket.SLADeadline, s.now()),
		CreatedAt:    ticket.CreatedAt,
		UpdatedAt:    ticket.UpdatedAt,
		ClosedAt:     ticket.ClosedAt,
	}

	names := newNameCache(s.profiles)
	view.CustomerName = names.resolve(ctx, ticket.CustomerID)
	if ticket.AssignedTo != nil {
		name := names.resolve(ctx, *ticket.AssignedTo)
		view.AssigneeName = &name
	}

	if view.Comments, err = s.loadComments(ctx, ticketID, viewer, names); err != nil {
		return nil, err
	}
	if view.Attachments, err = s.LoadAttachments(ctx, ticketID, viewer); err != nil {
		return nil, err
	}
	return view, nil
}

// LoadComments returns the comment thread with authors resolved,
// dropping internal comments for customers.
func (s *ViewService) LoadComments(ctx context.Context, ticketID string, viewer *domain.Profile) ([]realtime.CommentView, error) {
	return s.loadComments(ctx, ticketID, viewer, newNameCache(s.profiles))
}

func (s *ViewService) loadComments(ctx context.Context, ticketID string, viewer *domain.Profile, names *nameCache) ([]realtime.CommentView, error) {
	comments, err := s.comments.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	views := make([]realtime.CommentView, 0, len(comments))
	for _, comment := range comments {
		if comment.IsInternal && !viewer.HasWorkerAccess() {
			continue
		}
		views = append(views, realtime.CommentView{
			ID:         comment.ID,
			AuthorID:   comment.UserID,
			AuthorName: names.resolve(ctx, comment.UserID),
			Content:    comment.Content,
			IsInternal: comment.IsInternal,
			CreatedAt:  comment.CreatedAt,
		})
	}
	return views, nil
}

// LoadAttachments returns attachment metadata, dropping internal
// attachments for customers.
func (s *ViewService) LoadAttachments(ctx context.Context, ticketID string, viewer *domain.Profile) ([]realtime.AttachmentView, error) {
	attachments, err := s.attachments.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	views := make([]realtime.AttachmentView, 0, len(attachments))
	for _, attachment := range attachments {
		if attachment.IsInternal && !viewer.HasWorkerAccess() {
			continue
		}
		views = append(views, realtime.AttachmentView{
			ID:          attachment.ID,
			Filename:    attachment.Filename,
			ContentType: attachment.ContentType,
			SizeBytes:   attachment.SizeBytes,
			IsInternal:  attachment.IsInternal,
			CreatedAt:   attachment.CreatedAt,
		})
	}
	return views, nil
}

// ResolveDisplayName returns the profile's full name, falling back to
// the email address.
func (s *ViewService) ResolveDisplayName(ctx context.Context, profileID string) (string, error) {
	profile, err := s.profiles.GetByID(ctx, profileID)
	if err != nil {
		return "", err
	}
	if profile.FullName != "" {
		return profile.FullName, nil
	}
	return profile.Email, nil
}

// nameCache memoizes profile lookups within one view assembly. Unknown
// ids resolve to an empty name rather than failing the whole view.
type nameCache struct {
	profiles repository.ProfileRepository
	seen     map[string]string
}

func newNameCache(profiles repository.ProfileRepository) *nameCache {
	return &nameCache{profiles: profiles, seen: map[string]string{}}
}

func (c *nameCache) resolve(ctx context.Context, profileID string) string {
	if name, ok := c.seen[profileID]; ok {
		return name
	}
	name := ""
	if profile, err := c.profiles.GetByID(ctx, profileID); err == nil {
		name = profile.FullName
		if name == "" {
			name = profile.Email
		}
	}
	c.seen[profileID] = name
	return name
}
