package service

import (
	"context"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/events"
	"github.com/spec-kit/support-desk/internal/repository"
	"github.com/spec-kit/support-desk/internal/storage"
	apperrors "github.com/spec-kit/support-desk/pkg/util"
)

const maxAttachmentBytes = 25 << 20

// AttachmentService stores blobs and their metadata rows. The blob is
// written first so a metadata row never points at nothing; if the row
// insert fails the blob is removed again on a best-effort basis.
type AttachmentService struct {
	attachments repository.AttachmentRepository
	tickets     repository.TicketRepository
	store       storage.ObjectStore
	dispatcher  events.Dispatcher
	logger      *zap.Logger
}

// NewAttachmentService constructs the service.
func NewAttachmentService(attachments repository.AttachmentRepository, tickets repository.TicketRepository, store storage.ObjectStore, dispatcher events.Dispatcher, logger *zap.Logger) *AttachmentService {
	return &AttachmentService{
		attachments: attachments,
		tickets:     tickets,
		store:       store,
		dispatcher:  dispatcher,
		logger:      logger,
	}
}

// AttachmentUploadInput describes an upload.
type AttachmentUploadInput struct {
	Filename    string
	ContentType string
	SizeBytes   int64
	Body        io.Reader
	IsInternal  bool
}

// Upload stores a file against a ticket.
func (s *AttachmentService) Upload(ctx context.Context, actor *domain.Profile, ticketID string, input AttachmentUploadInput) (*domain.Attachment, error) {
	filename := path.Base(strings.TrimSpace(input.Filename))
	if filename == "" || filename == "." || filename == "/" {
		return nil, apperrors.NewValidationError("filename is required", nil)
	}
	if input.SizeBytes <= 0 || input.SizeBytes > maxAttachmentBytes {
		return nil, apperrors.NewValidationError("file size out of range", map[string]any{"max_bytes": maxAttachmentBytes})
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !actor.HasWorkerAccess() {
		if ticket.CustomerID != actor.ID {
			return nil, apperrors.NewForbidden("access denied")
		}
		if input.IsInternal {
			return nil, apperrors.NewForbidden("internal attachments require worker access")
		}
	}

	key := ticket.ID + "/" + uuid.NewString() + "/" + filename
	if err := s.store.Upload(ctx, key, input.Body, input.ContentType, input.SizeBytes); err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	attachment := &domain.Attachment{
		TicketID:    ticket.ID,
		UserID:      actor.ID,
		Filename:    filename,
		ContentType: input.ContentType,
		SizeBytes:   input.SizeBytes,
		IsInternal:  input.IsInternal,
		StorageKey:  key,
	}
	if err := s.attachments.Create(ctx, attachment); err != nil {
		if removeErr := s.store.Remove(ctx, key); removeErr != nil {
			s.logger.Warn("orphaned blob after failed metadata insert",
				zap.String("storage_key", key), zap.Error(removeErr))
		}
		return nil, err
	}

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:     events.EventAttachmentChanged,
		TicketID: ticket.ID,
		ActorID:  &actor.ID,
		Payload: events.AttachmentChangedPayload{
			AttachmentID: attachment.ID,
			Change:       events.AttachmentInserted,
		},
	})
	return attachment, nil
}

// Download streams an attachment's blob. The caller owns the reader.
func (s *AttachmentService) Download(ctx context.Context, viewer *domain.Profile, attachmentID string) (*domain.Attachment, io.ReadCloser, error) {
	attachment, err := s.authorize(ctx, viewer, attachmentID)
	if err != nil {
		return nil, nil, err
	}
	body, contentType, err := s.store.Download(ctx, attachment.StorageKey)
	if err != nil {
		return nil, nil, apperrors.NewInternalError(err)
	}
	if attachment.ContentType == "" {
		attachment.ContentType = contentType
	}
	return attachment, body, nil
}

// Delete removes an attachment. The metadata row goes first; a blob left
// behind by a failed removal is harmless and only logged.
func (s *AttachmentService) Delete(ctx context.Context, actor *domain.Profile, attachmentID string) error {
	attachment, err := s.authorize(ctx, actor, attachmentID)
	if err != nil {
		return err
	}
	if !actor.HasWorkerAccess() && attachment.UserID != actor.ID {
		return apperrors.NewForbidden("access denied")
	}

	if err := s.attachments.Delete(ctx, attachment.ID); err != nil {
		return err
	}
	if err := s.store.Remove(ctx, attachment.StorageKey); err != nil {
		s.logger.Warn("blob removal failed after metadata delete",
			zap.String("storage_key", attachment.StorageKey), zap.Error(err))
	}

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:     events.EventAttachmentChanged,
		TicketID: attachment.TicketID,
		ActorID:  &actor.ID,
		Payload: events.AttachmentChangedPayload{
			AttachmentID: attachment.ID,
			Change:       events.AttachmentDeleted,
		},
	})
	return nil
}

func (s *AttachmentService) authorize(ctx context.Context, viewer *domain.Profile, attachmentID string) (*domain.Attachment, error) {
	attachment, err := s.attachments.GetByID(ctx, attachmentID)
	if err != nil {
		return nil, err
	}
	if viewer.HasWorkerAccess() {
		return attachment, nil
	}
	ticket, err := s.tickets.GetByID(ctx, attachment.TicketID)
	if err != nil {
		return nil, err
	}
	if ticket.CustomerID != viewer.ID || attachment.IsInternal {
		return nil, apperrors.NewForbidden("access denied")
	}
	return attachment, nil
}
