package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/events"
	apperrors "github.com/spec-kit/support-desk/pkg/util"
)

type attachmentServiceFixture struct {
	service     *AttachmentService
	attachments *fakeAttachmentRepo
	tickets     *fakeTicketRepo
	store       *fakeObjectStore
	dispatcher  *fakeDispatcher
	ticketID    string
}

func newAttachmentFixture(t *testing.T) *attachmentServiceFixture {
	f := &attachmentServiceFixture{
		attachments: &fakeAttachmentRepo{},
		tickets:     newFakeTicketRepo(),
		store:       newFakeObjectStore(),
		dispatcher:  &fakeDispatcher{},
	}
	f.service = NewAttachmentService(f.attachments, f.tickets, f.store, f.dispatcher, zap.NewNop())

	ticketService := NewTicketService(TicketDependencies{
		TicketRepo: f.tickets,
		Settings:   NewSettingsService(&fakeSettingsRepo{}),
		Fields:     NewFieldsService(&fakeFieldDefRepo{}),
	})
	ticket, err := ticketService.CreateTicket(context.Background(), customerProfile("customer-1"), TicketCreateInput{Title: "with files"})
	require.NoError(t, err)
	f.ticketID = ticket.ID
	return f
}

func uploadInput(name, content string) AttachmentUploadInput {
	return AttachmentUploadInput{
		Filename:    name,
		ContentType: "text/plain",
		SizeBytes:   int64(len(content)),
		Body:        strings.NewReader(content),
	}
}

func TestUploadStoresBlobThenMetadata(t *testing.T) {
	f := newAttachmentFixture(t)

	attachment, err := f.service.Upload(context.Background(), customerProfile("customer-1"), f.ticketID, uploadInput("trace.log", "stack trace"))
	require.NoError(t, err)

	assert.Equal(t, "trace.log", attachment.Filename)
	assert.Contains(t, f.store.blobs, attachment.StorageKey)

	changed := f.dispatcher.byType(events.EventAttachmentChanged)
	require.Len(t, changed, 1)
	payload, ok := changed[0].Payload.(events.AttachmentChangedPayload)
	require.True(t, ok)
	assert.Equal(t, events.AttachmentInserted, payload.Change)
}

func TestUploadRemovesBlobWhenMetadataFails(t *testing.T) {
	f := newAttachmentFixture(t)
	f.attachments.createErr = errors.New("insert failed")

	_, err := f.service.Upload(context.Background(), customerProfile("customer-1"), f.ticketID, uploadInput("trace.log", "stack trace"))
	require.Error(t, err)

	assert.Empty(t, f.store.blobs)
	require.Len(t, f.store.removed, 1)
	assert.Empty(t, f.dispatcher.published)
}

func TestUploadCustomerCannotMarkInternal(t *testing.T) {
	f := newAttachmentFixture(t)

	input := uploadInput("note.txt", "internal")
	input.IsInternal = true
	_, err := f.service.Upload(context.Background(), customerProfile("customer-1"), f.ticketID, input)
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperrors.ToDomainError(err).Code)
	assert.Empty(t, f.store.blobs)
}

func TestUploadValidatesFilenameAndSize(t *testing.T) {
	f := newAttachmentFixture(t)
	actor := customerProfile("customer-1")

	_, err := f.service.Upload(context.Background(), actor, f.ticketID, uploadInput("  ", "x"))
	require.Error(t, err)

	input := uploadInput("big.bin", "x")
	input.SizeBytes = maxAttachmentBytes + 1
	_, err = f.service.Upload(context.Background(), actor, f.ticketID, input)
	require.Error(t, err)

	// Path components are stripped from the stored filename.
	attachment, err := f.service.Upload(context.Background(), actor, f.ticketID, uploadInput("../../etc/passwd", "nope"))
	require.NoError(t, err)
	assert.Equal(t, "passwd", attachment.Filename)
}

func TestDownloadEnforcesVisibility(t *testing.T) {
	f := newAttachmentFixture(t)
	worker := workerProfile("worker-1")

	input := uploadInput("internal.txt", "for staff only")
	input.IsInternal = true
	attachment, err := f.service.Upload(context.Background(), worker, f.ticketID, input)
	require.NoError(t, err)

	_, _, err = f.service.Download(context.Background(), customerProfile("customer-1"), attachment.ID)
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperrors.ToDomainError(err).Code)

	_, body, err := f.service.Download(context.Background(), worker, attachment.ID)
	require.NoError(t, err)
	data, err := io.ReadAll(body)
	require.NoError(t, err)
	require.NoError(t, body.Close())
	assert.Equal(t, "for staff only", string(data))
}

func TestDeleteRemovesRowThenBlob(t *testing.T) {
	f := newAttachmentFixture(t)
	owner := customerProfile("customer-1")

	attachment, err := f.service.Upload(context.Background(), owner, f.ticketID, uploadInput("old.txt", "bye"))
	require.NoError(t, err)

	require.NoError(t, f.service.Delete(context.Background(), owner, attachment.ID))
	assert.Empty(t, f.attachments.attachments)
	assert.Empty(t, f.store.blobs)

	changed := f.dispatcher.byType(events.EventAttachmentChanged)
	require.Len(t, changed, 2)
	payload, ok := changed[1].Payload.(events.AttachmentChangedPayload)
	require.True(t, ok)
	assert.Equal(t, events.AttachmentDeleted, payload.Change)
}
