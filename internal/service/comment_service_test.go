package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/support-desk/internal/events"
	apperrors "github.com/spec-kit/support-desk/pkg/util"
)

type commentServiceFixture struct {
	service    *CommentService
	comments   *fakeCommentRepo
	tickets    *fakeTicketRepo
	dispatcher *fakeDispatcher
	ticketID   string
}

func newCommentFixture(t *testing.T) *commentServiceFixture {
	f := &commentServiceFixture{
		comments:   &fakeCommentRepo{},
		tickets:    newFakeTicketRepo(),
		dispatcher: &fakeDispatcher{},
	}
	f.service = NewCommentService(f.comments, f.tickets, f.dispatcher)

	ticketService := NewTicketService(TicketDependencies{
		TicketRepo: f.tickets,
		Settings:   NewSettingsService(&fakeSettingsRepo{}),
		Fields:     NewFieldsService(&fakeFieldDefRepo{}),
	})
	ticket, err := ticketService.CreateTicket(context.Background(), customerProfile("customer-1"), TicketCreateInput{Title: "thread"})
	require.NoError(t, err)
	f.ticketID = ticket.ID
	return f
}

func TestAddCommentPublishesEvent(t *testing.T) {
	f := newCommentFixture(t)

	comment, err := f.service.AddComment(context.Background(), customerProfile("customer-1"), f.ticketID, "any news?", false)
	require.NoError(t, err)
	assert.Equal(t, "any news?", comment.Content)

	added := f.dispatcher.byType(events.EventCommentAdded)
	require.Len(t, added, 1)
	payload, ok := added[0].Payload.(events.CommentAddedPayload)
	require.True(t, ok)
	assert.Equal(t, comment.ID, payload.CommentID)
	assert.False(t, payload.IsInternal)
}

func TestAddCommentCustomerCannotPostInternal(t *testing.T) {
	f := newCommentFixture(t)

	_, err := f.service.AddComment(context.Background(), customerProfile("customer-1"), f.ticketID, "secret", true)
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperrors.ToDomainError(err).Code)
}

func TestAddCommentCustomerScopedToOwnTicket(t *testing.T) {
	f := newCommentFixture(t)

	_, err := f.service.AddComment(context.Background(), customerProfile("customer-2"), f.ticketID, "let me in", false)
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperrors.ToDomainError(err).Code)
}

func TestAddCommentRejectsEmptyAfterSanitizing(t *testing.T) {
	f := newCommentFixture(t)

	_, err := f.service.AddComment(context.Background(), workerProfile("worker-1"), f.ticketID, `<script>alert("x")</script>`, false)
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
}

func TestListForTicketHidesInternalFromCustomers(t *testing.T) {
	f := newCommentFixture(t)
	worker := workerProfile("worker-1")

	_, err := f.service.AddComment(context.Background(), worker, f.ticketID, "public reply", false)
	require.NoError(t, err)
	_, err = f.service.AddComment(context.Background(), worker, f.ticketID, "internal note", true)
	require.NoError(t, err)

	visible, err := f.service.ListForTicket(context.Background(), customerProfile("customer-1"), f.ticketID)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, "public reply", visible[0].Content)

	all, err := f.service.ListForTicket(context.Background(), worker, f.ticketID)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
