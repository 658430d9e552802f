package realtime

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/support-desk/internal/domain"
)

type fakeLoader struct {
	names        map[string]string
	comments     []CommentView
	attachments  []AttachmentView
	commentCalls int
}

func (f *fakeLoader) LoadTicketView(ctx context.Context, ticketID string, viewer *domain.Profile) (*TicketView, error) {
	return nil, nil
}

func (f *fakeLoader) LoadComments(ctx context.Context, ticketID string, viewer *domain.Profile) ([]CommentView, error) {
	f.commentCalls++
	return f.comments, nil
}

func (f *fakeLoader) LoadAttachments(ctx context.Context, ticketID string, viewer *domain.Profile) ([]AttachmentView, error) {
	return f.attachments, nil
}

func (f *fakeLoader) ResolveDisplayName(ctx context.Context, profileID string) (string, error) {
	return f.names[profileID], nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func baseView() *TicketView {
	assignee := "worker-1"
	assigneeName := "Alice"
	deadline := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	return &TicketView{
		ID:           "ticket-1",
		Title:        "printer on fire",
		Status:       domain.TicketStatusInProgress,
		Priority:     domain.TicketPriorityHigh,
		CustomerID:   "customer-1",
		CustomerName: "Bob",
		AssignedTo:   &assignee,
		AssigneeName: &assigneeName,
		SLADeadline:  &deadline,
	}
}

func TestApplyStatusUpdatePreservesResolvedNames(t *testing.T) {
	loader := &fakeLoader{names: map[string]string{}}
	r := NewReconciler(loader)
	r.now = fixedClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	view := baseView()
	viewer := &domain.Profile{ID: "worker-1", Role: domain.RoleWorker}

	err := r.Apply(context.Background(), view, viewer, ChangeEvent{
		Table:    TableTickets,
		Type:     ChangeUpdate,
		TicketID: view.ID,
		New:      map[string]any{"status": "resolved"},
	})
	require.NoError(t, err)

	assert.Equal(t, domain.TicketStatusResolved, view.Status)
	require.NotNil(t, view.AssigneeName)
	assert.Equal(t, "Alice", *view.AssigneeName)
	assert.Equal(t, "Bob", view.CustomerName)
}

func TestApplyAssignmentResolvesNewName(t *testing.T) {
	loader := &fakeLoader{names: map[string]string{"worker-2": "Carol"}}
	r := NewReconciler(loader)
	view := baseView()
	viewer := &domain.Profile{ID: "worker-1", Role: domain.RoleWorker}

	err := r.Apply(context.Background(), view, viewer, ChangeEvent{
		Table: TableTickets,
		Type:  ChangeUpdate,
		New:   map[string]any{"assigned_to": "worker-2"},
	})
	require.NoError(t, err)

	require.NotNil(t, view.AssigneeName)
	assert.Equal(t, "Carol", *view.AssigneeName)
}

func TestApplyUnassignmentClearsName(t *testing.T) {
	r := NewReconciler(&fakeLoader{})
	view := baseView()
	viewer := &domain.Profile{ID: "worker-1", Role: domain.RoleWorker}

	err := r.Apply(context.Background(), view, viewer, ChangeEvent{
		Table: TableTickets,
		Type:  ChangeUpdate,
		New:   map[string]any{"assigned_to": nil},
	})
	require.NoError(t, err)

	assert.Nil(t, view.AssignedTo)
	assert.Nil(t, view.AssigneeName)
}

func TestApplyCommentInsertRefetchesThread(t *testing.T) {
	loader := &fakeLoader{
		comments: []CommentView{
			{ID: "c-1", AuthorName: "Bob", Content: "any update?"},
			{ID: "c-2", AuthorName: "Alice", Content: "on it"},
		},
	}
	r := NewReconciler(loader)
	view := baseView()
	viewer := &domain.Profile{ID: "customer-1", Role: domain.RoleCustomer}

	err := r.Apply(context.Background(), view, viewer, ChangeEvent{
		Table: TableComments,
		Type:  ChangeInsert,
		New:   map[string]any{"id": "c-2"},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, loader.commentCalls)
	require.Len(t, view.Comments, 2)
	assert.Equal(t, "Alice", view.Comments[1].AuthorName)
}

func TestApplyAttachmentChangeRefetchesList(t *testing.T) {
	loader := &fakeLoader{
		attachments: []AttachmentView{{ID: "a-1", Filename: "log.txt"}},
	}
	r := NewReconciler(loader)
	view := baseView()
	viewer := &domain.Profile{ID: "worker-1", Role: domain.RoleWorker}

	err := r.Apply(context.Background(), view, viewer, ChangeEvent{
		Table: TableAttachments,
		Type:  ChangeDelete,
		New:   map[string]any{"id": "a-2"},
	})
	require.NoError(t, err)

	require.Len(t, view.Attachments, 1)
	assert.Equal(t, "log.txt", view.Attachments[0].Filename)
}

func TestApplyRecomputesSLAState(t *testing.T) {
	r := NewReconciler(&fakeLoader{})
	view := baseView()
	viewer := &domain.Profile{ID: "worker-1", Role: domain.RoleWorker}

	// Two hours before the deadline.
	r.now = fixedClock(time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC))
	err := r.Apply(context.Background(), view, viewer, ChangeEvent{
		Table: TableTickets,
		Type:  ChangeUpdate,
		New:   map[string]any{"priority": "urgent"},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.SLAStateCritical, view.SLAState)

	// One hour past the deadline.
	r.now = fixedClock(time.Date(2024, 1, 1, 13, 0, 0, 0, time.UTC))
	err = r.Apply(context.Background(), view, viewer, ChangeEvent{
		Table: TableTickets,
		Type:  ChangeUpdate,
		New:   map[string]any{"title": "printer still on fire"},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.SLAStateOverdue, view.SLAState)
}

func TestApplyUpdateParsesWireTimestamps(t *testing.T) {
	r := NewReconciler(&fakeLoader{})
	view := baseView()
	viewer := &domain.Profile{ID: "worker-1", Role: domain.RoleWorker}

	err := r.Apply(context.Background(), view, viewer, ChangeEvent{
		Table: TableTickets,
		Type:  ChangeUpdate,
		New: map[string]any{
			"status":    "closed",
			"closed_at": "2024-01-01T15:04:05Z",
		},
	})
	require.NoError(t, err)

	require.NotNil(t, view.ClosedAt)
	assert.Equal(t, time.Date(2024, 1, 1, 15, 4, 5, 0, time.UTC), view.ClosedAt.UTC())
}

func TestApplyIgnoresNonUpdateTicketEvents(t *testing.T) {
	r := NewReconciler(&fakeLoader{})
	view := baseView()
	viewer := &domain.Profile{ID: "worker-1", Role: domain.RoleWorker}

	err := r.Apply(context.Background(), view, viewer, ChangeEvent{
		Table: TableTickets,
		Type:  ChangeInsert,
		New:   map[string]any{"title": "other"},
	})
	require.NoError(t, err)
	assert.Equal(t, "printer on fire", view.Title)
}
