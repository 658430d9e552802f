package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/config"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/events"
)

func newNotificationFixture(t *testing.T, webhookURL string) (*NotificationService, *fakeTicketRepo) {
	tickets := newFakeTicketRepo()
	profiles := newFakeProfileRepo(customerProfile("customer-1"), workerProfile("worker-1"))
	settings := NewSettingsService(&fakeSettingsRepo{})

	n := NewNotificationService(tickets, profiles, settings, zap.NewNop(), config.NotificationConfig{
		WebhookURL: webhookURL,
	})
	return n, tickets
}

func TestHandleEventPostsWebhook(t *testing.T) {
	received := make(chan events.Event, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var event events.Event
		require.NoError(t, json.NewDecoder(r.Body).Decode(&event))
		received <- event
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	n, tickets := newNotificationFixture(t, server.URL)
	ticket := &domain.Ticket{Title: "webhook me", CustomerID: "customer-1", Status: domain.TicketStatusOpen, Priority: domain.TicketPriorityHigh}
	require.NoError(t, tickets.Create(context.Background(), ticket))

	err := n.Handle(context.Background(), events.Event{
		ID:       "event-1",
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Payload:  events.TicketCreatedPayload{Title: ticket.Title, Priority: ticket.Priority},
	})
	require.NoError(t, err)

	select {
	case event := <-received:
		assert.Equal(t, events.EventTicketCreated, event.Type)
		assert.Equal(t, ticket.ID, event.TicketID)
	default:
		t.Fatal("webhook was not delivered")
	}
}

func TestHandleIgnoresUnknownEventTypes(t *testing.T) {
	n, _ := newNotificationFixture(t, "")
	err := n.Handle(context.Background(), events.Event{Type: events.EventType("something_else")})
	require.NoError(t, err)
}

func TestHandledEventsCoversNotifyingTypes(t *testing.T) {
	n, _ := newNotificationFixture(t, "")
	assert.ElementsMatch(t, []events.EventType{
		events.EventTicketCreated,
		events.EventTicketAssigned,
		events.EventCommentAdded,
		events.EventTicketUpdated,
	}, n.HandledEvents())
}
