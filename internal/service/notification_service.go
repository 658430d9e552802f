package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/config"
	"github.com/spec-kit/support-desk/internal/events"
	"github.com/spec-kit/support-desk/internal/repository"
)

// NotificationService turns domain events into outbound email and
// webhook calls. All sends are best-effort; a failed notification is
// logged and dropped, never retried into the mutation path.
type NotificationService struct {
	tickets    repository.TicketRepository
	profiles   repository.ProfileRepository
	settings   *SettingsService
	logger     *zap.Logger
	cfg        config.NotificationConfig
	emails     *resend.Client
	httpClient *http.Client
}

// NewNotificationService creates the service. Email sending stays off
// when no API key is configured.
func NewNotificationService(tickets repository.TicketRepository, profiles repository.ProfileRepository, settings *SettingsService, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	n := &NotificationService{
		tickets:    tickets,
		profiles:   profiles,
		settings:   settings,
		logger:     logger,
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	if cfg.ResendAPIKey != "" {
		n.emails = resend.NewClient(cfg.ResendAPIKey)
	}
	return n
}

// HandledEvents lists the event types that produce notifications.
func (n *NotificationService) HandledEvents() []events.EventType {
	return []events.EventType{
		events.EventTicketCreated,
		events.EventTicketAssigned,
		events.EventCommentAdded,
		events.EventTicketUpdated,
	}
}

// Handle routes one event to its notification logic.
func (n *NotificationService) Handle(ctx context.Context, event events.Event) error {
	switch event.Type {
	case events.EventTicketCreated:
		return n.handleTicketCreated(ctx, event)
	case events.EventTicketAssigned:
		return n.handleTicketAssigned(ctx, event)
	case events.EventCommentAdded:
		return n.handleCommentAdded(ctx, event)
	case events.EventTicketUpdated:
		return n.handleTicketUpdated(ctx, event)
	default:
		return nil
	}
}

func (n *NotificationService) handleTicketCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketCreatedPayload)
	if !ok {
		return nil
	}
	if n.settings.EmailEnabled(ctx, "ticket_created") {
		if email, ok := n.customerEmail(ctx, event.TicketID); ok {
			n.sendEmail(email,
				fmt.Sprintf("Ticket received: %s", payload.Title),
				fmt.Sprintf("We have opened a %s priority ticket for you and will respond within the stated window.", payload.Priority))
		}
	}
	n.sendWebhook(ctx, event)
	return nil
}

func (n *NotificationService) handleTicketAssigned(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketAssignedPayload)
	if !ok || payload.AssignedTo == nil {
		return nil
	}
	if n.settings.EmailEnabled(ctx, "ticket_assigned") {
		if assignee, err := n.profiles.GetByID(ctx, *payload.AssignedTo); err == nil {
			n.sendEmail(assignee.Email,
				"Ticket assigned to you",
				fmt.Sprintf("Ticket %s is now assigned to you.", event.TicketID))
		}
	}
	n.sendWebhook(ctx, event)
	return nil
}

func (n *NotificationService) handleCommentAdded(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.CommentAddedPayload)
	if !ok {
		return nil
	}
	// Internal notes never reach the customer.
	if !payload.IsInternal && n.settings.EmailEnabled(ctx, "comment_added") {
		if email, ok := n.customerEmail(ctx, event.TicketID); ok {
			n.sendEmail(email,
				"New reply on your ticket",
				fmt.Sprintf("Your ticket %s has a new reply.", event.TicketID))
		}
	}
	n.sendWebhook(ctx, event)
	return nil
}

func (n *NotificationService) handleTicketUpdated(ctx context.Context, event events.Event) error {
	n.sendWebhook(ctx, event)
	return nil
}

func (n *NotificationService) customerEmail(ctx context.Context, ticketID string) (string, bool) {
	ticket, err := n.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return "", false
	}
	customer, err := n.profiles.GetByID(ctx, ticket.CustomerID)
	if err != nil {
		return "", false
	}
	return customer.Email, true
}

func (n *NotificationService) sendEmail(to, subject, body string) {
	if n.emails == nil || n.cfg.EmailFrom == "" {
		return
	}
	_, err := n.emails.Emails.Send(&resend.SendEmailRequest{
		From:    n.cfg.EmailFrom,
		To:      []string{to},
		Subject: subject,
		Text:    body,
	})
	if err != nil {
		n.logger.Warn("email notification failed",
			zap.String("subject", subject), zap.Error(err))
		return
	}
	n.logger.Debug("email notification sent", zap.String("subject", subject))
}

func (n *NotificationService) sendWebhook(ctx context.Context, event events.Event) {
	if n.cfg.WebhookURL == "" {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.cfg.WebhookURL, bytes.NewReader(data))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := n.httpClient.Do(req)
	if err != nil {
		n.logger.Warn("webhook delivery failed",
			zap.String("event_type", string(event.Type)), zap.Error(err))
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		n.logger.Warn("webhook rejected",
			zap.String("event_type", string(event.Type)),
			zap.Int("status", resp.StatusCode))
	}
}
