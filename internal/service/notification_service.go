package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/slack-go/slack"
	"go.uber.org/zap"

	"github.com/spec-kit/content-crm/internal/config"
	"github.com/spec-kit/content-crm/internal/events"
	"github.com/spec-kit/content-crm/internal/observability"
)

// NotificationService delivers best-effort notifications for workflow
// events. Delivery failures are logged and never surfaced to the actor
// or rolled back into a committed transition; there are no retries.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
	cfg        config.NotificationConfig
	httpClient *http.Client
	slack      *slack.Client
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, metrics *observability.Metrics, cfg config.NotificationConfig) *NotificationService {
	svc := &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		metrics:    metrics,
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	if cfg.SlackToken != "" {
		svc.slack = slack.New(cfg.SlackToken)
	}
	return svc
}

// RegisterHandlers subscribes to workflow events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketStageChanged, n.handleStageChanged)
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated)
}

// handleStageChanged dispatches in a goroutine so the committed
// transition never waits on delivery.
func (n *NotificationService) handleStageChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketStageChangedPayload)
	if !ok {
		return nil
	}
	go n.deliverStageChanged(event, payload)
	return nil
}

func (n *NotificationService) handleTicketCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("ticket created",
		zap.String("ticket_id", event.TicketID),
		zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) deliverStageChanged(event events.Event, payload events.TicketStageChangedPayload) {
	// Detached from the request context: commit already happened.
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	n.sendWebhook(ctx, event, payload)
	n.sendSlack(ctx, payload)
}

func (n *NotificationService) sendWebhook(ctx context.Context, event events.Event, payload events.TicketStageChangedPayload) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	body, err := json.Marshal(map[string]any{
		"ticketId":   event.TicketID,
		"title":      payload.Title,
		"client":     payload.ClientName,
		"assignee":   payload.Assignee,
		"fromStatus": payload.FromStage,
		"toStatus":   payload.ToStage,
		"actor":      event.Actor.Name,
	})
	if err != nil {
		n.logNotificationFailure("webhook", event.TicketID, err)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.cfg.WebhookURL, bytes.NewReader(body))
	if err != nil {
		n.logNotificationFailure("webhook", event.TicketID, err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		n.logNotificationFailure("webhook", event.TicketID, err)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		n.logNotificationFailure("webhook", event.TicketID, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}
}

func (n *NotificationService) sendSlack(ctx context.Context, payload events.TicketStageChangedPayload) {
	if n.slack == nil || strings.TrimSpace(n.cfg.SlackChannel) == "" {
		return
	}
	message := fmt.Sprintf("*%s* moved from %s to %s (client: %s)",
		payload.Title, payload.FromStage.Label(), payload.ToStage.Label(), payload.ClientName)
	_, _, err := n.slack.PostMessageContext(ctx, n.cfg.SlackChannel,
		slack.MsgOptionText(message, false))
	if err != nil {
		n.logNotificationFailure("slack", payload.Title, err)
	}
}

func (n *NotificationService) logNotificationFailure(channel, subject string, err error) {
	if n.metrics != nil {
		n.metrics.RecordNotificationFailure(channel)
	}
	n.logger.Warn("notification delivery failed",
		zap.String("channel", channel),
		zap.String("subject", subject),
		zap.Error(err))
}
