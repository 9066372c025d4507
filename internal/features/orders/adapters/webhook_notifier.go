package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"pouchstore/internal/core/httpclient"
	"pouchstore/internal/features/orders/domain"
)

// WebhookNotifier implements ports.Notifier by posting order events to a
// configured webhook. The downstream service renders the actual emails;
// delivery here is best effort.
type WebhookNotifier struct {
	client *http.Client
	url    string
}

// NewWebhookNotifier creates a new WebhookNotifier. An empty URL disables
// notifications: every call becomes a no-op.
func NewWebhookNotifier(url string) *WebhookNotifier {
	return &WebhookNotifier{
		client: httpclient.NewClient(5 * time.Second),
		url:    url,
	}
}

// orderEvent is the webhook payload.
type orderEvent struct {
	Event       string `json:"event"`
	OrderNumber string `json:"order_number"`
	Email       string `json:"email"`
	Status      string `json:"status"`
	Total       string `json:"total"`
}

func (n *WebhookNotifier) post(ctx context.Context, event string, order *domain.Order) error {
	if n.url == "" {
		return nil
	}

	payload, err := json.Marshal(orderEvent{
		Event:       event,
		OrderNumber: order.OrderNumber,
		Email:       order.Email,
		Status:      string(order.Status),
		Total:       order.Total.String(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", event, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", event, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to deliver %s event: %w", event, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("%s webhook returned status: %d", event, resp.StatusCode)
	}

	return nil
}

// OrderConfirmation announces a newly placed order.
func (n *WebhookNotifier) OrderConfirmation(ctx context.Context, order *domain.Order) error {
	return n.post(ctx, "order.confirmed", order)
}

// StatusChanged announces a lifecycle transition.
func (n *WebhookNotifier) StatusChanged(ctx context.Context, order *domain.Order) error {
	return n.post(ctx, "order.status_changed", order)
}
