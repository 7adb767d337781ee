package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/lcs-staffing/admin-console/internal/config"
	"github.com/lcs-staffing/admin-console/internal/events"
)

// Webhook posts job events as JSON to a fixed URL.
type Webhook struct {
	http *http.Client
	url  string
}

// NewWebhook builds a poster for cfg.WebhookURL.
func NewWebhook(cfg config.NotificationConfig) *Webhook {
	return &Webhook{
		http: &http.Client{Timeout: cfg.WebhookTimeout()},
		url:  cfg.WebhookURL,
	}
}

// Post sends event. Any non-2xx answer is an error.
func (w *Webhook) Post(ctx context.Context, event events.Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("webhook encode: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Event-Type", string(event.Type))

	resp, err := w.http.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook: unexpected status %d", resp.StatusCode)
	}
	return nil
}
