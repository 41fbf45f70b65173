package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sharpline/sharpline-alerts/internal/engine"
	"github.com/sharpline/sharpline-alerts/internal/store"
)

// SlackSender posts alerts to a shared Slack channel via incoming webhook.
// Unlike Telegram this is a broadcast channel, used for ops visibility
// rather than per-user delivery. Nil-safe when unconfigured.
type SlackSender struct {
	webhookURL string
	httpClient *http.Client
}

// NewSlackSender creates a Slack webhook sender. Returns nil if webhookURL
// is empty (channel disabled).
func NewSlackSender(webhookURL string) *SlackSender {
	if webhookURL == "" {
		return nil
	}
	return &SlackSender{
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *SlackSender) Name() string { return "slack" }

// Send posts the alert text to the webhook.
func (s *SlackSender) Send(ctx context.Context, row store.DeliveryRow) error {
	if s == nil {
		return nil
	}

	payload := map[string]interface{}{
		"text": fmt.Sprintf("%s *%s*\n%s\n_user: %s | sport: %s_",
			engine.TypeIcon(row.Type), row.Title, row.Message, row.UserID, row.Sport),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("slack webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("slack webhook returned %d", resp.StatusCode)
	}
	return nil
}
