package alerts

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/kevinDsousa/estoque-mestre-sub001/pkg/models"
)

// WebhookSenderOptions configures the webhook channel.
type WebhookSenderOptions struct {
	URLs          []string
	Timeout       time.Duration
	SkipTLSVerify bool
	Logger        *slog.Logger
}

// WebhookSender POSTs a JSON payload to every configured sink URL. With no
// URLs configured it degrades to a logging stub: the payload is built and
// logged but not delivered anywhere.
type WebhookSender struct {
	urls   []string
	client *http.Client
	log    *slog.Logger
}

type webhookPayload struct {
	Alert     models.Alert     `json:"alert"`
	Rule      models.AlertRule `json:"rule"`
	Timestamp time.Time        `json:"timestamp"`
	Source    string           `json:"source"`
}

// NewWebhookSender constructs the webhook channel.
func NewWebhookSender(opts WebhookSenderOptions) *WebhookSender {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	transport := &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: opts.SkipTLSVerify}, // #nosec G402
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &WebhookSender{
		urls:   opts.URLs,
		client: &http.Client{Timeout: timeout, Transport: transport},
		log:    logger.With("component", "alert_webhook_sender"),
	}
}

// Send builds the payload and attempts delivery to each sink URL. Per-URL
// failures are collected; delivery to the remaining sinks continues.
func (s *WebhookSender) Send(ctx context.Context, notification AlertNotification) error {
	payload := webhookPayload{
		Alert:     notification.Alert,
		Rule:      notification.Rule,
		Timestamp: notification.Timestamp,
		Source:    notification.Source,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	if len(s.urls) == 0 {
		s.log.Info("webhook alert", "alert_id", notification.Alert.ID, "payload", string(body))
		return nil
	}

	var errs []string
	for _, url := range s.urls {
		request, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", url, err))
			continue
		}
		request.Header.Set("Content-Type", "application/json")
		response, err := s.client.Do(request)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", url, err))
			continue
		}
		responseBody, readErr := io.ReadAll(response.Body)
		_ = response.Body.Close()
		if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
			trimmed := ""
			if readErr == nil {
				trimmed = strings.TrimSpace(string(responseBody))
			}
			if trimmed == "" {
				trimmed = response.Status
			}
			errs = append(errs, fmt.Sprintf("%s: status %d (%s)", url, response.StatusCode, trimmed))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("webhook delivery failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
