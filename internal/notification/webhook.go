package notification

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/reportdeck/reportdeck/consts"
	"github.com/reportdeck/reportdeck/pkg/logger"
)

// SignatureHeader carries the HMAC-SHA256 of the body when a secret is set
const SignatureHeader = "X-ReportDeck-Signature"

// WebhookConfig configures the generic webhook channel
type WebhookConfig struct {
	URL    string `yaml:"url"`
	Secret string `yaml:"secret"`
}

// WebhookNotifier posts events as JSON
type WebhookNotifier struct {
	config WebhookConfig
	client *http.Client
}

// WebhookPayload is the JSON body sent to the endpoint
type WebhookPayload struct {
	EventType    string            `json:"event_type"`
	RunID        string            `json:"run_id"`
	Report       string            `json:"report"`
	Paths        []string          `json:"paths,omitempty"`
	Failures     map[string]string `json:"failures,omitempty"`
	ErrorMessage string            `json:"error_message,omitempty"`
	DurationMS   int64             `json:"duration_ms"`
	Timestamp    string            `json:"timestamp"` // RFC3339
}

// NewWebhookNotifier creates a webhook notifier
func NewWebhookNotifier(cfg WebhookConfig) *WebhookNotifier {
	return &WebhookNotifier{
		config: cfg,
		client: &http.Client{Timeout: sendTimeout},
	}
}

// Name returns the notifier name
func (w *WebhookNotifier) Name() string {
	return string(ChannelWebhook)
}

// Send posts the event to the configured URL
func (w *WebhookNotifier) Send(ctx context.Context, event *Event) error {
	if w.config.URL == "" {
		return fmt.Errorf("webhook URL is not configured")
	}

	body, err := json.Marshal(WebhookPayload{
		EventType:    string(event.Type),
		RunID:        event.RunID,
		Report:       event.Report,
		Paths:        event.Paths,
		Failures:     event.Failures,
		ErrorMessage: event.ErrorMessage,
		DurationMS:   event.Duration.Milliseconds(),
		Timestamp:    event.Timestamp.Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.config.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", consts.ServiceName+"-notifier/"+consts.Version)
	if w.config.Secret != "" {
		req.Header.Set(SignatureHeader, Sign(w.config.Secret, body))
	}

	logger.Debug("Sending webhook notification",
		zap.String("url", w.config.URL),
		zap.String("event_type", string(event.Type)),
	)

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send webhook request: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned non-success status: %d, body: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

// Sign computes the signature header value for body
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}
