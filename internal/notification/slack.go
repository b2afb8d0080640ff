package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/reportdeck/reportdeck/pkg/logger"
)

// SlackConfig configures the Slack incoming webhook channel
type SlackConfig struct {
	WebhookURL string `yaml:"webhook_url"`
	Channel    string `yaml:"channel"`
}

// SlackNotifier sends events via a Slack incoming webhook
type SlackNotifier struct {
	config SlackConfig
	client *http.Client
}

// SlackMessage represents a Slack message payload
type SlackMessage struct {
	Channel     string            `json:"channel,omitempty"`
	Text        string            `json:"text"`
	Attachments []SlackAttachment `json:"attachments,omitempty"`
}

// SlackAttachment represents a Slack message attachment
type SlackAttachment struct {
	Color     string       `json:"color"`
	Title     string       `json:"title"`
	Fields    []SlackField `json:"fields,omitempty"`
	Footer    string       `json:"footer,omitempty"`
	Timestamp int64        `json:"ts,omitempty"`
}

// SlackField represents a field in a Slack attachment
type SlackField struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

// NewSlackNotifier creates a Slack notifier
func NewSlackNotifier(cfg SlackConfig) *SlackNotifier {
	return &SlackNotifier{
		config: cfg,
		client: &http.Client{Timeout: sendTimeout},
	}
}

// Name returns the notifier name
func (s *SlackNotifier) Name() string {
	return string(ChannelSlack)
}

// Send posts the event to Slack
func (s *SlackNotifier) Send(ctx context.Context, event *Event) error {
	if s.config.WebhookURL == "" {
		return fmt.Errorf("Slack webhook URL is not configured")
	}

	body, err := json.Marshal(s.buildMessage(event))
	if err != nil {
		return fmt.Errorf("failed to marshal Slack message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create Slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	logger.Debug("Sending Slack notification", zap.String("event_type", string(event.Type)))

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send Slack request: %w", err)
	}
	defer resp.Body.Close()

	// Slack answers a plain "ok"
	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	if resp.StatusCode != http.StatusOK || string(respBody) != "ok" {
		return fmt.Errorf("Slack returned error: status=%d, body=%s", resp.StatusCode, string(respBody))
	}
	return nil
}

func (s *SlackNotifier) buildMessage(event *Event) *SlackMessage {
	emoji, color, status := ":white_check_mark:", "good", "Completed"
	if !event.Succeeded() {
		emoji, color, status = ":x:", "danger", "Failed"
	}

	fields := []SlackField{
		{Title: "Report", Value: event.Report, Short: false},
		{Title: "Run ID", Value: event.RunID, Short: true},
		{Title: "Time", Value: event.Timestamp.Format("2006-01-02 15:04:05 MST"), Short: true},
	}
	if event.Succeeded() {
		fields = append(fields,
			SlackField{Title: "Files", Value: strings.Join(event.Paths, "\n"), Short: false},
			SlackField{Title: "Duration", Value: fmt.Sprintf("%.2fs", event.Duration.Seconds()), Short: true},
		)
	} else {
		fields = append(fields, SlackField{Title: "Error", Value: truncate(event.failureText(), 500), Short: false})
	}

	return &SlackMessage{
		Channel: s.config.Channel,
		Text:    fmt.Sprintf("%s *Scheduled Export %s*", emoji, status),
		Attachments: []SlackAttachment{{
			Color:     color,
			Title:     "Export run " + event.RunID,
			Fields:    fields,
			Footer:    "ReportDeck",
			Timestamp: event.Timestamp.Unix(),
		}},
	}
}
