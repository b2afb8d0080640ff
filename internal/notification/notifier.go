// Package notification announces scheduled export runs to chat and webhook
// endpoints. One channel is active at a time: webhook, slack or feishu.
package notification

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/reportdeck/reportdeck/internal/export"
	"github.com/reportdeck/reportdeck/pkg/logger"
)

const sendTimeout = 30 * time.Second

// Channel names a notification channel
type Channel string

const (
	ChannelNone    Channel = ""
	ChannelWebhook Channel = "webhook"
	ChannelSlack   Channel = "slack"
	ChannelFeishu  Channel = "feishu"
)

// Channels lists the supported channels
var Channels = []Channel{ChannelWebhook, ChannelSlack, ChannelFeishu}

// EventType represents the type of notification event
type EventType string

const (
	// EventExportCompleted is sent when every format of a run was written
	EventExportCompleted EventType = "export_completed"
	// EventExportFailed is sent when the report was unavailable or a format failed
	EventExportFailed EventType = "export_failed"
)

// Event describes one export run
type Event struct {
	Type         EventType         `json:"type"`
	RunID        string            `json:"run_id"`
	Report       string            `json:"report"`
	Paths        []string          `json:"paths,omitempty"`
	Failures     map[string]string `json:"failures,omitempty"`
	ErrorMessage string            `json:"error_message,omitempty"`
	Duration     time.Duration     `json:"duration"`
	Timestamp    time.Time         `json:"timestamp"`
}

// Succeeded reports whether the event is a completion
func (e *Event) Succeeded() bool {
	return e.Type == EventExportCompleted
}

// failureText joins failures as "format: message" lines in format order
func (e *Event) failureText() string {
	if e.ErrorMessage != "" {
		return e.ErrorMessage
	}
	formats := make([]string, 0, len(e.Failures))
	for f := range e.Failures {
		formats = append(formats, f)
	}
	sort.Strings(formats)
	lines := make([]string, 0, len(formats))
	for _, f := range formats {
		lines = append(lines, f+": "+e.Failures[f])
	}
	return strings.Join(lines, "\n")
}

// EventFromRun converts a scheduler result into an event
func EventFromRun(res export.RunResult) *Event {
	e := &Event{
		Type:      EventExportCompleted,
		RunID:     res.ID,
		Report:    res.Report,
		Paths:     res.Paths,
		Duration:  res.Duration,
		Timestamp: res.Started.Add(res.Duration),
	}
	if res.Err != nil {
		e.ErrorMessage = res.Err.Error()
	}
	if len(res.Failures) > 0 {
		e.Failures = make(map[string]string, len(res.Failures))
		for f, msg := range res.Failures {
			e.Failures[string(f)] = msg
		}
	}
	if res.Failed() {
		e.Type = EventExportFailed
	}
	return e
}

// Notifier is implemented by every channel
type Notifier interface {
	Name() string
	Send(ctx context.Context, event *Event) error
}

// Config selects and configures the notification channel
type Config struct {
	Channel Channel `yaml:"channel"`
	// OnSuccess also announces completed runs; failures are always sent
	OnSuccess bool          `yaml:"on_success"`
	Webhook   WebhookConfig `yaml:"webhook"`
	Slack     SlackConfig   `yaml:"slack"`
	Feishu    FeishuConfig  `yaml:"feishu"`
}

// IsEnabled reports whether a channel is selected
func (c Config) IsEnabled() bool {
	return c.Channel != ChannelNone
}

// Validate returns one message per problem
func (c Config) Validate() []string {
	var problems []string
	switch c.Channel {
	case ChannelNone:
	case ChannelWebhook:
		if c.Webhook.URL == "" {
			problems = append(problems, "notification.webhook.url is required for the webhook channel")
		}
	case ChannelSlack:
		if c.Slack.WebhookURL == "" {
			problems = append(problems, "notification.slack.webhook_url is required for the slack channel")
		}
	case ChannelFeishu:
		if c.Feishu.WebhookURL == "" {
			problems = append(problems, "notification.feishu.webhook_url is required for the feishu channel")
		}
	default:
		problems = append(problems, fmt.Sprintf("notification.channel %q is not supported", c.Channel))
	}
	return problems
}

// Manager filters events and hands them to the configured notifier
type Manager struct {
	notifier  Notifier
	onSuccess bool
}

// NewManager builds the notifier for cfg. A disabled config yields a manager
// that drops every event.
func NewManager(cfg Config) (*Manager, error) {
	m := &Manager{onSuccess: cfg.OnSuccess}
	switch cfg.Channel {
	case ChannelNone:
	case ChannelWebhook:
		m.notifier = NewWebhookNotifier(cfg.Webhook)
	case ChannelSlack:
		m.notifier = NewSlackNotifier(cfg.Slack)
	case ChannelFeishu:
		m.notifier = NewFeishuNotifier(cfg.Feishu)
	default:
		return nil, fmt.Errorf("unsupported notification channel: %s", cfg.Channel)
	}
	if m.notifier != nil {
		logger.Info("Notification manager initialized",
			zap.String("channel", m.notifier.Name()),
			zap.Bool("on_success", m.onSuccess),
		)
	}
	return m, nil
}

// IsEnabled reports whether events are delivered anywhere
func (m *Manager) IsEnabled() bool {
	return m != nil && m.notifier != nil
}

// Notify sends the event unless it is a completion and OnSuccess is off
func (m *Manager) Notify(ctx context.Context, event *Event) error {
	if !m.IsEnabled() {
		return nil
	}
	if event.Succeeded() && !m.onSuccess {
		logger.Debug("Skipping completion notification", zap.String("run_id", event.RunID))
		return nil
	}

	logger.Info("Sending notification",
		zap.String("channel", m.notifier.Name()),
		zap.String("event_type", string(event.Type)),
		zap.String("run_id", event.RunID),
	)
	if err := m.notifier.Send(ctx, event); err != nil {
		logger.Error("Failed to send notification",
			zap.String("channel", m.notifier.Name()),
			zap.String("run_id", event.RunID),
			zap.Error(err),
		)
		return fmt.Errorf("failed to send notification via %s: %w", m.notifier.Name(), err)
	}
	return nil
}

// OnRun adapts the manager to export.SchedulerConfig.OnRun. Delivery
// failures are logged by Notify and otherwise ignored.
func (m *Manager) OnRun(ctx context.Context, res export.RunResult) {
	// the run's own deadline may already have expired
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sendTimeout)
	defer cancel()
	_ = m.Notify(ctx, EventFromRun(res))
}

// truncate caps text at maxLen bytes including the "..." suffix, backing
// off to a rune boundary
func truncate(text string, maxLen int) string {
	if len(text) <= maxLen {
		return text
	}
	cut := maxLen - 3
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + "..."
}
