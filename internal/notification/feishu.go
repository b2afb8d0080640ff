package notification

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/reportdeck/reportdeck/pkg/logger"
)

// FeishuConfig configures the Feishu/Lark custom bot channel
type FeishuConfig struct {
	WebhookURL string `yaml:"webhook_url"`
	Secret     string `yaml:"secret"`
}

// FeishuNotifier sends events as Feishu interactive cards
type FeishuNotifier struct {
	config FeishuConfig
	client *http.Client
	now    func() time.Time
}

// FeishuMessage is the bot webhook payload
type FeishuMessage struct {
	Timestamp string      `json:"timestamp,omitempty"`
	Sign      string      `json:"sign,omitempty"`
	MsgType   string      `json:"msg_type"`
	Card      *FeishuCard `json:"card,omitempty"`
}

// FeishuCard is an interactive card
type FeishuCard struct {
	Config   FeishuCardConfig    `json:"config"`
	Header   FeishuCardHeader    `json:"header"`
	Elements []FeishuCardElement `json:"elements"`
}

type FeishuCardConfig struct {
	WideScreenMode bool `json:"wide_screen_mode"`
}

type FeishuCardHeader struct {
	Title    FeishuCardText `json:"title"`
	Template string         `json:"template"`
}

type FeishuCardText struct {
	Tag     string `json:"tag"`
	Content string `json:"content"`
}

// FeishuCardElement is a div, hr or note element
type FeishuCardElement struct {
	Tag      string           `json:"tag"`
	Text     *FeishuCardText  `json:"text,omitempty"`
	Fields   []FeishuField    `json:"fields,omitempty"`
	Elements []FeishuCardText `json:"elements,omitempty"`
}

type FeishuField struct {
	IsShort bool           `json:"is_short"`
	Text    FeishuCardText `json:"text"`
}

// NewFeishuNotifier creates a Feishu notifier
func NewFeishuNotifier(cfg FeishuConfig) *FeishuNotifier {
	return &FeishuNotifier{
		config: cfg,
		client: &http.Client{Timeout: sendTimeout},
		now:    time.Now,
	}
}

// Name returns the notifier name
func (f *FeishuNotifier) Name() string {
	return string(ChannelFeishu)
}

// Send posts the card to the bot webhook
func (f *FeishuNotifier) Send(ctx context.Context, event *Event) error {
	if f.config.WebhookURL == "" {
		return fmt.Errorf("Feishu webhook URL is not configured")
	}

	msg := f.buildMessage(event)
	if f.config.Secret != "" {
		msg.Timestamp = strconv.FormatInt(f.now().Unix(), 10)
		msg.Sign = feishuSign(msg.Timestamp, f.config.Secret)
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal Feishu message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.config.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create Feishu request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	logger.Debug("Sending Feishu notification", zap.String("event_type", string(event.Type)))

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send Feishu request: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	var result struct {
		Code int    `json:"code"`
		Msg  string `json:"msg"`
	}
	if err := json.Unmarshal(respBody, &result); err == nil {
		if result.Code != 0 {
			return fmt.Errorf("Feishu returned error: code=%d, msg=%s", result.Code, result.Msg)
		}
	} else if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("Feishu returned error: status=%d, body=%s", resp.StatusCode, string(respBody))
	}
	return nil
}

func (f *FeishuNotifier) buildMessage(event *Event) *FeishuMessage {
	template, title := "green", "✅ 定时导出完成"
	if !event.Succeeded() {
		template, title = "red", "⚠️ 定时导出失败"
	}

	md := func(s string) FeishuCardText { return FeishuCardText{Tag: "lark_md", Content: s} }
	elements := []FeishuCardElement{
		{
			Tag: "div",
			Fields: []FeishuField{
				{IsShort: true, Text: md("**批次**\n" + event.RunID)},
				{IsShort: true, Text: md("**时间**\n" + event.Timestamp.Format("2006-01-02 15:04:05"))},
			},
		},
		{Tag: "div", Text: ptr(md("**报告**\n" + event.Report))},
	}

	if event.Succeeded() {
		elements = append(elements,
			FeishuCardElement{Tag: "div", Text: ptr(md("**文件**\n" + strings.Join(event.Paths, "\n")))},
			FeishuCardElement{Tag: "div", Text: ptr(md(fmt.Sprintf("**耗时**\n%.2f 秒", event.Duration.Seconds())))},
		)
	} else {
		elements = append(elements,
			FeishuCardElement{Tag: "hr"},
			FeishuCardElement{Tag: "div", Text: ptr(md("**错误信息**\n```\n" + truncate(event.failureText(), 500) + "\n```"))},
		)
	}
	elements = append(elements, FeishuCardElement{
		Tag:      "note",
		Elements: []FeishuCardText{{Tag: "plain_text", Content: "来自 ReportDeck 定时导出"}},
	})

	return &FeishuMessage{
		MsgType: "interactive",
		Card: &FeishuCard{
			Config: FeishuCardConfig{WideScreenMode: true},
			Header: FeishuCardHeader{
				Title:    FeishuCardText{Tag: "plain_text", Content: title},
				Template: template,
			},
			Elements: elements,
		},
	}
}

// feishuSign keys the HMAC with "timestamp\nsecret" over an empty message,
// which is what the bot API verifies.
func feishuSign(timestamp, secret string) string {
	mac := hmac.New(sha256.New, []byte(timestamp+"\n"+secret))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func ptr[T any](v T) *T { return &v }
