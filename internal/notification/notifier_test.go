package notification

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reportdeck/reportdeck/internal/export"
)

var started = time.Date(2025, 7, 1, 6, 0, 0, 0, time.UTC)

func completedEvent() *Event {
	return &Event{
		Type:      EventExportCompleted,
		RunID:     "run-1",
		Report:    "2025年上半年经营分析报告",
		Paths:     []string{"exports/a.html", "exports/a.pdf"},
		Duration:  2500 * time.Millisecond,
		Timestamp: started,
	}
}

func failedEvent() *Event {
	return &Event{
		Type:      EventExportFailed,
		RunID:     "run-2",
		Report:    "2025年上半年经营分析报告",
		Failures:  map[string]string{"pdf": "chrome not found", "html": "disk full"},
		Timestamp: started,
	}
}

// recorder captures the last request body and answers with reply
type recorder struct {
	mu     sync.Mutex
	body   []byte
	header http.Header
	calls  int
}

func (r *recorder) last() ([]byte, http.Header, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.body, r.header, r.calls
}

func (r *recorder) server(t *testing.T, status int, reply string) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		body, _ := io.ReadAll(req.Body)
		r.mu.Lock()
		r.calls++
		r.header = req.Header.Clone()
		r.body = body
		r.mu.Unlock()
		w.WriteHeader(status)
		_, _ = io.WriteString(w, reply)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestEventFromRun(t *testing.T) {
	ok := EventFromRun(export.RunResult{
		ID:       "x1",
		Report:   "R",
		Started:  started,
		Duration: time.Second,
		Paths:    []string{"a.json"},
	})
	assert.Equal(t, EventExportCompleted, ok.Type)
	assert.Equal(t, started.Add(time.Second), ok.Timestamp)
	assert.Nil(t, ok.Failures)

	partial := EventFromRun(export.RunResult{ID: "x2", Failures: map[export.Format]string{export.FormatPDF: "boom"}})
	assert.Equal(t, EventExportFailed, partial.Type)
	assert.Equal(t, map[string]string{"pdf": "boom"}, partial.Failures)

	broken := EventFromRun(export.RunResult{ID: "x3", Err: stderrors.New("no report")})
	assert.Equal(t, EventExportFailed, broken.Type)
	assert.Equal(t, "no report", broken.failureText())
}

func TestEvent_FailureTextSorted(t *testing.T) {
	assert.Equal(t, "html: disk full\npdf: chrome not found", failedEvent().failureText())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want int
	}{
		{"disabled", Config{}, 0},
		{"webhook ok", Config{Channel: ChannelWebhook, Webhook: WebhookConfig{URL: "http://x"}}, 0},
		{"webhook missing url", Config{Channel: ChannelWebhook}, 1},
		{"slack missing url", Config{Channel: ChannelSlack}, 1},
		{"feishu missing url", Config{Channel: ChannelFeishu}, 1},
		{"unknown channel", Config{Channel: "email"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, tt.cfg.Validate(), tt.want)
		})
	}
}

func TestNewManager(t *testing.T) {
	m, err := NewManager(Config{})
	require.NoError(t, err)
	assert.False(t, m.IsEnabled())
	assert.NoError(t, m.Notify(context.Background(), failedEvent()))

	_, err = NewManager(Config{Channel: "pager"})
	assert.Error(t, err)

	var nilManager *Manager
	assert.False(t, nilManager.IsEnabled())
}

func TestManager_SkipsCompletionsUnlessOnSuccess(t *testing.T) {
	rec := &recorder{}
	srv := rec.server(t, http.StatusOK, "")

	m, err := NewManager(Config{Channel: ChannelWebhook, Webhook: WebhookConfig{URL: srv.URL}})
	require.NoError(t, err)

	require.NoError(t, m.Notify(context.Background(), completedEvent()))
	assert.Equal(t, 0, calls(rec))
	require.NoError(t, m.Notify(context.Background(), failedEvent()))
	assert.Equal(t, 1, calls(rec))

	m, err = NewManager(Config{Channel: ChannelWebhook, OnSuccess: true, Webhook: WebhookConfig{URL: srv.URL}})
	require.NoError(t, err)
	require.NoError(t, m.Notify(context.Background(), completedEvent()))
	assert.Equal(t, 2, calls(rec))
}

func TestManager_OnRun(t *testing.T) {
	rec := &recorder{}
	srv := rec.server(t, http.StatusOK, "")

	m, err := NewManager(Config{Channel: ChannelWebhook, Webhook: WebhookConfig{URL: srv.URL}})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m.OnRun(ctx, export.RunResult{ID: "late", Err: stderrors.New("timeout")})

	require.Equal(t, 1, calls(rec), "an expired run context does not block delivery")
	var payload WebhookPayload
	require.NoError(t, json.Unmarshal(body(rec), &payload))
	assert.Equal(t, "late", payload.RunID)
	assert.Equal(t, "timeout", payload.ErrorMessage)
}

func TestWebhookNotifier_Send(t *testing.T) {
	rec := &recorder{}
	srv := rec.server(t, http.StatusNoContent, "")

	n := NewWebhookNotifier(WebhookConfig{URL: srv.URL, Secret: "s3cret"})
	require.NoError(t, n.Send(context.Background(), completedEvent()))

	var payload WebhookPayload
	require.NoError(t, json.Unmarshal(body(rec), &payload))
	assert.Equal(t, "export_completed", payload.EventType)
	assert.Equal(t, int64(2500), payload.DurationMS)
	assert.Equal(t, "2025-07-01T06:00:00Z", payload.Timestamp)
	assert.Equal(t, Sign("s3cret", body(rec)), header(rec).Get(SignatureHeader))
	assert.Equal(t, "application/json", header(rec).Get("Content-Type"))
}

func TestWebhookNotifier_Errors(t *testing.T) {
	err := NewWebhookNotifier(WebhookConfig{}).Send(context.Background(), failedEvent())
	assert.ErrorContains(t, err, "webhook URL is not configured")

	rec := &recorder{}
	srv := rec.server(t, http.StatusBadGateway, "upstream down")
	err = NewWebhookNotifier(WebhookConfig{URL: srv.URL}).Send(context.Background(), failedEvent())
	assert.ErrorContains(t, err, "502")
	assert.ErrorContains(t, err, "upstream down")
	assert.Empty(t, header(rec).Get(SignatureHeader))
}

func TestSign(t *testing.T) {
	assert.Equal(t, Sign("k", []byte("body")), Sign("k", []byte("body")))
	assert.NotEqual(t, Sign("k", []byte("body")), Sign("other", []byte("body")))
	assert.Regexp(t, `^sha256=[0-9a-f]{64}$`, Sign("k", nil))
}

func TestSlackNotifier_Send(t *testing.T) {
	rec := &recorder{}
	srv := rec.server(t, http.StatusOK, "ok")

	n := NewSlackNotifier(SlackConfig{WebhookURL: srv.URL, Channel: "#reports"})
	require.NoError(t, n.Send(context.Background(), failedEvent()))

	var msg SlackMessage
	require.NoError(t, json.Unmarshal(body(rec), &msg))
	assert.Equal(t, "#reports", msg.Channel)
	assert.Contains(t, msg.Text, "Failed")
	require.Len(t, msg.Attachments, 1)
	assert.Equal(t, "danger", msg.Attachments[0].Color)
}

func TestSlackNotifier_Errors(t *testing.T) {
	err := NewSlackNotifier(SlackConfig{}).Send(context.Background(), failedEvent())
	assert.ErrorContains(t, err, "Slack webhook URL is not configured")

	rec := &recorder{}
	srv := rec.server(t, http.StatusOK, "invalid_payload")
	err = NewSlackNotifier(SlackConfig{WebhookURL: srv.URL}).Send(context.Background(), failedEvent())
	assert.ErrorContains(t, err, "invalid_payload")
}

func TestSlackNotifier_BuildMessage(t *testing.T) {
	n := NewSlackNotifier(SlackConfig{})

	done := n.buildMessage(completedEvent())
	assert.Contains(t, done.Text, "Completed")
	assert.Equal(t, "good", done.Attachments[0].Color)
	fields := map[string]string{}
	for _, f := range done.Attachments[0].Fields {
		fields[f.Title] = f.Value
	}
	assert.Equal(t, "2.50s", fields["Duration"])
	assert.Equal(t, "exports/a.html\nexports/a.pdf", fields["Files"])
	assert.NotContains(t, fields, "Error")

	failed := n.buildMessage(failedEvent())
	last := failed.Attachments[0].Fields[len(failed.Attachments[0].Fields)-1]
	assert.Equal(t, "Error", last.Title)
	assert.Equal(t, "html: disk full\npdf: chrome not found", last.Value)
}

func TestFeishuNotifier_Send(t *testing.T) {
	rec := &recorder{}
	srv := rec.server(t, http.StatusOK, `{"code":0,"msg":"success"}`)

	n := NewFeishuNotifier(FeishuConfig{WebhookURL: srv.URL, Secret: "s"})
	n.now = func() time.Time { return started }
	require.NoError(t, n.Send(context.Background(), completedEvent()))

	var msg FeishuMessage
	require.NoError(t, json.Unmarshal(body(rec), &msg))
	assert.Equal(t, "interactive", msg.MsgType)
	assert.Equal(t, "1751349600", msg.Timestamp)
	assert.Equal(t, feishuSign("1751349600", "s"), msg.Sign)
	assert.Equal(t, "green", msg.Card.Header.Template)
}

func TestFeishuNotifier_Errors(t *testing.T) {
	err := NewFeishuNotifier(FeishuConfig{}).Send(context.Background(), failedEvent())
	assert.ErrorContains(t, err, "Feishu webhook URL is not configured")

	rec := &recorder{}
	srv := rec.server(t, http.StatusOK, `{"code":19021,"msg":"sign match fail"}`)
	err = NewFeishuNotifier(FeishuConfig{WebhookURL: srv.URL}).Send(context.Background(), failedEvent())
	assert.ErrorContains(t, err, "code=19021")
	assert.NotContains(t, string(body(rec)), `"sign"`)
}

func TestFeishuNotifier_BuildMessage(t *testing.T) {
	msg := NewFeishuNotifier(FeishuConfig{}).buildMessage(failedEvent())
	assert.Equal(t, "red", msg.Card.Header.Template)
	assert.Contains(t, msg.Card.Header.Title.Content, "失败")

	var hasRule bool
	for _, el := range msg.Card.Elements {
		if el.Tag == "hr" {
			hasRule = true
		}
	}
	assert.True(t, hasRule)
	assert.Equal(t, "note", msg.Card.Elements[len(msg.Card.Elements)-1].Tag)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))

	// each CJK rune is three bytes; a cut at byte 7 lands inside the third
	cjk := truncate("导出失败：浏览器未找到", 10)
	assert.True(t, utf8.ValidString(cjk))
	assert.Equal(t, "导出...", cjk)
	assert.LessOrEqual(t, len(cjk), 10)
}

func TestSlackNotifier_CJKErrorStaysValid(t *testing.T) {
	event := failedEvent()
	event.Failures = map[string]string{"pdf": strings.Repeat("浏览器启动失败", 40)}

	msg := NewSlackNotifier(SlackConfig{}).buildMessage(event)
	fields := msg.Attachments[0].Fields
	errText := fields[len(fields)-1].Value
	assert.True(t, utf8.ValidString(errText))
	assert.LessOrEqual(t, len(errText), 500)
	assert.True(t, strings.HasSuffix(errText, "..."))
}

func calls(r *recorder) int {
	_, _, n := r.last()
	return n
}

func body(r *recorder) []byte {
	b, _, _ := r.last()
	return b
}

func header(r *recorder) http.Header {
	_, h, _ := r.last()
	return h
}
