// Package notify sends operational notifications about backup outcomes.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Notifier reports backup and restore outcomes to an external channel.
type Notifier interface {
	// NotifySuccess reports a completed operation.
	NotifySuccess(ctx context.Context, title, detail string)

	// NotifyFailure reports a failed operation.
	NotifyFailure(ctx context.Context, title string, opErr error)
}

// SlackNotifier posts to a Slack incoming webhook. Delivery is best-effort:
// a webhook failure is logged and swallowed so a flaky Slack endpoint can
// never fail a backup that already succeeded.
type SlackNotifier struct {
	webhookURL string
	client     *http.Client
	logger     *slog.Logger
}

// NewSlackNotifier creates a Slack notifier for the given webhook URL.
func NewSlackNotifier(webhookURL string, logger *slog.Logger) *SlackNotifier {
	return &SlackNotifier{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

type slackAttachment struct {
	Color string `json:"color"`
	Title string `json:"title"`
	Text  string `json:"text"`
	Ts    int64  `json:"ts"`
}

type slackPayload struct {
	Attachments []slackAttachment `json:"attachments"`
}

// NotifySuccess implements Notifier.NotifySuccess.
func (s *SlackNotifier) NotifySuccess(ctx context.Context, title, detail string) {
	s.post(ctx, slackAttachment{
		Color: "good",
		Title: title,
		Text:  detail,
		Ts:    time.Now().Unix(),
	})
}

// NotifyFailure implements Notifier.NotifyFailure.
func (s *SlackNotifier) NotifyFailure(ctx context.Context, title string, opErr error) {
	s.post(ctx, slackAttachment{
		Color: "danger",
		Title: title,
		Text:  fmt.Sprintf("Error: %v", opErr),
		Ts:    time.Now().Unix(),
	})
}

func (s *SlackNotifier) post(ctx context.Context, attachment slackAttachment) {
	body, err := json.Marshal(slackPayload{Attachments: []slackAttachment{attachment}})
	if err != nil {
		s.logger.Warn("Failed to encode Slack payload", "error", err)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		s.logger.Warn("Failed to build Slack request", "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Warn("Failed to deliver Slack notification", "error", err)
		return
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		s.logger.Warn("Slack webhook rejected notification", "status", resp.StatusCode)
	}
}

// NopNotifier discards all notifications. Used when no webhook is configured.
type NopNotifier struct{}

// NotifySuccess implements Notifier.NotifySuccess.
func (NopNotifier) NotifySuccess(ctx context.Context, title, detail string) {}

// NotifyFailure implements Notifier.NotifyFailure.
func (NopNotifier) NotifyFailure(ctx context.Context, title string, opErr error) {}
