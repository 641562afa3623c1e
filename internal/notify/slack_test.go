package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func notifyLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func capturePayload(t *testing.T, handler func(n *SlackNotifier)) slackPayload {
	t.Helper()

	var payload slackPayload
	received := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("webhook called with %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %s", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("failed to decode payload: %v", err)
		}
		received = true
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	handler(NewSlackNotifier(server.URL, notifyLogger()))

	if !received {
		t.Fatal("webhook never called")
	}
	return payload
}

func TestSlackNotifier_Success(t *testing.T) {
	payload := capturePayload(t, func(n *SlackNotifier) {
		n.NotifySuccess(context.Background(), "Full backup completed", "1.2 GB in 42s")
	})

	if len(payload.Attachments) != 1 {
		t.Fatalf("got %d attachments, want 1", len(payload.Attachments))
	}
	a := payload.Attachments[0]
	if a.Color != "good" {
		t.Errorf("color = %s, want good", a.Color)
	}
	if a.Title != "Full backup completed" {
		t.Errorf("title = %s", a.Title)
	}
	if a.Text != "1.2 GB in 42s" {
		t.Errorf("text = %s", a.Text)
	}
	if a.Ts == 0 {
		t.Error("timestamp missing")
	}
}

func TestSlackNotifier_Failure(t *testing.T) {
	payload := capturePayload(t, func(n *SlackNotifier) {
		n.NotifyFailure(context.Background(), "Incremental backup failed", errors.New("mysqldump: exit status 2"))
	})

	a := payload.Attachments[0]
	if a.Color != "danger" {
		t.Errorf("color = %s, want danger", a.Color)
	}
	if a.Text != "Error: mysqldump: exit status 2" {
		t.Errorf("text = %s", a.Text)
	}
}

func TestSlackNotifier_ToleratesWebhookErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	// Must not panic or propagate anything
	n := NewSlackNotifier(server.URL, notifyLogger())
	n.NotifySuccess(context.Background(), "title", "detail")
}

func TestSlackNotifier_ToleratesUnreachableEndpoint(t *testing.T) {
	n := NewSlackNotifier("http://127.0.0.1:1/webhook", notifyLogger())
	n.NotifyFailure(context.Background(), "title", errors.New("boom"))
}
