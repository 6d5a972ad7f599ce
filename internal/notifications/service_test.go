package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"condish/internal/config"
	"condish/internal/notifications"
)

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = ""
	svc := notifications.NewService(&cfg)
	if err := svc.Publish(context.Background(), notifications.EventTest, nil); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

type captured struct {
	title, body, tags, priority string
}

func newCaptureServer(t *testing.T) (*httptest.Server, *[]captured) {
	t.Helper()
	var got []captured
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		got = append(got, captured{
			title:    r.Header.Get("Title"),
			body:     string(body),
			tags:     r.Header.Get("Tags"),
			priority: r.Header.Get("Priority"),
		})
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)
	return srv, &got
}

func TestNtfyServiceFormatsPayloads(t *testing.T) {
	tests := []struct {
		name           string
		event          notifications.Event
		payload        notifications.Payload
		expectTitle    string
		expectBody     string
		expectTags     string
		expectPriority string
	}{
		{
			name:        "inspection completed",
			event:       notifications.EventInspectionCompleted,
			payload:     notifications.Payload{"rooms": 5, "findings": 3},
			expectTitle: "condish - Inspection Complete",
			expectBody:  "🏠 Inspection complete: 5 rooms, 3 findings",
			expectTags:  "condish,inspection,completed",
		},
		{
			name:  "approximate settlement",
			event: notifications.EventSettlementReady,
			payload: notifications.Payload{
				"kind": "approximate", "deposit": "$1,000.00", "deductions": "$300.00", "return": "$700.00",
			},
			expectTitle:    "condish - Settlement Ready (approximate)",
			expectBody:     "💰 Deposit return $700.00 of $1,000.00 (deductions $300.00)",
			expectTags:     "condish,settlement,approximate",
			expectPriority: "high",
		},
		{
			name:           "error",
			event:          notifications.EventError,
			payload:        notifications.Payload{"error": errors.New("analyzer down"), "context": "scan kitchen"},
			expectTitle:    "condish - Error",
			expectBody:     "❌ Error with scan kitchen: analyzer down",
			expectTags:     "condish,error,alert",
			expectPriority: "high",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv, got := newCaptureServer(t)
			cfg := config.Default()
			cfg.Notifications.NtfyTopic = srv.URL
			svc := notifications.NewService(&cfg)
			if err := svc.Publish(context.Background(), tc.event, tc.payload); err != nil {
				t.Fatalf("Publish: %v", err)
			}
			if len(*got) != 1 {
				t.Fatalf("expected one request, got %d", len(*got))
			}
			req := (*got)[0]
			if req.title != tc.expectTitle || req.body != tc.expectBody || req.tags != tc.expectTags || req.priority != tc.expectPriority {
				t.Fatalf("unexpected request %+v", req)
			}
		})
	}
}

func TestNtfyServiceHonoursToggles(t *testing.T) {
	srv, got := newCaptureServer(t)
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = srv.URL
	cfg.Notifications.Errors = false
	svc := notifications.NewService(&cfg)
	if err := svc.Publish(context.Background(), notifications.EventError, notifications.Payload{"error": errors.New("x")}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if len(*got) != 0 {
		t.Fatalf("expected disabled event to be dropped, got %d requests", len(*got))
	}
}

func TestNtfyServiceReportsHTTPErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "topic missing", http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = srv.URL
	if err := notifications.NewService(&cfg).Publish(context.Background(), notifications.EventTest, nil); err == nil {
		t.Fatal("expected error for 404 response")
	}
}
