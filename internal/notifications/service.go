package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"condish/internal/config"
)

const userAgent = "condish/0.1.0"

// Event names a notification-worthy session milestone.
type Event string

const (
	EventInspectionCompleted Event = "inspection_completed"
	EventSettlementReady     Event = "settlement_ready"
	EventDepositFromLease    Event = "deposit_from_lease"
	EventError               Event = "error"
	EventTest                Event = "test"
)

// Payload carries event fields. Keys are event specific.
type Payload map[string]any

// Service defines the notification surface exposed to the workflow manager.
type Service interface {
	Publish(ctx context.Context, event Event, payload Payload) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
		enabled: map[Event]bool{
			EventInspectionCompleted: cfg.Notifications.Inspection,
			EventDepositFromLease:    cfg.Notifications.Inspection,
			EventSettlementReady:     cfg.Notifications.Settlement,
			EventError:               cfg.Notifications.Errors,
			EventTest:                true,
		},
	}
}

type message struct {
	title    string
	body     string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
	enabled  map[Event]bool
}

func (n *ntfyService) Publish(ctx context.Context, event Event, payload Payload) error {
	if n == nil || !n.enabled[event] {
		return nil
	}
	msg, ok := format(event, payload)
	if !ok {
		return nil
	}
	return n.send(ctx, msg)
}

func format(event Event, payload Payload) (message, bool) {
	switch event {
	case EventInspectionCompleted:
		return message{
			title: "condish - Inspection Complete",
			body: fmt.Sprintf("🏠 Inspection complete: %d rooms, %d findings",
				intValue(payload, "rooms"), intValue(payload, "findings")),
			tags: []string{"condish", "inspection", "completed"},
		}, true
	case EventSettlementReady:
		kind := stringValue(payload, "kind")
		title := "condish - Settlement Ready"
		if kind == "approximate" {
			title = "condish - Settlement Ready (approximate)"
		}
		return message{
			title: title,
			body: fmt.Sprintf("💰 Deposit return %s of %s (deductions %s)",
				stringValue(payload, "return"), stringValue(payload, "deposit"), stringValue(payload, "deductions")),
			tags:     []string{"condish", "settlement", kind},
			priority: "high",
		}, true
	case EventDepositFromLease:
		return message{
			title: "condish - Deposit Set From Lease",
			body:  fmt.Sprintf("📄 Deposit %s read from the lease", stringValue(payload, "deposit")),
			tags:  []string{"condish", "lease", "deposit"},
		}, true
	case EventError:
		var b strings.Builder
		b.WriteString("❌ Error")
		if label := stringValue(payload, "context"); label != "" {
			b.WriteString(" with ")
			b.WriteString(label)
		}
		b.WriteString(": ")
		if err, ok := payload["error"].(error); ok && err != nil {
			b.WriteString(strings.TrimSpace(err.Error()))
		} else {
			b.WriteString("unknown")
		}
		return message{
			title:    "condish - Error",
			body:     b.String(),
			tags:     []string{"condish", "error", "alert"},
			priority: "high",
		}, true
	case EventTest:
		return message{
			title:    "condish - Test",
			body:     "🧪 Notification system test",
			tags:     []string{"condish", "test"},
			priority: "low",
		}, true
	default:
		return message{}, false
	}
}

func stringValue(payload Payload, key string) string {
	switch v := payload[key].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

func intValue(payload Payload, key string) int {
	switch v := payload[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

func (n *ntfyService) send(ctx context.Context, data message) error {
	if n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.body))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) Publish(context.Context, Event, Payload) error { return nil }
