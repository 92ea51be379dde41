package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"mediapull/internal/config"
)

const userAgent = "mediapull/1.0"

// Event identifies a notification milestone.
type Event string

const (
	EventDownloadCompleted Event = "download_completed"
	EventDownloadFailed    Event = "download_failed"
	EventTest              Event = "test"
)

// Payload carries the values a message is rendered from. Known keys are
// title, path, mode, code and message.
type Payload map[string]string

// Service publishes download milestones.
type Service interface {
	Publish(ctx context.Context, event Event, payload Payload) error
}

// NewService builds a notification service backed by ntfy when a topic is
// configured, and a noop implementation otherwise.
func NewService(cfg config.Notifications) Service {
	topic := strings.TrimSpace(cfg.NtfyTopic)
	if topic == "" {
		return noopService{}
	}
	timeout := time.Duration(cfg.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
		enabled: map[Event]bool{
			EventDownloadCompleted: cfg.Completed,
			EventDownloadFailed:    cfg.Errors,
			EventTest:              true,
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
	if !n.enabled[event] {
		return nil
	}
	msg, ok := render(event, payload)
	if !ok {
		return nil
	}
	return n.send(ctx, msg)
}

func render(event Event, payload Payload) (message, bool) {
	get := func(key string) string { return strings.TrimSpace(payload[key]) }
	switch event {
	case EventDownloadCompleted:
		body := "Downloaded: " + firstNonEmpty(get("title"), "video")
		if path := get("path"); path != "" {
			body += "\nFile: " + path
		}
		tags := []string{"mediapull", "download", "completed"}
		if mode := get("mode"); mode != "" {
			tags = append(tags, mode)
		}
		return message{title: "mediapull - Download Complete", body: body, tags: tags}, true
	case EventDownloadFailed:
		body := "Download failed"
		if title := get("title"); title != "" {
			body += ": " + title
		}
		if text := get("message"); text != "" {
			body += "\n" + text
		}
		tags := []string{"mediapull", "error"}
		if code := get("code"); code != "" {
			tags = append(tags, code)
		}
		return message{title: "mediapull - Error", body: body, tags: tags, priority: "high"}, true
	case EventTest:
		return message{title: "mediapull - Test", body: "Notification system test", tags: []string{"mediapull", "test"}, priority: "low"}, true
	default:
		return message{}, false
	}
}

func (n *ntfyService) send(ctx context.Context, msg message) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(msg.body))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if msg.title != "" {
		req.Header.Set("Title", msg.title)
	}
	if len(msg.tags) > 0 {
		req.Header.Set("Tags", strings.Join(msg.tags, ","))
	}
	if msg.priority != "" && msg.priority != "default" {
		req.Header.Set("Priority", msg.priority)
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

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

type noopService struct{}

func (noopService) Publish(context.Context, Event, Payload) error { return nil }
