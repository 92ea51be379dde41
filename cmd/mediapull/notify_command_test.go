package main

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"mediapull/internal/testsupport"
)

type ntfyRecorder struct {
	mu     sync.Mutex
	titles []string
	bodies []string
}

func (r *ntfyRecorder) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		body, _ := io.ReadAll(req.Body)
		r.mu.Lock()
		r.titles = append(r.titles, req.Header.Get("Title"))
		r.bodies = append(r.bodies, string(body))
		r.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	})
}

func TestRunPublishesCompletion(t *testing.T) {
	rec := &ntfyRecorder{}
	server := httptest.NewServer(rec.handler())
	defer server.Close()

	cfg := stubToolConfig(t)
	cfg.Notifications.NtfyTopic = server.URL
	path := writeTestConfig(t, cfg)

	if out, _, err := runCLI(t, []string{"run", "https://youtu.be/ntfy01"}, path); err != nil {
		t.Fatalf("run: %v\n%s", err, out)
	}
	if len(rec.titles) != 1 || rec.titles[0] != "mediapull - Download Complete" {
		t.Fatalf("unexpected notifications %v", rec.titles)
	}
	if !strings.Contains(rec.bodies[0], "Downloaded: CLI Clip") {
		t.Fatalf("unexpected body %q", rec.bodies[0])
	}
}

func TestRunPublishesFailure(t *testing.T) {
	rec := &ntfyRecorder{}
	server := httptest.NewServer(rec.handler())
	defer server.Close()

	cfg := stubToolConfig(t)
	cfg.Notifications.NtfyTopic = server.URL
	path := writeTestConfig(t, cfg)

	if _, _, err := runCLI(t, []string{"run", "https://youtu.be/ntfy02", "--chapters", "oops"}, path); err == nil {
		t.Fatal("expected run failure")
	}
	if len(rec.titles) != 1 || rec.titles[0] != "mediapull - Error" {
		t.Fatalf("unexpected notifications %v", rec.titles)
	}
	if !strings.Contains(rec.bodies[0], "https://youtu.be/ntfy02") || !strings.Contains(rec.bodies[0], "Invalid chapters JSON") {
		t.Fatalf("unexpected body %q", rec.bodies[0])
	}
}

func TestNotifyTestCommand(t *testing.T) {
	rec := &ntfyRecorder{}
	server := httptest.NewServer(rec.handler())
	defer server.Close()

	isolateHome(t)
	cfg := testsupport.NewConfig(t)
	path := writeTestConfig(t, cfg)
	if _, _, err := runCLI(t, []string{"test-notify"}, path); err == nil || !strings.Contains(err.Error(), "no ntfy topic") {
		t.Fatalf("expected missing topic error, got %v", err)
	}

	cfg.Notifications.NtfyTopic = server.URL
	path = writeTestConfig(t, cfg)
	out, _, err := runCLI(t, []string{"test-notify"}, path)
	if err != nil {
		t.Fatalf("test-notify: %v", err)
	}
	requireContains(t, out, "Test notification sent")
	if len(rec.titles) != 1 || rec.titles[0] != "mediapull - Test" {
		t.Fatalf("unexpected notifications %v", rec.titles)
	}
}
