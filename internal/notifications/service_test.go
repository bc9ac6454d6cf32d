package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"shelf/internal/config"
	"shelf/internal/notifications"
)

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = ""
	svc := notifications.NewService(&cfg)
	if err := svc.NotifyPassStarted(context.Background(), "manual", 3); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

type captured struct {
	title    string
	tags     string
	priority string
	body     string
}

func captureServer(t *testing.T, into *captured) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("unexpected method: %s", r.Method)
		}
		into.title = r.Header.Get("Title")
		into.tags = r.Header.Get("Tags")
		into.priority = r.Header.Get("Priority")
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Fatalf("read body: %v", err)
		}
		into.body = string(body)
		_ = r.Body.Close()
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)
	return server
}

func enabledConfig(url string) config.Config {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = url
	cfg.Notifications.RequestTimeout = 5
	cfg.Notifications.Passes = true
	cfg.Notifications.Files = true
	cfg.Notifications.Errors = true
	return cfg
}

func TestNtfyServiceFormatsPayloads(t *testing.T) {
	tests := []struct {
		name           string
		publish        func(notifications.Service) error
		expectTitle    string
		expectMessage  string
		expectTags     string
		expectPriority string
	}{
		{
			name: "pass started",
			publish: func(svc notifications.Service) error {
				return svc.NotifyPassStarted(context.Background(), "scheduled", 12)
			},
			expectTitle:   "Shelf - Pass Started",
			expectMessage: "Organizing 12 files (scheduled)",
			expectTags:    "shelf,pass,started",
		},
		{
			name: "pass completed clean",
			publish: func(svc notifications.Service) error {
				return svc.NotifyPassCompleted(context.Background(), "manual", 4, 1, 0, 0, 3*time.Second)
			},
			expectTitle:   "Shelf - Pass Complete",
			expectMessage: "Pass complete in 3s: 4 moved, 1 duplicates, 0 skipped, 0 failed",
			expectTags:    "shelf,pass,completed",
		},
		{
			name: "pass completed with failures",
			publish: func(svc notifications.Service) error {
				return svc.NotifyPassCompleted(context.Background(), "manual", 2, 0, 1, 1, 0)
			},
			expectTitle:   "Shelf - Pass Complete (with errors)",
			expectMessage: "Pass complete in 0s: 2 moved, 0 duplicates, 1 skipped, 1 failed",
			expectTags:    "shelf,pass,completed",
		},
		{
			name: "file organized",
			publish: func(svc notifications.Service) error {
				return svc.NotifyFileOrganized(context.Background(), "/watched/report.pdf", "Documents")
			},
			expectTitle:   "Shelf - File Organized",
			expectMessage: "report.pdf -> Documents",
			expectTags:    "shelf,file,organized",
		},
		{
			name: "duplicate",
			publish: func(svc notifications.Service) error {
				return svc.NotifyDuplicate(context.Background(), "/watched/copy.jpg", "/watched/Images/a.jpg")
			},
			expectTitle:   "Shelf - Duplicate",
			expectMessage: "Duplicate content: copy.jpg\nAlready stored as: /watched/Images/a.jpg",
			expectTags:    "shelf,duplicate",
		},
		{
			name: "error",
			publish: func(svc notifications.Service) error {
				return svc.NotifyError(context.Background(), errors.New("disk full"), "organize")
			},
			expectTitle:    "Shelf - Error",
			expectMessage:  "Error with organize: disk full",
			expectTags:     "shelf,error,alert",
			expectPriority: "high",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var got captured
			server := captureServer(t, &got)
			cfg := enabledConfig(server.URL)

			svc := notifications.NewService(&cfg)
			if err := tc.publish(svc); err != nil {
				t.Fatalf("notification returned error: %v", err)
			}

			if got.title != tc.expectTitle {
				t.Fatalf("expected title %q, got %q", tc.expectTitle, got.title)
			}
			if got.body != tc.expectMessage {
				t.Fatalf("expected message %q, got %q", tc.expectMessage, got.body)
			}
			if got.tags != tc.expectTags {
				t.Fatalf("expected tags %q, got %q", tc.expectTags, got.tags)
			}
			if got.priority != tc.expectPriority {
				t.Fatalf("expected priority %q, got %q", tc.expectPriority, got.priority)
			}
		})
	}
}

func TestNtfyServiceHonorsEventGates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("unexpected call for gated event: %s", r.URL.String())
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	cfg.Notifications.Passes = false
	cfg.Notifications.Files = false
	cfg.Notifications.Errors = false

	svc := notifications.NewService(&cfg)
	ctx := context.Background()
	if err := svc.NotifyPassStarted(ctx, "manual", 1); err != nil {
		t.Fatalf("gated pass event errored: %v", err)
	}
	if err := svc.NotifyFileOrganized(ctx, "a.txt", "Documents"); err != nil {
		t.Fatalf("gated file event errored: %v", err)
	}
	if err := svc.NotifyError(ctx, errors.New("x"), "organize"); err != nil {
		t.Fatalf("gated error event errored: %v", err)
	}
}
