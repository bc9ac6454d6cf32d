package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"shelf/internal/config"
)

const userAgent = "Shelf-Go/0.1.0"

// Service defines the notification surface exposed to the organizer.
type Service interface {
	NotifyPassStarted(ctx context.Context, trigger string, count int) error
	NotifyPassCompleted(ctx context.Context, trigger string, moved, duplicates, skipped, failed int, duration time.Duration) error
	NotifyFileOrganized(ctx context.Context, path, category string) error
	NotifyDuplicate(ctx context.Context, path, canonical string) error
	NotifyError(ctx context.Context, err error, context string) error
	TestNotification(ctx context.Context) error
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

	client := &http.Client{Timeout: timeout}
	return &ntfyService{
		endpoint: topic,
		client:   client,
		passes:   cfg.Notifications.Passes,
		files:    cfg.Notifications.Files,
		errors:   cfg.Notifications.Errors,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
	passes   bool
	files    bool
	errors   bool
}

func (n *ntfyService) NotifyPassStarted(ctx context.Context, trigger string, count int) error {
	if !n.passes {
		return nil
	}
	trigger = strings.TrimSpace(trigger)
	if trigger == "" {
		trigger = "manual"
	}
	data := payload{
		title:   "Shelf - Pass Started",
		message: fmt.Sprintf("Organizing %d files (%s)", count, trigger),
		tags:    []string{"shelf", "pass", "started"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyPassCompleted(ctx context.Context, trigger string, moved, duplicates, skipped, failed int, duration time.Duration) error {
	if !n.passes {
		return nil
	}
	duration = duration.Round(time.Second)
	if duration < 0 {
		duration = 0
	}
	durationText := duration.String()
	if duration == 0 {
		durationText = "0s"
	}

	var title string
	if failed == 0 {
		title = "Shelf - Pass Complete"
	} else {
		title = "Shelf - Pass Complete (with errors)"
	}
	message := fmt.Sprintf("Pass complete in %s: %d moved, %d duplicates, %d skipped, %d failed",
		durationText, moved, duplicates, skipped, failed)

	data := payload{
		title:   title,
		message: message,
		tags:    []string{"shelf", "pass", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyFileOrganized(ctx context.Context, path, category string) error {
	if !n.files {
		return nil
	}
	name := filepath.Base(strings.TrimSpace(path))
	category = strings.TrimSpace(category)
	data := payload{
		title:   "Shelf - File Organized",
		message: fmt.Sprintf("%s -> %s", name, category),
		tags:    []string{"shelf", "file", "organized"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyDuplicate(ctx context.Context, path, canonical string) error {
	if !n.files {
		return nil
	}
	name := filepath.Base(strings.TrimSpace(path))
	message := fmt.Sprintf("Duplicate content: %s", name)
	if canonical = strings.TrimSpace(canonical); canonical != "" {
		message = fmt.Sprintf("%s\nAlready stored as: %s", message, canonical)
	}
	data := payload{
		title:   "Shelf - Duplicate",
		message: message,
		tags:    []string{"shelf", "duplicate"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	if !n.errors {
		return nil
	}
	var builder strings.Builder
	builder.WriteString("Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" with ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	data := payload{
		title:    "Shelf - Error",
		message:  builder.String(),
		tags:     []string{"shelf", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Shelf - Test",
		message:  "Notification system test",
		tags:     []string{"shelf", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
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

func (noopService) NotifyPassStarted(context.Context, string, int) error { return nil }
func (noopService) NotifyPassCompleted(context.Context, string, int, int, int, int, time.Duration) error {
	return nil
}
func (noopService) NotifyFileOrganized(context.Context, string, string) error { return nil }
func (noopService) NotifyDuplicate(context.Context, string, string) error     { return nil }
func (noopService) NotifyError(context.Context, error, string) error          { return nil }
func (noopService) TestNotification(context.Context) error                    { return nil }
