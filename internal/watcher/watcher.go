package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"shelf/internal/config"
	"shelf/internal/logging"
	"shelf/internal/outcome"
)

// Event announces that a file under the watched root has settled and is
// ready for classification.
type Event struct {
	Path string
}

// Watcher observes the top level of the watched root with fsnotify and
// reduces raw change notifications into one settled event per file.
type Watcher struct {
	cfg     *config.Config
	logger  *slog.Logger
	fsw     *fsnotify.Watcher
	tracker *tracker
	events  chan Event
}

// New validates the watched root and establishes the filesystem watch.
// A missing or non-directory root is a setup fault reported immediately
// rather than discovered mid-run.
func New(cfg *config.Config, logger *slog.Logger) (*Watcher, error) {
	info, err := os.Stat(cfg.Paths.WatchedRoot)
	if err != nil {
		return nil, outcome.Wrap(outcome.ErrTransientIO, "watcher", "stat root",
			fmt.Sprintf("watched root %q is not accessible", cfg.Paths.WatchedRoot), err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watched root %q is not a directory", cfg.Paths.WatchedRoot)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create filesystem watcher: %w", err)
	}
	if err := fsw.Add(cfg.Paths.WatchedRoot); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watch %q: %w", cfg.Paths.WatchedRoot, err)
	}

	depth := cfg.Organizer.QueueDepth
	if depth <= 0 {
		depth = 64
	}

	return &Watcher{
		cfg:     cfg,
		logger:  logging.NewComponentLogger(logger, "watcher"),
		fsw:     fsw,
		tracker: newTracker(cfg.DebounceWindow()),
		events:  make(chan Event, depth),
	}, nil
}

// Events returns the channel of settled-file events. It is closed when Run
// returns.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Run drives the watch loop until the context is cancelled or the watched
// root vanishes. Raw notifications feed the settle tracker; a poll ticker
// sweeps the tracker and emits events for files that stabilized.
func (w *Watcher) Run(ctx context.Context) error {
	defer close(w.events)
	defer func() { _ = w.fsw.Close() }()

	ticker := time.NewTicker(w.cfg.SettlePoll())
	defer ticker.Stop()

	w.logger.Info("watching for file changes",
		logging.String(logging.FieldPath, w.cfg.Paths.WatchedRoot))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fsw.Events:
			if !ok {
				return fmt.Errorf("filesystem watch closed unexpectedly")
			}
			w.handleNotification(event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return fmt.Errorf("filesystem watch closed unexpectedly")
			}
			// Notification errors are logged and survived; the next pass
			// over the root reconciles anything missed.
			w.logger.Warn("filesystem notification error", logging.Error(err))

		case now := <-ticker.C:
			if err := w.checkRoot(); err != nil {
				return err
			}
			w.emitReady(now)
		}
	}
}

// PendingCount reports how many files are currently mid-settle.
func (w *Watcher) PendingCount() int {
	return w.tracker.pendingCount()
}

func (w *Watcher) handleNotification(event fsnotify.Event) {
	if filepath.Dir(event.Name) != w.cfg.Paths.WatchedRoot {
		return
	}
	// Hidden files are never organization candidates; passes skip them too.
	if strings.HasPrefix(filepath.Base(event.Name), ".") {
		return
	}

	switch {
	case event.Op.Has(fsnotify.Remove) || event.Op.Has(fsnotify.Rename):
		// Rename reports the old name; the new name, if still under the
		// root, arrives as a separate Create.
		w.tracker.cancel(event.Name)

	case event.Op.Has(fsnotify.Create) || event.Op.Has(fsnotify.Write):
		info, err := os.Stat(event.Name)
		if err != nil {
			// Short-lived file; a later notification restarts tracking if
			// it comes back.
			return
		}
		if info.IsDir() {
			return
		}
		w.tracker.observe(event.Name, time.Now())
	}
}

func (w *Watcher) checkRoot() error {
	if _, err := os.Stat(w.cfg.Paths.WatchedRoot); err != nil {
		return fmt.Errorf("watched root %q vanished: %w", w.cfg.Paths.WatchedRoot, err)
	}
	return nil
}

func (w *Watcher) emitReady(now time.Time) {
	for _, path := range w.tracker.sweep(now) {
		select {
		case w.events <- Event{Path: path}:
			w.tracker.markEmitted(path)
			w.logger.Debug("file settled", logging.String(logging.FieldPath, path))
		default:
			// Queue is full; the entry stays pending and is retried on the
			// next sweep.
			w.logger.Warn("event queue full, deferring settled file",
				logging.String(logging.FieldPath, path))
			return
		}
	}
}
