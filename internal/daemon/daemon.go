package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/gofrs/flock"
	"golang.org/x/sync/errgroup"

	"shelf/internal/classify"
	"shelf/internal/config"
	"shelf/internal/logging"
	"shelf/internal/notifications"
	"shelf/internal/organizer"
	"shelf/internal/outcome"
	"shelf/internal/rules"
	"shelf/internal/schedule"
	"shelf/internal/store"
	"shelf/internal/watcher"
)

// Daemon coordinates the watcher, scheduler, and organizer and enforces
// single-instance execution via a lock file.
type Daemon struct {
	cfg        *config.Config
	configPath string
	logger     *slog.Logger
	store      *store.Store
	notifier   notifications.Service
	classifier *classify.Classifier
	engine     *organizer.Engine
	scheduler  *schedule.Scheduler
	api        *apiServer

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	cancel  context.CancelFunc
	group   *errgroup.Group
}

// Status represents daemon runtime information.
type Status struct {
	Running       bool
	PID           int
	WatchedRoot   string
	DatabasePath  string
	LockFilePath  string
	QueueDepth    int
	DigestCount   int64
	ScheduleCount int
	LastPass      *organizer.PassSummary
}

// New constructs a daemon with initialized dependencies. configPath is the
// file rules are re-read from on reload; it may be empty when the daemon
// runs on defaults.
func New(cfg *config.Config, configPath string, st *store.Store, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || st == nil {
		return nil, errors.New("daemon requires config and store")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	classifier, err := classify.New(cfg, st, logger)
	if err != nil {
		return nil, err
	}
	notifier := notifications.NewService(cfg)
	engine := organizer.New(cfg, st, classifier, notifier, logger)

	d := &Daemon{
		cfg:        cfg,
		configPath: configPath,
		logger:     logging.NewComponentLogger(logger, "daemon"),
		store:      st,
		notifier:   notifier,
		classifier: classifier,
		engine:     engine,
		lockPath:   filepath.Join(cfg.Paths.DataDir, "shelfd.lock"),
	}
	d.scheduler = schedule.New(st, logger, func(entry schedule.Entry) {
		engine.ScheduledPass(entry.ID)
	})
	d.lock = flock.New(d.lockPath)

	api, err := newAPIServer(cfg, d, logger)
	if err != nil {
		return nil, err
	}
	d.api = api
	return d, nil
}

// Start acquires the daemon lock and launches all background services. The
// watcher is constructed here so a missing watched root fails the start
// rather than a later pass.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	if err := d.cfg.EnsureDirectories(); err != nil {
		return err
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another shelf daemon instance is already running")
	}

	w, err := watcher.New(d.cfg, d.logger)
	if err != nil {
		_ = d.lock.Unlock()
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	group, groupCtx := errgroup.WithContext(runCtx)
	d.cancel = cancel
	d.group = group

	group.Go(func() error { return d.engine.Run(groupCtx) })
	group.Go(func() error { return w.Run(groupCtx) })
	group.Go(func() error { return d.scheduler.Run(groupCtx) })
	group.Go(func() error { return d.forwardSettledFiles(groupCtx, w) })

	if d.api != nil {
		if err := d.api.start(groupCtx); err != nil {
			cancel()
			_ = group.Wait()
			_ = d.lock.Unlock()
			return err
		}
	}

	d.running.Store(true)
	d.logger.Info("shelf daemon started",
		logging.String(logging.FieldPath, d.cfg.Paths.WatchedRoot),
		logging.String("lock", d.lockPath))
	return nil
}

// forwardSettledFiles bridges watcher events onto the organizer queue.
func (d *Daemon) forwardSettledFiles(ctx context.Context, w *watcher.Watcher) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.Events():
			if !ok {
				return nil
			}
			if err := d.engine.FileReady(ctx, ev.Path); err != nil {
				return err
			}
		}
	}
}

// Wait blocks until all background services have stopped. A clean shutdown
// reports nil; an unrecoverable fault (such as a vanished watched root)
// propagates.
func (d *Daemon) Wait() error {
	if d.group == nil {
		return nil
	}
	err := d.group.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Stop stops background processing and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if d.group != nil {
		_ = d.group.Wait()
	}
	if d.api != nil {
		d.api.stop()
	}
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("shelf daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Running reports whether background services are active.
func (d *Daemon) Running() bool {
	return d.running.Load()
}

// Status summarizes the daemon's runtime state.
func (d *Daemon) Status(ctx context.Context) Status {
	status := Status{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		WatchedRoot:  d.cfg.Paths.WatchedRoot,
		DatabasePath: d.cfg.DatabasePath(),
		LockFilePath: d.lockPath,
		QueueDepth:   d.engine.QueueDepth(),
	}
	if count, err := d.store.DigestCount(ctx); err == nil {
		status.DigestCount = count
	}
	if entries, err := d.scheduler.List(ctx); err == nil {
		status.ScheduleCount = len(entries)
	}
	if last, ok := d.engine.LastPass(); ok {
		status.LastPass = &last
	}
	return status
}

// Organize runs a full pass and waits for its summary.
func (d *Daemon) Organize(ctx context.Context) (organizer.PassSummary, error) {
	return d.engine.Organize(ctx)
}

// RebuildIndex repopulates the digest index from organized files.
func (d *Daemon) RebuildIndex(ctx context.Context) (int, error) {
	return d.engine.RebuildIndex(ctx)
}

// ReloadRules re-reads the configuration file and swaps the classification
// rules without restarting. Only the rules section takes effect; other
// settings still require a restart.
func (d *Daemon) ReloadRules() (int, error) {
	fresh, _, _, err := config.Load(d.configPath)
	if err != nil {
		return 0, fmt.Errorf("reload config: %w", err)
	}
	list := make([]rules.Rule, 0, len(fresh.Rules))
	for _, r := range fresh.Rules {
		list = append(list, rules.Rule{Pattern: r.Pattern, Category: r.Category})
	}
	if err := d.engine.ReloadRules(list); err != nil {
		return 0, err
	}
	return len(list), nil
}

// AddSchedule registers a new scheduled pass.
func (d *Daemon) AddSchedule(ctx context.Context, entry schedule.Entry) error {
	return d.scheduler.Add(ctx, entry)
}

// RemoveSchedule deletes a scheduled pass; reports whether it existed.
func (d *Daemon) RemoveSchedule(ctx context.Context, id string) (bool, error) {
	return d.scheduler.Remove(ctx, id)
}

// ListSchedules returns the current timetable.
func (d *Daemon) ListSchedules(ctx context.Context) ([]schedule.Entry, error) {
	return d.scheduler.List(ctx)
}

// Outcomes returns recent processing results, newest first.
func (d *Daemon) Outcomes(ctx context.Context, limit int) ([]outcome.Record, error) {
	return d.store.RecentOutcomes(ctx, limit)
}

// TestNotification sends a test message through the notifier.
func (d *Daemon) TestNotification(ctx context.Context) (bool, string, error) {
	if err := d.notifier.TestNotification(ctx); err != nil {
		return false, err.Error(), err
	}
	return true, "notification sent", nil
}
