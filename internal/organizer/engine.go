package organizer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"shelf/internal/classify"
	"shelf/internal/config"
	"shelf/internal/fileutil"
	"shelf/internal/fingerprint"
	"shelf/internal/logging"
	"shelf/internal/notifications"
	"shelf/internal/outcome"
	"shelf/internal/rules"
	"shelf/internal/store"
)

// Trigger names the source of an organize event.
type Trigger string

const (
	TriggerManual    Trigger = "manual"
	TriggerWatcher   Trigger = "watcher"
	TriggerScheduled Trigger = "scheduled"
)

// PassSummary aggregates the results of one organization pass.
type PassSummary struct {
	Trigger    Trigger
	Started    time.Time
	Duration   time.Duration
	Moved      int
	Duplicates int
	Skipped    int
	Failed     int
}

// Total returns the number of files the pass considered.
func (s PassSummary) Total() int {
	return s.Moved + s.Duplicates + s.Skipped + s.Failed
}

type passResult struct {
	summary PassSummary
	indexed int
	err     error
}

type event struct {
	trigger    Trigger
	path       string
	scheduleID string
	rebuild    bool
	done       chan passResult
}

// Engine serializes all organization work onto one event loop: manual
// passes, scheduler fires, and settled watcher files arrive on a single
// queue and are processed strictly in order. The classifier's digest index
// is therefore single-writer by construction.
type Engine struct {
	cfg        *config.Config
	store      *store.Store
	classifier *classify.Classifier
	notifier   notifications.Service
	logger     *slog.Logger
	events     chan event

	mu       sync.Mutex
	lastPass *PassSummary
}

// New builds the engine around an already-constructed classifier.
func New(cfg *config.Config, st *store.Store, classifier *classify.Classifier, notifier notifications.Service, logger *slog.Logger) *Engine {
	depth := cfg.Organizer.QueueDepth
	if depth <= 0 {
		depth = 64
	}
	if notifier == nil {
		notifier = notifications.NewService(cfg)
	}
	return &Engine{
		cfg:        cfg,
		store:      st,
		classifier: classifier,
		notifier:   notifier,
		logger:     logging.NewComponentLogger(logger, "organizer"),
		events:     make(chan event, depth),
	}
}

// Organize enqueues a manual pass and waits for its summary. If a pass is
// already in flight the new one queues behind it rather than interleaving.
func (e *Engine) Organize(ctx context.Context) (PassSummary, error) {
	done := make(chan passResult, 1)
	select {
	case e.events <- event{trigger: TriggerManual, done: done}:
	case <-ctx.Done():
		return PassSummary{}, ctx.Err()
	}
	select {
	case res := <-done:
		return res.summary, res.err
	case <-ctx.Done():
		return PassSummary{}, ctx.Err()
	}
}

// FileReady enqueues a single settled file reported by the watcher.
func (e *Engine) FileReady(ctx context.Context, path string) error {
	select {
	case e.events <- event{trigger: TriggerWatcher, path: path}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ScheduledPass enqueues a full pass on behalf of a schedule entry. A full
// queue drops the fire; the next scheduled occurrence retries.
func (e *Engine) ScheduledPass(scheduleID string) {
	select {
	case e.events <- event{trigger: TriggerScheduled, scheduleID: scheduleID}:
	default:
		e.logger.Warn("event queue full, dropping scheduled pass",
			logging.String(logging.FieldScheduleID, scheduleID))
	}
}

// ReloadRules swaps the classifier's ruleset. Queued events classified
// after the swap see the new rules.
func (e *Engine) ReloadRules(list []rules.Rule) error {
	return e.classifier.ReloadRules(list)
}

// LastPass returns the most recent pass summary, if any pass has run.
func (e *Engine) LastPass() (PassSummary, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.lastPass == nil {
		return PassSummary{}, false
	}
	return *e.lastPass, true
}

// QueueDepth reports how many events are waiting.
func (e *Engine) QueueDepth() int {
	return len(e.events)
}

// Run consumes the event queue until ctx is cancelled or the watched root
// vanishes. A vanished root is unrecoverable: the error propagates and the
// daemon halts rather than organizing into a void.
func (e *Engine) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-e.events:
			if err := e.dispatch(ctx, ev); err != nil {
				return err
			}
		}
	}
}

func (e *Engine) dispatch(ctx context.Context, ev event) error {
	switch {
	case ev.rebuild:
		indexed, err := e.runRebuild(ctx)
		if ev.done != nil {
			ev.done <- passResult{indexed: indexed, err: err}
		}
		return nil
	case ev.trigger == TriggerWatcher:
		if err := e.processSettledFile(ctx, ev.path); err != nil {
			return err
		}
		return nil
	default:
		summary, err := e.runPass(ctx, ev)
		if ev.done != nil {
			ev.done <- passResult{summary: summary, err: err}
		}
		if err != nil && e.rootVanished(err) {
			return err
		}
		return nil
	}
}

func (e *Engine) rootVanished(err error) bool {
	if !errors.Is(err, fs.ErrNotExist) {
		return false
	}
	_, statErr := os.Stat(e.cfg.Paths.WatchedRoot)
	return statErr != nil
}

// runPass lists the top level of the watched root, fingerprints candidates
// in parallel, then decides and moves each file sequentially in listing
// order. The parallel phase touches only file contents; all index reads and
// writes happen in the sequential phase.
func (e *Engine) runPass(ctx context.Context, ev event) (PassSummary, error) {
	summary := PassSummary{Trigger: ev.trigger, Started: time.Now()}

	candidates, err := e.listCandidates()
	if err != nil {
		if e.rootVanished(err) {
			e.logger.Error("watched root vanished", logging.Error(err),
				logging.String(logging.FieldPath, e.cfg.Paths.WatchedRoot))
			_ = e.notifier.NotifyError(ctx, err, "organize pass")
		}
		return summary, err
	}

	attrs := []logging.Attr{
		logging.String(logging.FieldTrigger, string(ev.trigger)),
		logging.Int("candidates", len(candidates)),
	}
	if ev.scheduleID != "" {
		attrs = append(attrs, logging.String(logging.FieldScheduleID, ev.scheduleID))
	}
	e.logger.Info("pass started", logging.Args(attrs...)...)
	_ = e.notifier.NotifyPassStarted(ctx, string(ev.trigger), len(candidates))

	records := make([]classify.FileRecord, 0, len(candidates))
	for _, path := range candidates {
		rec, err := classify.NewFileRecord(path)
		if err != nil {
			// Listed but gone by now; the next pass reconciles.
			e.logger.Debug("candidate vanished before processing",
				logging.String(logging.FieldPath, path))
			continue
		}
		records = append(records, rec)
	}

	digests, digestErrs := e.fingerprintAll(ctx, records)

	for i, rec := range records {
		if ctx.Err() != nil {
			return summary, ctx.Err()
		}
		result := e.processRecord(ctx, rec, digests[i], digestErrs[i])
		summary.tally(result.Action)
	}

	summary.Duration = time.Since(summary.Started)
	e.mu.Lock()
	snapshot := summary
	e.lastPass = &snapshot
	e.mu.Unlock()

	e.logger.Info("pass completed",
		logging.String(logging.FieldTrigger, string(ev.trigger)),
		logging.Int("moved", summary.Moved),
		logging.Int("duplicates", summary.Duplicates),
		logging.Int("skipped", summary.Skipped),
		logging.Int("failed", summary.Failed),
		logging.Duration("duration", summary.Duration))
	_ = e.notifier.NotifyPassCompleted(ctx, string(ev.trigger),
		summary.Moved, summary.Duplicates, summary.Skipped, summary.Failed, summary.Duration)

	return summary, nil
}

func (s *PassSummary) tally(action outcome.Action) {
	switch action {
	case outcome.ActionMoved:
		s.Moved++
	case outcome.ActionDuplicate:
		s.Duplicates++
	case outcome.ActionSkipped:
		s.Skipped++
	case outcome.ActionFailed:
		s.Failed++
	}
}

// listCandidates returns the regular, non-hidden files at the top level of
// the watched root in directory order. Category folders and everything
// inside them are never candidates.
func (e *Engine) listCandidates() ([]string, error) {
	entries, err := os.ReadDir(e.cfg.Paths.WatchedRoot)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, entry := range entries {
		if entry.IsDir() || !entry.Type().IsRegular() {
			continue
		}
		if strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		out = append(out, filepath.Join(e.cfg.Paths.WatchedRoot, entry.Name()))
	}
	return out, nil
}

// fingerprintAll computes content digests for all records with bounded
// parallelism. Per-file failures land in the error slice; the group itself
// never fails, so one unreadable file cannot abort the pass.
func (e *Engine) fingerprintAll(ctx context.Context, records []classify.FileRecord) ([]string, []error) {
	digests := make([]string, len(records))
	errs := make([]error, len(records))

	workers := e.cfg.Organizer.FingerprintWorkers
	if workers <= 0 {
		workers = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, rec := range records {
		i, rec := i, rec
		g.Go(func() error {
			if gctx.Err() != nil {
				errs[i] = gctx.Err()
				return nil
			}
			digests[i], errs[i] = fingerprint.Digest(rec.Path)
			return nil
		})
	}
	_ = g.Wait()
	return digests, errs
}

// processSettledFile handles one watcher-reported file outside a full pass.
func (e *Engine) processSettledFile(ctx context.Context, path string) error {
	rec, err := classify.NewFileRecord(path)
	if err != nil {
		if e.rootVanished(err) {
			return err
		}
		if errors.Is(err, fs.ErrNotExist) {
			e.logger.Debug("settled file vanished",
				logging.String(logging.FieldPath, path), logging.Error(err))
			return nil
		}
		// Unreadable for another reason (typically permissions); that is an
		// outcome, not a silent drop.
		e.recordFailure(ctx, path, err)
		return nil
	}
	e.processRecord(ctx, rec, "", nil)
	return nil
}

// processRecord runs one file through decide and move, records the outcome,
// and emits notifications. It never returns an error: every result becomes
// an outcome record.
func (e *Engine) processRecord(ctx context.Context, rec classify.FileRecord, digest string, digestErr error) outcome.Record {
	if digestErr != nil {
		return e.recordFailure(ctx, rec.Path, outcome.Classify(digestErr))
	}

	decision, err := e.classifier.DecideWithDigest(ctx, rec, digest)
	if err != nil {
		return e.recordFailure(ctx, rec.Path, err)
	}

	if err := e.moveTo(rec.Path, decision); err != nil {
		if decision.RegisteredDigest {
			if forgetErr := e.store.ForgetDigest(ctx, decision.Digest); forgetErr != nil {
				e.logger.Warn("digest rollback failed",
					logging.String(logging.FieldDigest, decision.Digest),
					logging.Error(forgetErr))
			}
		}
		return e.recordFailure(ctx, rec.Path, err)
	}

	record := outcome.NewRecord(rec.Path, decision.Action, decision.Destination, "")
	e.appendOutcome(ctx, record)

	switch decision.Action {
	case outcome.ActionMoved:
		e.logger.Info("file organized",
			logging.String(logging.FieldPath, rec.Path),
			logging.String(logging.FieldCategory, decision.Category),
			logging.String(logging.FieldDestination, decision.Destination))
		_ = e.notifier.NotifyFileOrganized(ctx, rec.Path, decision.Category)
	case outcome.ActionDuplicate:
		e.logger.Info("duplicate routed",
			logging.String(logging.FieldPath, rec.Path),
			logging.String(logging.FieldDestination, decision.Destination),
			logging.String("canonical", decision.CanonicalPath))
		_ = e.notifier.NotifyDuplicate(ctx, rec.Path, decision.CanonicalPath)
	}
	return record
}

func (e *Engine) moveTo(src string, decision classify.Decision) error {
	if err := fileutil.EnsureDir(filepath.Dir(decision.Destination)); err != nil {
		return outcome.Classify(err)
	}
	if err := fileutil.MoveFile(src, decision.Destination); err != nil {
		if errors.Is(err, fileutil.ErrDigestMismatch) {
			return outcome.Wrap(outcome.ErrIntegrity, "organizer", "move",
				fmt.Sprintf("%s -> %s", src, decision.Destination), err)
		}
		return outcome.Classify(err)
	}
	return nil
}

func (e *Engine) recordFailure(ctx context.Context, path string, err error) outcome.Record {
	action := outcome.ActionForError(err)
	record := outcome.NewRecord(path, action, "", err.Error())
	e.appendOutcome(ctx, record)

	switch action {
	case outcome.ActionSkipped:
		e.logger.Debug("file skipped",
			logging.String(logging.FieldPath, path), logging.Error(err))
	default:
		e.logger.Error("file processing failed",
			logging.String(logging.FieldPath, path), logging.Error(err))
		_ = e.notifier.NotifyError(ctx, err, filepath.Base(path))
	}
	return record
}

func (e *Engine) appendOutcome(ctx context.Context, record outcome.Record) {
	if err := e.store.AppendOutcome(ctx, record); err != nil {
		e.logger.Warn("outcome not persisted",
			logging.String(logging.FieldPath, record.Path), logging.Error(err))
	}
}
