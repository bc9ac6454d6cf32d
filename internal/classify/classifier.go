package classify

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"shelf/internal/config"
	"shelf/internal/fileutil"
	"shelf/internal/fingerprint"
	"shelf/internal/logging"
	"shelf/internal/outcome"
	"shelf/internal/rules"
	"shelf/internal/store"
)

// FileRecord describes a file at decision time.
type FileRecord struct {
	Path       string
	Size       int64
	ModTime    time.Time
	ObservedAt time.Time
}

// NewFileRecord stats path and captures the observation used by the settle
// probe.
func NewFileRecord(path string) (FileRecord, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileRecord{}, err
	}
	if info.IsDir() {
		return FileRecord{}, fmt.Errorf("%s is a directory", path)
	}
	return FileRecord{
		Path:       path,
		Size:       info.Size(),
		ModTime:    info.ModTime(),
		ObservedAt: time.Now(),
	}, nil
}

// Decision is the planned action for one file. The destination is reserved
// in the digest index before the move; RegisteredDigest tells the organizer
// whether a failed move must roll that registration back.
type Decision struct {
	Action           outcome.Action
	Category         string
	Destination      string
	Digest           string
	CanonicalPath    string
	RegisteredDigest bool
}

// Classifier decides the target action for one file by combining the rule
// engine, the content fingerprinter, and the digest index. It must only be
// invoked from the organizer's serialized event loop: index reads and writes
// here assume no concurrent access.
type Classifier struct {
	cfg    *config.Config
	store  *store.Store
	logger *slog.Logger

	ruleset atomic.Pointer[rules.Ruleset]
}

// New builds a classifier with the ruleset taken from config.
func New(cfg *config.Config, st *store.Store, logger *slog.Logger) (*Classifier, error) {
	list := make([]rules.Rule, 0, len(cfg.Rules))
	for _, r := range cfg.Rules {
		list = append(list, rules.Rule{Pattern: r.Pattern, Category: r.Category})
	}
	rs, err := rules.New(list)
	if err != nil {
		return nil, fmt.Errorf("build ruleset: %w", err)
	}

	c := &Classifier{
		cfg:    cfg,
		store:  st,
		logger: logging.NewComponentLogger(logger, "classifier"),
	}
	c.ruleset.Store(rs)
	return c, nil
}

// ReloadRules atomically swaps in a new ruleset snapshot. In-flight
// classifications keep the snapshot they started with.
func (c *Classifier) ReloadRules(list []rules.Rule) error {
	rs, err := rules.New(list)
	if err != nil {
		return err
	}
	c.ruleset.Store(rs)
	c.logger.Info("rules reloaded", logging.Int("rules", rs.Len()))
	return nil
}

// Ruleset returns the current snapshot.
func (c *Classifier) Ruleset() *rules.Ruleset {
	return c.ruleset.Load()
}

// Decide computes the action for rec, fingerprinting the file itself.
func (c *Classifier) Decide(ctx context.Context, rec FileRecord) (Decision, error) {
	return c.DecideWithDigest(ctx, rec, "")
}

// DecideWithDigest is Decide with an optionally precomputed digest, used by
// full passes that fingerprint files in parallel ahead of the sequential
// decide-and-register phase.
func (c *Classifier) DecideWithDigest(ctx context.Context, rec FileRecord, digest string) (Decision, error) {
	if err := c.probeStable(ctx, rec); err != nil {
		return Decision{}, err
	}

	category := c.Ruleset().Classify(rec.Path)

	if digest == "" {
		var err error
		digest, err = fingerprint.Digest(rec.Path)
		if err != nil {
			return Decision{}, outcome.Classify(err)
		}
	}

	canonical, found, err := c.store.LookupDigest(ctx, digest)
	if err != nil {
		return Decision{}, outcome.Wrap(outcome.ErrTransientIO, "classifier", "index lookup", "", err)
	}
	if found && canonical != rec.Path {
		if _, statErr := os.Stat(canonical); statErr == nil {
			dest := fileutil.UniqueDestination(
				filepath.Join(c.cfg.Paths.WatchedRoot, c.cfg.Organizer.DuplicatesDir),
				filepath.Base(rec.Path))
			return Decision{
				Action:        outcome.ActionDuplicate,
				Category:      category,
				Destination:   dest,
				Digest:        digest,
				CanonicalPath: canonical,
			}, nil
		} else if !errors.Is(statErr, fs.ErrNotExist) {
			return Decision{}, outcome.Classify(statErr)
		}
		// Canonical path no longer exists: stale entry, overwrite below.
		c.logger.Debug("stale digest entry overwritten",
			logging.String(logging.FieldDigest, digest),
			logging.String(logging.FieldPath, canonical))
	}

	dest := fileutil.UniqueDestination(
		filepath.Join(c.cfg.Paths.WatchedRoot, category),
		filepath.Base(rec.Path))
	if err := c.store.RegisterDigest(ctx, digest, dest); err != nil {
		return Decision{}, outcome.Wrap(outcome.ErrTransientIO, "classifier", "index register", "", err)
	}
	return Decision{
		Action:           outcome.ActionMoved,
		Category:         category,
		Destination:      dest,
		Digest:           digest,
		RegisteredDigest: true,
	}, nil
}

// probeStable defers files that are still being written: the size must be
// unchanged across two observations separated by the settle poll interval.
// Files whose last observation is already older than the debounce window
// skip the wait.
func (c *Classifier) probeStable(ctx context.Context, rec FileRecord) error {
	info, err := os.Stat(rec.Path)
	if err != nil {
		return outcome.Classify(err)
	}
	if info.Size() != rec.Size {
		return outcome.Wrap(outcome.ErrUnstable, "classifier", "settle probe", rec.Path, nil)
	}
	if time.Since(rec.ObservedAt) >= c.cfg.DebounceWindow() {
		return nil
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(c.cfg.SettlePoll()):
	}

	again, err := os.Stat(rec.Path)
	if err != nil {
		return outcome.Classify(err)
	}
	if again.Size() != info.Size() {
		return outcome.Wrap(outcome.ErrUnstable, "classifier", "settle probe", rec.Path, nil)
	}
	return nil
}
