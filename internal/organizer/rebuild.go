package organizer

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"

	"shelf/internal/fingerprint"
	"shelf/internal/logging"
)

// RebuildIndex discards the digest index and repopulates it from the files
// already sorted into category folders. It runs on the serialized event
// loop like any other pass, so no organize work interleaves with it.
func (e *Engine) RebuildIndex(ctx context.Context) (int, error) {
	done := make(chan passResult, 1)
	select {
	case e.events <- event{rebuild: true, done: done}:
	case <-ctx.Done():
		return 0, ctx.Err()
	}
	select {
	case res := <-done:
		return res.indexed, res.err
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// runRebuild walks every category folder under the watched root, digesting
// each file and registering the first occurrence of each digest as
// canonical. The duplicates folder is excluded: its contents are copies by
// definition and must never become canonical.
func (e *Engine) runRebuild(ctx context.Context) (int, error) {
	if err := e.store.ClearDigests(ctx); err != nil {
		return 0, err
	}

	root := e.cfg.Paths.WatchedRoot
	duplicates := filepath.Join(root, e.cfg.Organizer.DuplicatesDir)
	indexed := 0

	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			// A folder that vanished mid-walk is skipped, not fatal.
			if path == root {
				return err
			}
			return nil
		}
		if entry.IsDir() {
			if path == duplicates {
				return filepath.SkipDir
			}
			if strings.HasPrefix(entry.Name(), ".") && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		// Top-level files are unorganized candidates, not canonical copies.
		if filepath.Dir(path) == root {
			return nil
		}
		if !entry.Type().IsRegular() || strings.HasPrefix(entry.Name(), ".") {
			return nil
		}

		digest, err := fingerprint.Digest(path)
		if err != nil {
			e.logger.Warn("rebuild could not digest file",
				logging.String(logging.FieldPath, path), logging.Error(err))
			return nil
		}
		if _, found, err := e.store.LookupDigest(ctx, digest); err != nil {
			return err
		} else if found {
			// First occurrence in walk order stays canonical.
			return nil
		}
		if err := e.store.RegisterDigest(ctx, digest, path); err != nil {
			return err
		}
		indexed++
		return nil
	})
	if err != nil {
		return indexed, err
	}

	e.logger.Info("digest index rebuilt", logging.Int("indexed", indexed))
	return indexed, nil
}
