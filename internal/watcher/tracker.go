package watcher

import (
	"os"
	"time"
)

// pathState follows the settle lifecycle for one observed path:
// Unknown -> Pending -> Stable -> Emitted (entry removed). A path that
// reappears after emission is simply observed again.
type pathState struct {
	lastSize    int64
	lastChange  time.Time
	stablePolls int
}

// tracker owns the per-path settle state machine. It is not safe for
// concurrent use; the watcher run loop is its only caller.
type tracker struct {
	debounce time.Duration
	pending  map[string]*pathState
}

func newTracker(debounce time.Duration) *tracker {
	return &tracker{
		debounce: debounce,
		pending:  make(map[string]*pathState),
	}
}

// observe records a raw change notification for path, resetting its quiet
// timer. A rapid delete+recreate lands here again and restarts the cycle.
func (t *tracker) observe(path string, now time.Time) {
	state, ok := t.pending[path]
	if !ok {
		state = &pathState{lastSize: -1}
		t.pending[path] = state
	}
	state.lastChange = now
	state.stablePolls = 0
}

// markEmitted removes a path after its event was delivered.
func (t *tracker) markEmitted(path string) {
	delete(t.pending, path)
}

// cancel drops a path that disappeared before stabilizing. No event is emitted.
func (t *tracker) cancel(path string) {
	delete(t.pending, path)
}

// sweep evaluates all pending paths and returns those that became stable:
// quiet for at least the debounce window and size unchanged across two
// consecutive polls. Entries stay pending until the caller confirms emission
// with markEmitted, so a full event channel retries on the next tick.
func (t *tracker) sweep(now time.Time) []string {
	var ready []string
	for path, state := range t.pending {
		info, err := os.Stat(path)
		if err != nil {
			// Vanished (or unreadable) before stabilizing: cancelled.
			delete(t.pending, path)
			continue
		}
		if info.IsDir() {
			delete(t.pending, path)
			continue
		}

		size := info.Size()
		if size != state.lastSize {
			state.lastSize = size
			state.lastChange = now
			state.stablePolls = 0
			continue
		}
		state.stablePolls++

		if state.stablePolls >= 2 && now.Sub(state.lastChange) >= t.debounce {
			ready = append(ready, path)
		}
	}
	return ready
}

// pendingCount reports how many paths are mid-settle.
func (t *tracker) pendingCount() int {
	return len(t.pending)
}
