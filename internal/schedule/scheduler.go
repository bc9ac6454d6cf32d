package schedule

import (
	"container/heap"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"shelf/internal/logging"
	"shelf/internal/store"
)

// parkInterval bounds how long the loop sleeps with an empty heap; a wake
// signal cuts it short.
const parkInterval = time.Hour

// FireFunc receives an entry that has come due.
type FireFunc func(Entry)

// Scheduler fires organization passes at configured times. Entries are
// persisted so the daemon resumes its timetable after a restart.
type Scheduler struct {
	store  *store.Store
	logger *slog.Logger
	fire   FireFunc
	wake   chan struct{}

	mu      sync.Mutex
	entries entryHeap
}

// New builds a scheduler that calls fire for every due entry.
func New(st *store.Store, logger *slog.Logger, fire FireFunc) *Scheduler {
	return &Scheduler{
		store:  st,
		logger: logging.NewComponentLogger(logger, "schedule"),
		fire:   fire,
		wake:   make(chan struct{}, 1),
	}
}

// Add persists a new entry and folds it into the running timetable.
func (s *Scheduler) Add(ctx context.Context, entry Entry) error {
	if entry.ID == "" {
		return fmt.Errorf("schedule entry has no id")
	}
	if entry.NextFire.IsZero() {
		return fmt.Errorf("schedule entry %s has no next fire time", entry.ID)
	}
	if err := s.store.SaveSchedule(ctx, entry.toRow()); err != nil {
		return err
	}

	s.mu.Lock()
	heap.Push(&s.entries, entry)
	s.mu.Unlock()

	s.logger.Info("schedule added",
		logging.String(logging.FieldScheduleID, entry.ID),
		logging.String("cadence", entry.Describe()),
		logging.Time("next_fire", entry.NextFire))
	s.signal()
	return nil
}

// Remove deletes an entry; reports whether it existed.
func (s *Scheduler) Remove(ctx context.Context, id string) (bool, error) {
	existed, err := s.store.DeleteSchedule(ctx, id)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	s.entries.remove(id)
	s.mu.Unlock()

	if existed {
		s.logger.Info("schedule removed", logging.String(logging.FieldScheduleID, id))
		s.signal()
	}
	return existed, nil
}

// List returns all entries ordered by next fire time.
func (s *Scheduler) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.store.ListSchedules(ctx)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, entryFromRow(row))
	}
	return entries, nil
}

// Run loads the persisted timetable and sleeps until the nearest entry is
// due, firing every due entry on each wake. Returns when ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	if err := s.load(ctx); err != nil {
		return err
	}

	for {
		wait := s.nextWait(time.Now())
		timer := time.NewTimer(wait)

		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-s.wake:
			timer.Stop()
		case <-timer.C:
			s.fireDue(ctx, time.Now())
		}
	}
}

func (s *Scheduler) load(ctx context.Context) error {
	rows, err := s.store.ListSchedules(ctx)
	if err != nil {
		return fmt.Errorf("load schedules: %w", err)
	}

	s.mu.Lock()
	s.entries = s.entries[:0]
	for _, row := range rows {
		s.entries = append(s.entries, entryFromRow(row))
	}
	heap.Init(&s.entries)
	count := len(s.entries)
	s.mu.Unlock()

	if count > 0 {
		s.logger.Info("loaded schedule timetable", logging.Int("entries", count))
	}
	return nil
}

func (s *Scheduler) nextWait(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.entries) == 0 {
		return parkInterval
	}
	wait := s.entries[0].NextFire.Sub(now)
	if wait < 0 {
		return 0
	}
	if wait > parkInterval {
		return parkInterval
	}
	return wait
}

// fireDue pops and fires every entry whose time has come. Recurring
// entries are pushed back with their next occurrence; one-shot entries are
// deleted. A missed window (daemon down overnight) fires exactly once on
// the next wake rather than replaying each missed slot.
func (s *Scheduler) fireDue(ctx context.Context, now time.Time) {
	for {
		s.mu.Lock()
		if len(s.entries) == 0 || s.entries[0].NextFire.After(now) {
			s.mu.Unlock()
			return
		}
		entry := heap.Pop(&s.entries).(Entry)
		s.mu.Unlock()

		s.logger.Info("schedule fired",
			logging.String(logging.FieldScheduleID, entry.ID),
			logging.String("cadence", entry.Describe()))
		s.fire(entry)

		if entry.Cadence == CadenceOnce {
			if _, err := s.store.DeleteSchedule(ctx, entry.ID); err != nil {
				s.logger.Warn("delete fired one-shot schedule",
					logging.String(logging.FieldScheduleID, entry.ID), logging.Error(err))
			}
			continue
		}

		entry.NextFire = entry.NextAfter(now)
		if err := s.store.SaveSchedule(ctx, entry.toRow()); err != nil {
			s.logger.Warn("persist rescheduled entry",
				logging.String(logging.FieldScheduleID, entry.ID), logging.Error(err))
		}
		s.mu.Lock()
		heap.Push(&s.entries, entry)
		s.mu.Unlock()
	}
}

func (s *Scheduler) signal() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// entryHeap is a min-heap ordered by NextFire.
type entryHeap []Entry

func (h entryHeap) Len() int            { return len(h) }
func (h entryHeap) Less(i, j int) bool  { return h[i].NextFire.Before(h[j].NextFire) }
func (h entryHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *entryHeap) Push(x any)         { *h = append(*h, x.(Entry)) }
func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	entry := old[n-1]
	*h = old[:n-1]
	return entry
}

func (h *entryHeap) remove(id string) {
	for i, entry := range *h {
		if entry.ID == id {
			heap.Remove(h, i)
			return
		}
	}
}
