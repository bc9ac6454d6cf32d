package schedule_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"shelf/internal/logging"
	"shelf/internal/schedule"
	"shelf/internal/testsupport"
)

func startScheduler(t *testing.T, s *schedule.Scheduler) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = s.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
}

func waitForFire(t *testing.T, fired <-chan schedule.Entry, within time.Duration) schedule.Entry {
	t.Helper()
	select {
	case entry := <-fired:
		return entry
	case <-time.After(within):
		t.Fatal("schedule did not fire in time")
		return schedule.Entry{}
	}
}

func TestSchedulerFiresOneShotAndRemovesIt(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	fired := make(chan schedule.Entry, 4)
	s := schedule.New(st, logging.NewNop(), func(e schedule.Entry) { fired <- e })
	startScheduler(t, s)

	ctx := context.Background()
	entry, err := schedule.NewOnce(time.Now().Add(50*time.Millisecond), time.Now())
	if err != nil {
		t.Fatalf("NewOnce: %v", err)
	}
	if err := s.Add(ctx, entry); err != nil {
		t.Fatalf("Add: %v", err)
	}

	got := waitForFire(t, fired, 2*time.Second)
	if got.ID != entry.ID {
		t.Fatalf("fired entry %s, want %s", got.ID, entry.ID)
	}

	// One-shot entries disappear from the timetable after firing.
	deadline := time.Now().Add(2 * time.Second)
	for {
		entries, err := s.List(ctx)
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(entries) == 0 {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("one-shot entry still present: %+v", entries)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestSchedulerReschedulesRecurringEntry(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	fired := make(chan schedule.Entry, 4)
	s := schedule.New(st, logging.NewNop(), func(e schedule.Entry) { fired <- e })
	startScheduler(t, s)

	ctx := context.Background()
	entry := schedule.Entry{
		ID:        uuid.NewString(),
		Cadence:   schedule.CadenceDaily,
		TimeOfDay: "03:00",
		NextFire:  time.Now().Add(50 * time.Millisecond),
	}
	if err := s.Add(ctx, entry); err != nil {
		t.Fatalf("Add: %v", err)
	}

	waitForFire(t, fired, 2*time.Second)

	deadline := time.Now().Add(2 * time.Second)
	for {
		entries, err := s.List(ctx)
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(entries) == 1 && entries[0].NextFire.After(time.Now()) {
			if entries[0].Cadence != schedule.CadenceDaily {
				t.Fatalf("cadence changed: %+v", entries[0])
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("recurring entry not rescheduled: %+v", entries)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestSchedulerRemoveStopsFiring(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	fired := make(chan schedule.Entry, 4)
	s := schedule.New(st, logging.NewNop(), func(e schedule.Entry) { fired <- e })
	startScheduler(t, s)

	ctx := context.Background()
	entry, err := schedule.NewOnce(time.Now().Add(200*time.Millisecond), time.Now())
	if err != nil {
		t.Fatalf("NewOnce: %v", err)
	}
	if err := s.Add(ctx, entry); err != nil {
		t.Fatalf("Add: %v", err)
	}

	existed, err := s.Remove(ctx, entry.ID)
	if err != nil || !existed {
		t.Fatalf("Remove: existed=%v err=%v", existed, err)
	}
	if existed, err := s.Remove(ctx, entry.ID); err != nil || existed {
		t.Fatalf("second Remove: existed=%v err=%v", existed, err)
	}

	select {
	case got := <-fired:
		t.Fatalf("removed entry fired: %+v", got)
	case <-time.After(400 * time.Millisecond):
	}
}

func TestSchedulerLoadsPersistedTimetable(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	// Persist through one scheduler, then start a fresh one over the same
	// store, as a daemon restart would.
	seed := schedule.New(st, logging.NewNop(), func(schedule.Entry) {})
	entry, err := schedule.NewOnce(time.Now().Add(60*time.Millisecond), time.Now())
	if err != nil {
		t.Fatalf("NewOnce: %v", err)
	}
	if err := seed.Add(ctx, entry); err != nil {
		t.Fatalf("Add: %v", err)
	}

	fired := make(chan schedule.Entry, 1)
	s := schedule.New(st, logging.NewNop(), func(e schedule.Entry) { fired <- e })
	startScheduler(t, s)

	got := waitForFire(t, fired, 2*time.Second)
	if got.ID != entry.ID {
		t.Fatalf("fired entry %s, want %s", got.ID, entry.ID)
	}
}
