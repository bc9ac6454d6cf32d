package ipc_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"shelf/internal/daemon"
	"shelf/internal/ipc"
	"shelf/internal/logging"
	"shelf/internal/testsupport"
)

func TestIPCServerClient(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	logger := logging.NewNop()

	d, err := daemon.New(cfg, "", st, logger)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	if err := d.Start(ctx); err != nil {
		t.Fatalf("daemon.Start: %v", err)
	}

	socket := cfg.SocketPath()
	srv, err := ipc.NewServer(ctx, socket, d, logger)
	if err != nil {
		if strings.Contains(err.Error(), "operation not permitted") {
			t.Skipf("skipping IPC server test: %v", err)
		}
		t.Fatalf("ipc.NewServer: %v", err)
	}
	srv.Serve()
	t.Cleanup(srv.Close)

	time.Sleep(50 * time.Millisecond)

	client, err := ipc.Dial(socket)
	if err != nil {
		t.Fatalf("ipc.Dial: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	status, err := client.Status()
	if err != nil {
		t.Fatalf("Status RPC failed: %v", err)
	}
	if !status.Running {
		t.Fatalf("expected running daemon, got %+v", status)
	}
	if status.WatchedRoot != cfg.Paths.WatchedRoot {
		t.Fatalf("watched root %q, want %q", status.WatchedRoot, cfg.Paths.WatchedRoot)
	}

	testsupport.WriteFile(t, cfg.Paths.WatchedRoot, "photo.jpg", []byte("bytes"))
	organize, err := client.Organize()
	if err != nil {
		t.Fatalf("Organize RPC failed: %v", err)
	}
	if organize.Summary.Moved != 1 {
		t.Fatalf("moved %d, want 1", organize.Summary.Moved)
	}
	if !testsupport.FileExists(t, filepath.Join(cfg.Paths.WatchedRoot, "Images", "photo.jpg")) {
		t.Fatal("organize over IPC did not move the file")
	}

	added, err := client.ScheduleAdd(ipc.ScheduleAddRequest{Cadence: "daily", TimeOfDay: "04:30"})
	if err != nil {
		t.Fatalf("ScheduleAdd RPC failed: %v", err)
	}
	if added.Entry.ID == "" || !strings.Contains(added.Entry.Describe, "04:30") {
		t.Fatalf("unexpected schedule entry: %+v", added.Entry)
	}

	listed, err := client.ScheduleList()
	if err != nil {
		t.Fatalf("ScheduleList RPC failed: %v", err)
	}
	if len(listed.Entries) != 1 || listed.Entries[0].ID != added.Entry.ID {
		t.Fatalf("unexpected timetable: %+v", listed.Entries)
	}

	removed, err := client.ScheduleRemove(added.Entry.ID)
	if err != nil || !removed.Removed {
		t.Fatalf("ScheduleRemove RPC: %+v %v", removed, err)
	}

	outcomes, err := client.Outcomes(10)
	if err != nil {
		t.Fatalf("Outcomes RPC failed: %v", err)
	}
	if len(outcomes.Records) == 0 {
		t.Fatal("expected at least one outcome record")
	}

	rebuilt, err := client.RebuildIndex()
	if err != nil {
		t.Fatalf("RebuildIndex RPC failed: %v", err)
	}
	if rebuilt.Indexed != 1 {
		t.Fatalf("indexed %d, want 1", rebuilt.Indexed)
	}

	if _, err := client.ScheduleAdd(ipc.ScheduleAddRequest{Cadence: "hourly"}); err == nil {
		t.Fatal("expected error for unknown cadence")
	}
}

func TestIPCScheduleAddValidatesWeekday(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	logger := logging.NewNop()

	d, err := daemon.New(cfg, "", st, logger)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	if err := d.Start(ctx); err != nil {
		t.Fatalf("daemon.Start: %v", err)
	}

	socket := cfg.SocketPath()
	srv, err := ipc.NewServer(ctx, socket, d, logger)
	if err != nil {
		t.Skipf("skipping: %v", err)
	}
	srv.Serve()
	t.Cleanup(srv.Close)
	time.Sleep(50 * time.Millisecond)

	client, err := ipc.Dial(socket)
	if err != nil {
		t.Fatalf("ipc.Dial: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	if _, err := client.ScheduleAdd(ipc.ScheduleAddRequest{
		Cadence:   "weekly",
		TimeOfDay: "08:00",
		Weekday:   "notaday",
	}); err == nil {
		t.Fatal("expected error for invalid weekday")
	}

	added, err := client.ScheduleAdd(ipc.ScheduleAddRequest{
		Cadence:   "weekly",
		TimeOfDay: "08:00",
		Weekday:   "sat",
	})
	if err != nil {
		t.Fatalf("valid weekly add failed: %v", err)
	}
	if added.Entry.NextFire.Weekday() != time.Saturday {
		t.Fatalf("next fire on %s, want Saturday", added.Entry.NextFire.Weekday())
	}
}
