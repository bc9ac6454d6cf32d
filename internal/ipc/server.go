package ipc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"sync"
	"time"

	"shelf/internal/daemon"
	"shelf/internal/logging"
	"shelf/internal/organizer"
	"shelf/internal/schedule"
)

// Server exposes daemon control via JSON-RPC over a Unix domain socket.
type Server struct {
	path      string
	daemon    *daemon.Daemon
	logger    *slog.Logger
	listener  net.Listener
	rpcServer *rpc.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer configures the IPC server at the given socket path.
func NewServer(ctx context.Context, path string, d *daemon.Daemon, logger *slog.Logger) (*Server, error) {
	if d == nil {
		return nil, errors.New("ipc server requires daemon")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on socket: %w", err)
	}

	rpcServer := rpc.NewServer()
	srv := &service{daemon: d, logger: logging.NewComponentLogger(logger, "ipc"), ctx: ctx}
	if err := rpcServer.RegisterName("Shelf", srv); err != nil {
		listener.Close()
		return nil, fmt.Errorf("register rpc service: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	return &Server{
		path:      path,
		daemon:    d,
		logger:    logger,
		listener:  listener,
		rpcServer: rpcServer,
		ctx:       serverCtx,
		cancel:    cancel,
	}, nil
}

// Serve starts accepting RPC connections until the context is canceled.
func (s *Server) Serve() {
	s.logger.Debug("IPC server listening", logging.String("socket", s.path))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-s.ctx.Done():
					return
				default:
				}
				s.logger.Warn("accept failed",
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "check socket permissions and restart the daemon if needed"))
				continue
			}
			s.wg.Add(1)
			go func(c net.Conn) {
				defer s.wg.Done()
				s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(c))
			}(conn)
		}
	}()
}

// Close stops the server and removes the socket file.
func (s *Server) Close() {
	s.cancel()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.wg.Wait()
	if err := os.RemoveAll(s.path); err != nil {
		s.logger.Warn("failed to remove socket",
			logging.String("socket", s.path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "remove the socket file manually before the next start"))
	}
}

type service struct {
	daemon *daemon.Daemon
	logger *slog.Logger
	ctx    context.Context
}

func convertSummary(summary organizer.PassSummary) PassSummary {
	return PassSummary{
		Trigger:    string(summary.Trigger),
		Started:    summary.Started,
		Duration:   summary.Duration,
		Moved:      summary.Moved,
		Duplicates: summary.Duplicates,
		Skipped:    summary.Skipped,
		Failed:     summary.Failed,
	}
}

func convertEntry(entry schedule.Entry) ScheduleEntry {
	return ScheduleEntry{
		ID:       entry.ID,
		Cadence:  string(entry.Cadence),
		Describe: entry.Describe(),
		NextFire: entry.NextFire,
	}
}

func (s *service) Status(_ StatusRequest, resp *StatusResponse) error {
	status := s.daemon.Status(s.ctx)
	resp.Running = status.Running
	resp.PID = status.PID
	resp.WatchedRoot = status.WatchedRoot
	resp.DatabasePath = status.DatabasePath
	resp.LockPath = status.LockFilePath
	resp.QueueDepth = status.QueueDepth
	resp.DigestCount = status.DigestCount
	resp.ScheduleCount = status.ScheduleCount
	if status.LastPass != nil {
		converted := convertSummary(*status.LastPass)
		resp.LastPass = &converted
	}
	return nil
}

func (s *service) Organize(_ OrganizeRequest, resp *OrganizeResponse) error {
	s.logger.Debug("organize pass requested")
	summary, err := s.daemon.Organize(s.ctx)
	if err != nil {
		return err
	}
	resp.Summary = convertSummary(summary)
	return nil
}

func (s *service) Stop(_ StopRequest, resp *StopResponse) error {
	s.logger.Debug("daemon stop requested")
	s.daemon.Stop()
	resp.Stopped = true
	s.logger.Info("daemon stopped via IPC")
	return nil
}

func (s *service) ReloadRules(_ ReloadRulesRequest, resp *ReloadRulesResponse) error {
	count, err := s.daemon.ReloadRules()
	if err != nil {
		return err
	}
	resp.Rules = count
	s.logger.Info("rules reloaded via IPC", logging.Int("rules", count))
	return nil
}

func (s *service) ScheduleAdd(req ScheduleAddRequest, resp *ScheduleAddResponse) error {
	now := time.Now()
	var (
		entry schedule.Entry
		err   error
	)
	switch schedule.Cadence(req.Cadence) {
	case schedule.CadenceDaily:
		entry, err = schedule.NewDaily(req.TimeOfDay, now)
	case schedule.CadenceWeekly:
		var weekday time.Weekday
		weekday, err = schedule.ParseWeekday(req.Weekday)
		if err == nil {
			entry, err = schedule.NewWeekly(weekday, req.TimeOfDay, now)
		}
	case schedule.CadenceOnce:
		entry, err = schedule.NewOnce(req.At, now)
	default:
		err = fmt.Errorf("unknown cadence %q", req.Cadence)
	}
	if err != nil {
		return err
	}

	if err := s.daemon.AddSchedule(s.ctx, entry); err != nil {
		return err
	}
	resp.Entry = convertEntry(entry)
	return nil
}

func (s *service) ScheduleRemove(req ScheduleRemoveRequest, resp *ScheduleRemoveResponse) error {
	if req.ID == "" {
		return errors.New("schedule remove requires an id")
	}
	removed, err := s.daemon.RemoveSchedule(s.ctx, req.ID)
	if err != nil {
		return err
	}
	resp.Removed = removed
	return nil
}

func (s *service) ScheduleList(_ ScheduleListRequest, resp *ScheduleListResponse) error {
	entries, err := s.daemon.ListSchedules(s.ctx)
	if err != nil {
		return err
	}
	resp.Entries = make([]ScheduleEntry, 0, len(entries))
	for _, entry := range entries {
		resp.Entries = append(resp.Entries, convertEntry(entry))
	}
	return nil
}

func (s *service) Outcomes(req OutcomesRequest, resp *OutcomesResponse) error {
	records, err := s.daemon.Outcomes(s.ctx, req.Limit)
	if err != nil {
		return err
	}
	resp.Records = make([]OutcomeRecord, 0, len(records))
	for _, rec := range records {
		resp.Records = append(resp.Records, OutcomeRecord{
			ID:          rec.ID,
			Path:        rec.Path,
			Action:      string(rec.Action),
			Destination: rec.Destination,
			Reason:      rec.Reason,
			RecordedAt:  rec.RecordedAt,
		})
	}
	return nil
}

func (s *service) RebuildIndex(_ RebuildIndexRequest, resp *RebuildIndexResponse) error {
	s.logger.Debug("index rebuild requested")
	indexed, err := s.daemon.RebuildIndex(s.ctx)
	if err != nil {
		return err
	}
	resp.Indexed = indexed
	s.logger.Info("index rebuilt via IPC", logging.Int("indexed", indexed))
	return nil
}

func (s *service) TestNotification(_ TestNotificationRequest, resp *TestNotificationResponse) error {
	sent, message, err := s.daemon.TestNotification(s.ctx)
	resp.Sent = sent
	resp.Message = message
	return err
}
