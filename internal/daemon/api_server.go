package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"shelf/internal/config"
	"shelf/internal/logging"
	"shelf/internal/organizer"
)

// apiServer exposes a read-mostly HTTP surface for dashboards and scripts.
// The unix-socket RPC remains the control plane; this only adds organize as
// a mutating endpoint.
type apiServer struct {
	bind   string
	logger *slog.Logger
	daemon *Daemon

	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) (*apiServer, error) {
	if cfg == nil || d == nil {
		return nil, nil
	}
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil, nil
	}

	srv := &apiServer{
		bind:   bind,
		logger: logging.NewComponentLogger(logger, "api"),
		daemon: d,
	}

	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Route("/api", func(r chi.Router) {
		r.Get("/status", srv.handleStatus)
		r.Get("/outcomes", srv.handleOutcomes)
		r.Get("/schedules", srv.handleSchedules)
		r.Post("/organize", srv.handleOrganize)
	})

	srv.server = &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

func (s *apiServer) start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s == nil {
		return
	}
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

// addr reports the bound address; useful when binding port 0.
func (s *apiServer) addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

type statusPayload struct {
	Running       bool                `json:"running"`
	PID           int                 `json:"pid"`
	WatchedRoot   string              `json:"watched_root"`
	DatabasePath  string              `json:"database_path"`
	QueueDepth    int                 `json:"queue_depth"`
	DigestCount   int64               `json:"digest_count"`
	ScheduleCount int                 `json:"schedule_count"`
	LastPass      *passSummaryPayload `json:"last_pass,omitempty"`
}

type passSummaryPayload struct {
	Trigger    string    `json:"trigger"`
	Started    time.Time `json:"started"`
	DurationMS int64     `json:"duration_ms"`
	Moved      int       `json:"moved"`
	Duplicates int       `json:"duplicates"`
	Skipped    int       `json:"skipped"`
	Failed     int       `json:"failed"`
}

func fromPassSummary(summary organizer.PassSummary) passSummaryPayload {
	return passSummaryPayload{
		Trigger:    string(summary.Trigger),
		Started:    summary.Started,
		DurationMS: summary.Duration.Milliseconds(),
		Moved:      summary.Moved,
		Duplicates: summary.Duplicates,
		Skipped:    summary.Skipped,
		Failed:     summary.Failed,
	}
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := s.daemon.Status(r.Context())
	payload := statusPayload{
		Running:       status.Running,
		PID:           status.PID,
		WatchedRoot:   status.WatchedRoot,
		DatabasePath:  status.DatabasePath,
		QueueDepth:    status.QueueDepth,
		DigestCount:   status.DigestCount,
		ScheduleCount: status.ScheduleCount,
	}
	if status.LastPass != nil {
		converted := fromPassSummary(*status.LastPass)
		payload.LastPass = &converted
	}
	s.writeJSON(w, http.StatusOK, payload)
}

type outcomePayload struct {
	ID          string    `json:"id"`
	Path        string    `json:"path"`
	Action      string    `json:"action"`
	Destination string    `json:"destination,omitempty"`
	Reason      string    `json:"reason,omitempty"`
	RecordedAt  time.Time `json:"recorded_at"`
}

func (s *apiServer) handleOutcomes(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			s.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	records, err := s.daemon.Outcomes(r.Context(), limit)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	payload := make([]outcomePayload, 0, len(records))
	for _, rec := range records {
		payload = append(payload, outcomePayload{
			ID:          rec.ID,
			Path:        rec.Path,
			Action:      string(rec.Action),
			Destination: rec.Destination,
			Reason:      rec.Reason,
			RecordedAt:  rec.RecordedAt,
		})
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"outcomes": payload})
}

type schedulePayload struct {
	ID       string    `json:"id"`
	Cadence  string    `json:"cadence"`
	Describe string    `json:"describe"`
	NextFire time.Time `json:"next_fire"`
}

func (s *apiServer) handleSchedules(w http.ResponseWriter, r *http.Request) {
	entries, err := s.daemon.ListSchedules(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	payload := make([]schedulePayload, 0, len(entries))
	for _, entry := range entries {
		payload = append(payload, schedulePayload{
			ID:       entry.ID,
			Cadence:  string(entry.Cadence),
			Describe: entry.Describe(),
			NextFire: entry.NextFire,
		})
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"schedules": payload})
}

func (s *apiServer) handleOrganize(w http.ResponseWriter, r *http.Request) {
	summary, err := s.daemon.Organize(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, fromPassSummary(summary))
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Warn("encode api response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
