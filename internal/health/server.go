package health

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matchcaller/matchcaller/internal/logger"
)

// ClockStatus is the health server's view of the virtual clock.
type ClockStatus interface {
	Running() bool
	Now() int
	Mode() string
}

// ConnectionLister reports the currently connected destinations.
type ConnectionLister interface {
	Destinations() []string
}

// Status is the JSON document served on / and /health.
type Status struct {
	Status       string   `json:"status"`
	Uptime       string   `json:"uptime"`
	ClockRunning bool     `json:"clock_running"`
	GameTime     int      `json:"game_time"`
	Mode         string   `json:"mode"`
	Connections  []string `json:"connections"`
}

// Server exposes a small liveness endpoint so process supervisors can poll
// the bot without touching the console.
type Server struct {
	clock     ClockStatus
	conns     ConnectionLister
	log       *logger.Logger
	startedAt time.Time
	srv       *http.Server
}

// NewServer creates a health server listening on addr.
func NewServer(addr string, clock ClockStatus, conns ConnectionLister, log *logger.Logger) *Server {
	s := &Server{
		clock:     clock,
		conns:     conns,
		log:       log,
		startedAt: time.Now(),
	}
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Routes builds the router. Split out so tests can hit the handlers
// without binding a port.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", s.handleStatus)
	r.Get("/health", s.handleStatus)
	return r
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	dests := s.conns.Destinations()
	if dests == nil {
		dests = []string{}
	}
	status := Status{
		Status:       "ok",
		Uptime:       time.Since(s.startedAt).Round(time.Second).String(),
		ClockRunning: s.clock.Running(),
		GameTime:     s.clock.Now(),
		Mode:         s.clock.Mode(),
		Connections:  dests,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(status); err != nil {
		s.log.Error("health: encoding response: %v", err)
	}
}

// Start begins serving in a goroutine. Non-blocking.
func (s *Server) Start() {
	go func() {
		s.log.Info("health server listening on %s", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("health server: %v", err)
		}
	}()
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down health server: %w", err)
	}
	return nil
}
