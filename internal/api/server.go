package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/nerrad567/prelogate-core/internal/infrastructure/config"
	"github.com/nerrad567/prelogate-core/internal/infrastructure/logging"
	"github.com/nerrad567/prelogate-core/internal/runstore"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config  config.APIConfig
	Logger  *logging.Logger
	Runs    runstore.Repository
	Version string

	// Events is optional. Without it the event stream routes answer 503.
	Events EventSource

	// Checks are reported by /health under their names.
	Checks map[string]HealthChecker
}

// HealthChecker is a dependency /health reports on, such as the run store
// database or the broker connection.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Server serves the run history over HTTP.
//
// The server is created with New, started with Start and stopped with Close.
type Server struct {
	cfg     config.APIConfig
	logger  *logging.Logger
	runs    runstore.Repository
	version string
	events  EventSource
	checks  map[string]HealthChecker
	hub     *Hub
	server  *http.Server
}

// New creates a server. It is not listening until Start is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Runs == nil {
		return nil, fmt.Errorf("run repository is required")
	}
	return &Server{
		cfg:     deps.Config,
		logger:  deps.Logger,
		runs:    deps.Runs,
		version: deps.Version,
		events:  deps.Events,
		checks:  deps.Checks,
		hub:     newHub(deps.Logger),
	}, nil
}

// Handler returns the routed handler without starting a listener.
func (s *Server) Handler() http.Handler {
	return s.buildRouter()
}

// Start subscribes to run events, binds the listener and serves in a
// background goroutine. Subscription and binding errors are returned;
// later serve errors are logged.
func (s *Server) Start(_ context.Context) error {
	if err := s.startRelay(); err != nil {
		return err
	}

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		s.stopRelay()
		return fmt.Errorf("listening on %s: %w", s.server.Addr, err)
	}
	s.logger.Info("API server listening", "address", ln.Addr().String(), "auth", s.cfg.JWTSecret != "")

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()
	return nil
}

// Close stops the event relay and drops stream clients, then waits up to
// 10 seconds for in-flight requests.
func (s *Server) Close() error {
	s.stopRelay()
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}
