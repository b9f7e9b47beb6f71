package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

const healthCheckTimeout = 2 * time.Second

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeNotFound(w, "no such endpoint")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, ErrCodeMethodNotAllow, "method not allowed")
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Get("/events", s.handleEvents)
			r.Route("/runs", func(r chi.Router) {
				r.Get("/", s.handleListRuns)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", s.handleGetRun)
					r.Get("/solutions", s.handleListSolutions)
					r.Get("/events", s.handleEvents)
				})
			})
		})
	})

	return r
}

// handleHealth reports the version and, when dependencies are registered,
// each one's state. Any failing dependency makes the answer 503.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{
		"status":  "ok",
		"version": s.version,
	}
	if len(s.checks) == 0 {
		writeJSON(w, http.StatusOK, body)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	status := http.StatusOK
	checks := make(map[string]string, len(s.checks))
	for name, c := range s.checks {
		if err := c.HealthCheck(ctx); err != nil {
			s.logger.Warn("health check failed", "dependency", name, "error", err)
			checks[name] = err.Error()
			status = http.StatusServiceUnavailable
			body["status"] = "degraded"
			continue
		}
		checks[name] = "ok"
	}
	body["checks"] = checks
	writeJSON(w, status, body)
}
