package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/prelogate-core/internal/runstore"
)

// runResponse is the JSON form of a stored run.
type runResponse struct {
	ID            string     `json:"id"`
	Problem       string     `json:"problem"`
	ProblemDigest string     `json:"problem_digest,omitempty"`
	Budget        int        `json:"budget"`
	Workers       int        `json:"workers"`
	Rules         string     `json:"rules"`
	Trials        uint64     `json:"trials"`
	Candidates    uint64     `json:"candidates"`
	Solutions     int        `json:"solutions"`
	Status        string     `json:"status"`
	Error         string     `json:"error,omitempty"`
	StartedAt     time.Time  `json:"started_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	DurationMS    *int64     `json:"duration_ms,omitempty"`
}

// solutionResponse carries one layout split into grid rows.
type solutionResponse struct {
	Ordinal int        `json:"ordinal"`
	Rows    [][]string `json:"rows"`
}

func toRunResponse(run *runstore.Run) runResponse {
	return runResponse{
		ID:            run.ID,
		Problem:       run.Problem,
		ProblemDigest: run.ProblemDigest,
		Budget:        run.Budget,
		Workers:       run.Workers,
		Rules:         run.Rules,
		Trials:        run.Trials,
		Candidates:    run.Candidates,
		Solutions:     run.Solutions,
		Status:        string(run.Status),
		Error:         run.Error,
		StartedAt:     run.StartedAt,
		CompletedAt:   run.CompletedAt,
		DurationMS:    run.DurationMS,
	}
}

// splitLayout turns a stored layout (tab-separated cells, one line per row)
// back into a grid.
func splitLayout(layout string) [][]string {
	if layout == "" {
		return [][]string{}
	}
	lines := strings.Split(layout, "\n")
	rows := make([][]string, 0, len(lines))
	for _, line := range lines {
		rows = append(rows, strings.Split(line, "\t"))
	}
	return rows
}

// handleListRuns returns the most recent runs, newest first.
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeBadRequest(w, "limit must be a positive integer")
			return
		}
		limit = n
	}

	runs, err := s.runs.ListRuns(r.Context(), limit)
	if err != nil {
		s.logger.Error("listing runs", "error", err)
		writeInternalError(w, "failed to list runs")
		return
	}

	out := make([]runResponse, 0, len(runs))
	for i := range runs {
		out = append(out, toRunResponse(&runs[i]))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"runs":  out,
		"count": len(out),
	})
}

// handleGetRun returns a single run.
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	run, err := s.runs.GetRun(r.Context(), id)
	if errors.Is(err, runstore.ErrRunNotFound) {
		writeNotFound(w, "run not found")
		return
	}
	if err != nil {
		s.logger.Error("getting run", "id", id, "error", err)
		writeInternalError(w, "failed to get run")
		return
	}
	writeJSON(w, http.StatusOK, toRunResponse(run))
}

// handleListSolutions returns a run's stored solutions in discovery order.
func (s *Server) handleListSolutions(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if _, err := s.runs.GetRun(r.Context(), id); err != nil {
		if errors.Is(err, runstore.ErrRunNotFound) {
			writeNotFound(w, "run not found")
			return
		}
		s.logger.Error("getting run", "id", id, "error", err)
		writeInternalError(w, "failed to get run")
		return
	}

	solutions, err := s.runs.ListSolutions(r.Context(), id)
	if err != nil {
		s.logger.Error("listing solutions", "id", id, "error", err)
		writeInternalError(w, "failed to list solutions")
		return
	}

	out := make([]solutionResponse, 0, len(solutions))
	for _, sol := range solutions {
		out = append(out, solutionResponse{Ordinal: sol.Ordinal, Rows: splitLayout(sol.Layout)})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"run_id":    id,
		"solutions": out,
		"count":     len(out),
	})
}
