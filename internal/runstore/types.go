package runstore

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a solver run.
type Status string

// Run statuses.
const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// IsTerminal reports whether the run has finished.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// Run records one search of one problem at one budget.
type Run struct {
	ID            string
	Problem       string
	ProblemDigest string
	Budget        int
	Workers       int
	Rules         string

	// Trials is the dry count taken before searching; Candidates is what
	// the search actually evaluated. They differ only for stopped runs.
	Trials     uint64
	Candidates uint64
	Solutions  int

	Status      Status
	Error       string
	StartedAt   time.Time
	CompletedAt *time.Time
	DurationMS  *int64
}

// NewRun returns a running Run with a fresh ID.
func NewRun(problem, digest string, budget, workers int, rules string) *Run {
	return &Run{
		ID:            "run-" + uuid.NewString(),
		Problem:       problem,
		ProblemDigest: digest,
		Budget:        budget,
		Workers:       workers,
		Rules:         rules,
		Status:        StatusRunning,
		StartedAt:     time.Now().UTC(),
	}
}

// Finish stamps the run's terminal status and duration.
func (r *Run) Finish(status Status, err error) {
	now := time.Now().UTC()
	ms := now.Sub(r.StartedAt).Milliseconds()
	r.Status = status
	r.CompletedAt = &now
	r.DurationMS = &ms
	if err != nil {
		r.Error = err.Error()
	}
}

// Solution is one stored layout of a run, in discovery order.
type Solution struct {
	RunID   string
	Ordinal int

	// Layout holds one tab-separated line per grid row.
	Layout string
}

// clampInt64 keeps saturated counts within SQLite's signed INTEGER range.
func clampInt64(v uint64) int64 {
	if v > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(v)
}
