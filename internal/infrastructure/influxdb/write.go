package influxdb

import (
	"strconv"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement names.
const (
	MeasurementRun   = "solver_run"
	MeasurementPrune = "solver_prune"
)

// RunMetrics summarises one finished search.
type RunMetrics struct {
	RunID   string
	Problem string
	Status  string
	Budget  int
	Workers int

	Trials     uint64
	Candidates uint64
	Solutions  int
	Partitions int
	Elapsed    time.Duration
	Finished   time.Time
}

// PruneMetrics records what preparation removed before a search.
type PruneMetrics struct {
	RunID   string
	Problem string
	Budget  int

	Walls           int
	Emitters        int
	Receivers       int
	RowCombinations int
	RowsDiscarded   int
	OverBudget      int
	DistinctRows    int
	Recorded        time.Time
}

// WriteRun queues a solver_run point. The write is non-blocking.
//
// Example:
//
//	client.WriteRun(influxdb.RunMetrics{
//	    RunID: run.ID, Problem: "scenario-a", Status: "completed",
//	    Budget: 1, Candidates: 3, Solutions: 1, Elapsed: stats.Elapsed,
//	})
func (c *Client) WriteRun(m RunMetrics) {
	c.writePoint(runPoint(m))
}

// WritePrune queues a solver_prune point.
func (c *Client) WritePrune(m PruneMetrics) {
	c.writePoint(prunePoint(m))
}

func runPoint(m RunMetrics) *write.Point {
	fields := map[string]interface{}{
		"trials":     m.Trials,
		"candidates": m.Candidates,
		"solutions":  m.Solutions,
		"partitions": m.Partitions,
		"workers":    m.Workers,
		"elapsed_ms": m.Elapsed.Milliseconds(),
	}
	if secs := m.Elapsed.Seconds(); secs > 0 {
		fields["candidates_per_second"] = float64(m.Candidates) / secs
	}
	return write.NewPoint(MeasurementRun, runTags(m.RunID, m.Problem, m.Budget, m.Status), fields, stamp(m.Finished))
}

func prunePoint(m PruneMetrics) *write.Point {
	return write.NewPoint(
		MeasurementPrune,
		runTags(m.RunID, m.Problem, m.Budget, ""),
		map[string]interface{}{
			"walls":            m.Walls,
			"emitters":         m.Emitters,
			"receivers":        m.Receivers,
			"row_combinations": m.RowCombinations,
			"rows_discarded":   m.RowsDiscarded,
			"over_budget":      m.OverBudget,
			"distinct_rows":    m.DistinctRows,
		},
		stamp(m.Recorded),
	)
}

// runTags tags points by problem, budget and run. Status is only known for
// run points.
func runTags(runID, problem string, budget int, status string) map[string]string {
	tags := map[string]string{
		"problem": problem,
		"budget":  strconv.Itoa(budget),
	}
	if runID != "" {
		tags["run_id"] = runID
	}
	if status != "" {
		tags["status"] = status
	}
	return tags
}

func stamp(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now()
	}
	return t
}
