package reporting

import (
	"time"

	"github.com/nerrad567/prelogate-core/internal/infrastructure/influxdb"
	"github.com/nerrad567/prelogate-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/prelogate-core/internal/runstore"
	"github.com/nerrad567/prelogate-core/internal/solver"
)

// MetricsWriter receives run and pruning measurements. *influxdb.Client
// satisfies it.
type MetricsWriter interface {
	WriteRun(m influxdb.RunMetrics)
	WritePrune(m influxdb.PruneMetrics)
}

// Publisher sends JSON events to a broker. *mqtt.Client satisfies it.
type Publisher interface {
	PublishJSON(topic string, v any, retained bool) error
	Topics() mqtt.Topics
}

// Logger is the subset of logging used by the reporter.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Warn(string, ...any)  {}

// StatusEvent is the retained payload on {prefix}/run/{id}/status.
type StatusEvent struct {
	RunID      string          `json:"run_id"`
	Problem    string          `json:"problem"`
	Status     runstore.Status `json:"status"`
	Budget     int             `json:"budget"`
	Trials     uint64          `json:"trials"`
	Candidates uint64          `json:"candidates"`
	Solutions  int             `json:"solutions"`
	Error      string          `json:"error,omitempty"`
	DurationMS *int64          `json:"duration_ms,omitempty"`
	Timestamp  time.Time       `json:"timestamp"`
}

// SolutionEvent is published on {prefix}/run/{id}/solution for each
// solution, in discovery order.
type SolutionEvent struct {
	RunID   string   `json:"run_id"`
	Ordinal int      `json:"ordinal"`
	Rows    []string `json:"rows"`
}

// Options configures a Reporter. Nil sinks are skipped.
type Options struct {
	Metrics   MetricsWriter
	Publisher Publisher
	Logger    Logger
}

// Reporter fans run lifecycle events out to the configured sinks. Sink
// failures are logged and never fail the run.
type Reporter struct {
	metrics   MetricsWriter
	publisher Publisher
	logger    Logger
}

// New creates a Reporter.
func New(opts Options) *Reporter {
	r := &Reporter{
		metrics:   opts.Metrics,
		publisher: opts.Publisher,
		logger:    opts.Logger,
	}
	if r.logger == nil {
		r.logger = noopLogger{}
	}
	return r
}

// Started announces a running run and records what pruning removed.
func (r *Reporter) Started(run *runstore.Run, prune solver.PruneStats) {
	if r.metrics != nil {
		r.metrics.WritePrune(influxdb.PruneMetrics{
			RunID:           run.ID,
			Problem:         run.Problem,
			Budget:          run.Budget,
			Walls:           prune.Walls,
			Emitters:        prune.Emitters,
			Receivers:       prune.Receivers,
			RowCombinations: prune.RowCombinations,
			RowsDiscarded:   prune.RowsDiscarded,
			OverBudget:      prune.OverBudget,
			DistinctRows:    prune.DistinctRows,
			Recorded:        run.StartedAt,
		})
	}
	r.publishStatus(run)
}

// Solution publishes one solution's rendered rows.
func (r *Reporter) Solution(run *runstore.Run, ordinal int, rows []string) {
	if r.publisher == nil {
		return
	}
	topic := r.publisher.Topics().RunSolution(run.ID)
	event := SolutionEvent{RunID: run.ID, Ordinal: ordinal, Rows: rows}
	if err := r.publisher.PublishJSON(topic, event, false); err != nil {
		r.logger.Warn("publishing solution failed", "run_id", run.ID, "ordinal", ordinal, "error", err)
	}
}

// Finished publishes the terminal status and writes the run measurement.
// run must already carry its final status (see runstore.Run.Finish).
func (r *Reporter) Finished(run *runstore.Run, stats solver.Stats) {
	if r.metrics != nil {
		finished := time.Now()
		if run.CompletedAt != nil {
			finished = *run.CompletedAt
		}
		r.metrics.WriteRun(influxdb.RunMetrics{
			RunID:      run.ID,
			Problem:    run.Problem,
			Status:     string(run.Status),
			Budget:     run.Budget,
			Workers:    run.Workers,
			Trials:     run.Trials,
			Candidates: stats.Candidates,
			Solutions:  stats.Solutions,
			Partitions: stats.Partitions,
			Elapsed:    stats.Elapsed,
			Finished:   finished,
		})
	}
	r.publishStatus(run)
	r.logger.Debug("run reported", "run_id", run.ID, "status", run.Status)
}

func (r *Reporter) publishStatus(run *runstore.Run) {
	if r.publisher == nil {
		return
	}
	event := StatusEvent{
		RunID:      run.ID,
		Problem:    run.Problem,
		Status:     run.Status,
		Budget:     run.Budget,
		Trials:     run.Trials,
		Candidates: run.Candidates,
		Solutions:  run.Solutions,
		Error:      run.Error,
		DurationMS: run.DurationMS,
		Timestamp:  time.Now().UTC(),
	}
	topic := r.publisher.Topics().RunStatus(run.ID)
	if err := r.publisher.PublishJSON(topic, event, true); err != nil {
		r.logger.Warn("publishing run status failed", "run_id", run.ID, "status", run.Status, "error", err)
	}
}
