package reporting

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/prelogate-core/internal/infrastructure/influxdb"
	"github.com/nerrad567/prelogate-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/prelogate-core/internal/runstore"
	"github.com/nerrad567/prelogate-core/internal/solver"
)

// ─── Fakes ──────────────────────────────────────────────────────────────────

type fakeMetrics struct {
	runs   []influxdb.RunMetrics
	prunes []influxdb.PruneMetrics
}

func (f *fakeMetrics) WriteRun(m influxdb.RunMetrics)     { f.runs = append(f.runs, m) }
func (f *fakeMetrics) WritePrune(m influxdb.PruneMetrics) { f.prunes = append(f.prunes, m) }

type published struct {
	topic    string
	v        any
	retained bool
}

type fakePublisher struct {
	mu   sync.Mutex
	msgs []published
	err  error
}

func (f *fakePublisher) PublishJSON(topic string, v any, retained bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, published{topic, v, retained})
	return f.err
}

func (f *fakePublisher) Topics() mqtt.Topics { return mqtt.Topics{Prefix: "test"} }

type recordingLogger struct {
	warnings []string
}

func (l *recordingLogger) Debug(string, ...any)     {}
func (l *recordingLogger) Warn(msg string, _ ...any) { l.warnings = append(l.warnings, msg) }

func testRun() *runstore.Run {
	run := runstore.NewRun("scenario-a", "digest", 1, 2, "walls,rows")
	run.ID = "run-1"
	run.Trials = 3
	return run
}

// ─── Lifecycle ──────────────────────────────────────────────────────────────

func TestReporter_Lifecycle(t *testing.T) {
	metrics := &fakeMetrics{}
	pub := &fakePublisher{}
	r := New(Options{Metrics: metrics, Publisher: pub})

	run := testRun()
	r.Started(run, solver.PruneStats{Walls: 4, RowsDiscarded: 1, DistinctRows: 3})
	r.Solution(run, 0, []string{"E\tEMPTY\tR"})

	run.Candidates = 3
	run.Solutions = 1
	run.Finish(runstore.StatusCompleted, nil)
	r.Finished(run, solver.Stats{Candidates: 3, Solutions: 1, Partitions: 1, Elapsed: time.Second})

	if len(metrics.prunes) != 1 || metrics.prunes[0].Walls != 4 || metrics.prunes[0].DistinctRows != 3 {
		t.Errorf("prune metrics = %+v", metrics.prunes)
	}
	if len(metrics.runs) != 1 {
		t.Fatalf("run metrics = %d, want 1", len(metrics.runs))
	}
	m := metrics.runs[0]
	if m.Status != "completed" || m.Candidates != 3 || m.Trials != 3 || m.Elapsed != time.Second {
		t.Errorf("run metrics = %+v", m)
	}
	if !m.Finished.Equal(*run.CompletedAt) {
		t.Errorf("Finished = %v, want %v", m.Finished, *run.CompletedAt)
	}

	want := []struct {
		topic    string
		retained bool
	}{
		{"test/run/run-1/status", true},
		{"test/run/run-1/solution", false},
		{"test/run/run-1/status", true},
	}
	if len(pub.msgs) != len(want) {
		t.Fatalf("published %d messages, want %d", len(pub.msgs), len(want))
	}
	for i, w := range want {
		if pub.msgs[i].topic != w.topic || pub.msgs[i].retained != w.retained {
			t.Errorf("message %d = %s (retained %v), want %s (retained %v)",
				i, pub.msgs[i].topic, pub.msgs[i].retained, w.topic, w.retained)
		}
	}

	first, ok := pub.msgs[0].v.(StatusEvent)
	if !ok || first.Status != runstore.StatusRunning {
		t.Errorf("first status = %+v, want running", pub.msgs[0].v)
	}
	sol, ok := pub.msgs[1].v.(SolutionEvent)
	if !ok || sol.Ordinal != 0 || len(sol.Rows) != 1 {
		t.Errorf("solution event = %+v", pub.msgs[1].v)
	}
	last, ok := pub.msgs[2].v.(StatusEvent)
	if !ok || last.Status != runstore.StatusCompleted || last.DurationMS == nil {
		t.Errorf("last status = %+v, want completed with duration", pub.msgs[2].v)
	}
}

func TestReporter_NoSinks(t *testing.T) {
	r := New(Options{})
	run := testRun()

	// Nothing to assert beyond not panicking.
	r.Started(run, solver.PruneStats{})
	r.Solution(run, 0, nil)
	run.Finish(runstore.StatusCancelled, errors.New("context canceled"))
	r.Finished(run, solver.Stats{})
}

func TestReporter_PublishErrorsAreLogged(t *testing.T) {
	pub := &fakePublisher{err: mqtt.ErrNotConnected}
	logger := &recordingLogger{}
	r := New(Options{Publisher: pub, Logger: logger})

	run := testRun()
	r.Started(run, solver.PruneStats{})
	r.Solution(run, 0, []string{"E\tR"})

	if len(logger.warnings) != 2 {
		t.Errorf("warnings = %v, want 2", logger.warnings)
	}
}

func TestReporter_FailedRunCarriesError(t *testing.T) {
	pub := &fakePublisher{}
	r := New(Options{Publisher: pub})

	run := testRun()
	run.Finish(runstore.StatusFailed, errors.New("search: disk full"))
	r.Finished(run, solver.Stats{})

	event, ok := pub.msgs[0].v.(StatusEvent)
	if !ok {
		t.Fatalf("payload type = %T", pub.msgs[0].v)
	}
	if event.Error != "search: disk full" || event.Status != runstore.StatusFailed {
		t.Errorf("event = %+v", event)
	}
}
