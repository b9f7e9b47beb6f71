package influxdb

import (
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/prelogate-core/internal/infrastructure/config"
)

// testConfig returns a configuration for a local dev InfluxDB.
func testConfig() config.InfluxDBConfig {
	return config.InfluxDBConfig{
		Enabled:       true,
		URL:           "http://127.0.0.1:8086",
		Token:         "prelogate-dev-token",
		Org:           "prelogate",
		Bucket:        "solver",
		BatchSize:     100,
		FlushInterval: 1,
	}
}

// connectOrSkip skips the test if InfluxDB is not running.
func connectOrSkip(t *testing.T, onError func(error)) *Client {
	t.Helper()
	if os.Getenv("RUN_INTEGRATION") == "" {
		t.Skip("set RUN_INTEGRATION to run InfluxDB tests")
	}
	client, err := Connect(testConfig(), onError)
	if err != nil {
		t.Skipf("InfluxDB not available: %v", err)
	}
	return client
}

// ─── Connection ─────────────────────────────────────────────────────────────

func TestConnect_Disabled(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false

	_, err := Connect(cfg, nil)
	if !errors.Is(err, ErrDisabled) {
		t.Errorf("Connect() error = %v, want ErrDisabled", err)
	}
}

func TestConnect_InvalidURL(t *testing.T) {
	cfg := testConfig()
	cfg.URL = "http://127.0.0.1:59999"

	_, err := Connect(cfg, nil)
	if !errors.Is(err, ErrConnectionFailed) {
		t.Errorf("Connect() error = %v, want ErrConnectionFailed", err)
	}
}

func TestClient_ZeroValue(t *testing.T) {
	c := &Client{}

	// Writes, Flush and Close on a never-connected client are no-ops.
	c.WriteRun(RunMetrics{Problem: "p"})
	c.WritePrune(PruneMetrics{Problem: "p"})
	c.Flush()
	if err := c.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestWriteOptions(t *testing.T) {
	tests := []struct {
		name      string
		batch     int
		flushSecs int
		wantBatch uint
		wantFlush uint
	}{
		{"configured", 500, 2, 500, 2000},
		{"defaults", 0, 0, 100, 10000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := writeOptions(config.InfluxDBConfig{BatchSize: tt.batch, FlushInterval: tt.flushSecs})
			if opts.BatchSize() != tt.wantBatch || opts.FlushInterval() != tt.wantFlush {
				t.Errorf("batch = %d, flush = %dms; want %d, %dms",
					opts.BatchSize(), opts.FlushInterval(), tt.wantBatch, tt.wantFlush)
			}
		})
	}
}

// ─── Points ─────────────────────────────────────────────────────────────────

func TestRunPoint(t *testing.T) {
	finished := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	p := runPoint(RunMetrics{
		RunID:      "run-1",
		Problem:    "scenario-a",
		Status:     "completed",
		Budget:     1,
		Workers:    4,
		Trials:     3,
		Candidates: 3,
		Solutions:  1,
		Partitions: 1,
		Elapsed:    2 * time.Second,
		Finished:   finished,
	})

	if p.Name() != MeasurementRun {
		t.Errorf("Name() = %q, want %q", p.Name(), MeasurementRun)
	}
	if !p.Time().Equal(finished) {
		t.Errorf("Time() = %v, want %v", p.Time(), finished)
	}

	tags := map[string]string{}
	for _, tag := range p.TagList() {
		tags[tag.Key] = tag.Value
	}
	want := map[string]string{"run_id": "run-1", "problem": "scenario-a", "budget": "1", "status": "completed"}
	for k, v := range want {
		if tags[k] != v {
			t.Errorf("tag %s = %q, want %q", k, tags[k], v)
		}
	}

	fields := map[string]interface{}{}
	for _, f := range p.FieldList() {
		fields[f.Key] = f.Value
	}
	if got := fields["candidates_per_second"]; got != 1.5 {
		t.Errorf("candidates_per_second = %v, want 1.5", got)
	}
	if got := fields["elapsed_ms"]; got != int64(2000) {
		t.Errorf("elapsed_ms = %v, want 2000", got)
	}
}

func TestRunPoint_ZeroElapsed(t *testing.T) {
	p := runPoint(RunMetrics{Problem: "p"})

	for _, f := range p.FieldList() {
		if f.Key == "candidates_per_second" {
			t.Error("candidates_per_second written for zero elapsed time")
		}
	}
	for _, tag := range p.TagList() {
		if tag.Key == "run_id" || tag.Key == "status" {
			t.Errorf("empty %s tag written", tag.Key)
		}
	}
	if p.Time().IsZero() {
		t.Error("Time() is zero, want now")
	}
}

func TestPrunePoint(t *testing.T) {
	p := prunePoint(PruneMetrics{
		RunID:         "run-2",
		Problem:       "pick-one",
		Budget:        1,
		Walls:         5,
		RowsDiscarded: 2,
		DistinctRows:  3,
	})

	if p.Name() != MeasurementPrune {
		t.Errorf("Name() = %q, want %q", p.Name(), MeasurementPrune)
	}
	fields := map[string]interface{}{}
	for _, f := range p.FieldList() {
		fields[f.Key] = f.Value
	}
	if fields["walls"] != int64(5) || fields["rows_discarded"] != int64(2) || fields["distinct_rows"] != int64(3) {
		t.Errorf("fields = %v", fields)
	}
}

// ─── Integration ────────────────────────────────────────────────────────────

func TestWriteRun_Integration(t *testing.T) {
	var mu sync.Mutex
	var writeErr error
	client := connectOrSkip(t, func(err error) {
		mu.Lock()
		writeErr = err
		mu.Unlock()
	})
	defer client.Close() //nolint:errcheck // Test cleanup

	client.WriteRun(RunMetrics{RunID: "run-test", Problem: "integration", Status: "completed", Budget: 1, Elapsed: time.Millisecond})
	client.WritePrune(PruneMetrics{RunID: "run-test", Problem: "integration", Budget: 1})
	client.Flush()

	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if writeErr != nil {
		t.Errorf("write error = %v", writeErr)
	}
}

func TestClose_Integration(t *testing.T) {
	client := connectOrSkip(t, nil)

	if err := client.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	// Closed clients drop writes and tolerate a second Close.
	client.WriteRun(RunMetrics{Problem: "after-close"})
	client.Flush()
	if err := client.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}
