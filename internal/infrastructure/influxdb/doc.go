// Package influxdb records solver run metrics in InfluxDB.
//
// It wraps the official influxdb-client-go v2 library. Two measurements are
// written:
//   - solver_run: candidates, solutions, partitions and throughput per run
//   - solver_prune: what the pruning rules removed before the search
//
// Points are tagged with problem, budget and run_id so runs of the same
// puzzle can be compared over time.
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB, func(err error) {
//	    log.Error("metrics write failed", "error", err)
//	})
//	if errors.Is(err, influxdb.ErrDisabled) {
//	    // metrics are optional
//	}
//	defer client.Close()
//
//	client.WriteRun(influxdb.RunMetrics{RunID: id, Problem: "scenario-a", Budget: 1})
//
// # Error Handling
//
// Writes are non-blocking and batched (batch_size, flush_interval); their
// errors arrive at the callback given to Connect. Only Connect returns
// errors directly.
package influxdb
