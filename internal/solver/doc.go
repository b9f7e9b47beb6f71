// Package solver finds every placement of a fixed number of devices on a
// puzzle grid that makes the receivers match the truth table.
//
// Architecture:
//
//	┌──────────────────────────────────────────────────────┐
//	│                 New (engine.go)                       │
//	│  1. Map cell options to registry IDs                  │
//	│  2. Cell pruning (prune.go): walls, emitters,         │
//	│     receivers                                         │
//	│  3. Row materialization (materialize.go), with row    │
//	│     rules (rowrules.go) and sharing of equal rows     │
//	│  4. Budget partitions across rows (partition.go)      │
//	└──────────────────────────────────────────────────────┘
//	                         │
//	                         ▼
//	┌──────────────────────────────────────────────────────┐
//	│              SearchFunc (search.go)                   │
//	│  errgroup worker pool, one job per (partition, first  │
//	│  row). Each worker expands the remaining rows and     │
//	│  simulates every grid (simulate.go) to quiescence.    │
//	└──────────────────────────────────────────────────────┘
//
// Pruning only removes what provably cannot appear in a solution, so the
// search stays exhaustive.
//
// # Thread Safety
//
// An Engine is immutable after New. Each search worker owns its simulator
// buffers; solutions reach the caller on a single goroutine.
package solver
