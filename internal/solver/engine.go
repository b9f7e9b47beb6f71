package solver

import (
	"fmt"
	"math"
	"math/bits"
	"runtime"
	"sort"

	"github.com/nerrad567/prelogate-core/internal/device"
	"github.com/nerrad567/prelogate-core/internal/puzzle"
	"github.com/nerrad567/prelogate-core/internal/signal"
)

// Logger defines the logging interface used by the Engine.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Options tunes an Engine. The zero value runs every pruning rule on
// runtime.NumCPU() workers without logging.
type Options struct {
	// Workers bounds concurrent candidate evaluation. Zero or less means
	// runtime.NumCPU().
	Workers int

	// Disabled lists pruning rules to skip.
	Disabled Rules

	// Logger receives construction and search summaries.
	Logger Logger
}

// PruneStats describes the work done while preparing a search.
type PruneStats struct {
	// Devices removed from cells by each cell rule.
	Walls     int
	Emitters  int
	Receivers int

	// RowCombinations counts row assignments enumerated across all
	// distinct rows; RowsDiscarded and OverBudget count those dropped.
	RowCombinations int
	RowsDiscarded   int
	OverBudget      int

	// DistinctRows is the number of row materializations computed.
	DistinctRows int
}

// boundTerminal is a terminal resolved to a flat grid index.
type boundTerminal struct {
	puzzle.Terminal
	idx int
}

// Engine holds everything prepared for one (problem, budget) pair: the
// pruned cell sets, the per-row materializations and the budget
// partitions. An Engine is read-only once New returns, so Search may be
// called repeatedly and concurrently.
type Engine struct {
	problem *puzzle.Problem
	reg     *device.Registry
	budget  int
	workers int
	rules   Rules
	logger  Logger

	rows, cols int
	cells      [][]device.ID // admissible IDs per cell, row-major
	table      []*rowTable   // materialization per grid row, shared
	partitions [][]int
	emitters   []boundTerminal
	receivers  []boundTerminal
	stats      PruneStats
}

// New prunes, materializes and partitions the problem for the given
// device budget. All preparation happens here, on the calling goroutine.
func New(p *puzzle.Problem, reg *device.Registry, budget int, opts Options) (*Engine, error) {
	if p == nil {
		return nil, ErrNilProblem
	}
	if reg == nil {
		return nil, ErrNilRegistry
	}
	if budget < 0 {
		return nil, fmt.Errorf("%w: %d", ErrNegativeBudget, budget)
	}
	if err := checkTruthTable(p.Terminals()); err != nil {
		return nil, err
	}

	e := &Engine{
		problem: p,
		reg:     reg,
		budget:  budget,
		workers: opts.Workers,
		rules:   AllRules &^ opts.Disabled,
		logger:  opts.Logger,
		rows:    p.Rows(),
		cols:    p.Cols(),
	}
	if e.workers <= 0 {
		e.workers = runtime.NumCPU()
	}
	if e.logger == nil {
		e.logger = noopLogger{}
	}

	if err := e.loadCells(); err != nil {
		return nil, err
	}
	e.bindTerminals()
	e.pruneCells()
	e.materializeRows()
	e.partitions = e.buildPartitions()

	e.logger.Info("search prepared",
		"problem", p.Name(),
		"budget", budget,
		"rules", e.rules.String(),
		"pruned_walls", e.stats.Walls,
		"pruned_emitters", e.stats.Emitters,
		"pruned_receivers", e.stats.Receivers,
		"distinct_rows", e.stats.DistinctRows,
		"rows_discarded", e.stats.RowsDiscarded,
		"partitions", len(e.partitions),
	)
	return e, nil
}

func checkTruthTable(terms []puzzle.Terminal) error {
	if len(terms) == 0 {
		return puzzle.ErrNoTerminals
	}
	n := len(terms[0].Values)
	for _, t := range terms {
		if len(t.Values) != n || n == 0 {
			return fmt.Errorf("%w: terminal %c has %d values, want %d",
				puzzle.ErrInconsistentTruthTable, t.Symbol, len(t.Values), n)
		}
	}
	return nil
}

// loadCells maps each cell's devices to registry IDs, sorted so that equal
// sets compare equal regardless of the order they were listed in.
func (e *Engine) loadCells() error {
	e.cells = make([][]device.ID, 0, e.rows*e.cols)
	for r := 0; r < e.rows; r++ {
		for c := 0; c < e.cols; c++ {
			pos := puzzle.Coordinate{Row: r, Col: c}
			opts := e.problem.Options(pos)
			ids := make([]device.ID, 0, len(opts))
			for _, d := range opts {
				id, err := e.reg.ID(d)
				if err != nil {
					return fmt.Errorf("cell %s: %w", pos, err)
				}
				ids = append(ids, id)
			}
			sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
			e.cells = append(e.cells, ids)
		}
	}
	return nil
}

func (e *Engine) bindTerminals() {
	for _, t := range e.problem.Terminals() {
		bt := boundTerminal{Terminal: t, idx: e.index(t.Pos)}
		if t.IsEmitter() {
			e.emitters = append(e.emitters, bt)
		} else {
			e.receivers = append(e.receivers, bt)
		}
	}
}

func (e *Engine) index(c puzzle.Coordinate) int {
	return c.Row*e.cols + c.Col
}

// Problem returns the problem being solved.
func (e *Engine) Problem() *puzzle.Problem {
	return e.problem
}

// Budget returns the number of non-trivial devices every solution uses.
func (e *Engine) Budget() int {
	return e.budget
}

// Workers returns the evaluation concurrency.
func (e *Engine) Workers() int {
	return e.workers
}

// Rules returns the pruning rules in effect.
func (e *Engine) Rules() Rules {
	return e.rules
}

// PruneStats returns the preparation statistics.
func (e *Engine) PruneStats() PruneStats {
	return e.stats
}

// Partitions returns the number of per-row budget splits.
func (e *Engine) Partitions() int {
	return len(e.partitions)
}

// Admissible returns the devices still admissible at c after pruning.
func (e *Engine) Admissible(c puzzle.Coordinate) []device.Device {
	ids := e.cells[e.index(c)]
	out := make([]device.Device, len(ids))
	for i, id := range ids {
		out[i] = e.reg.Device(id)
	}
	return out
}

// CountTrials returns the number of candidate grids Search would
// evaluate, without simulating any. The count saturates at MaxUint64.
func (e *Engine) CountTrials() uint64 {
	var total uint64
	for _, p := range e.partitions {
		n := uint64(1)
		for r, k := range p {
			n = mulSat(n, uint64(len(e.table[r].bucket(k))))
		}
		total = addSat(total, n)
	}
	return total
}

func mulSat(a, b uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return math.MaxUint64
	}
	return lo
}

func addSat(a, b uint64) uint64 {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return math.MaxUint64
	}
	return sum
}

// facing returns the input bit a cell at (r, c) sees from direction d in
// state, treating off-grid neighbours as dark.
func facing(state []signal.State, rows, cols, r, c int, d signal.Direction) bool {
	dr, dc := d.Delta()
	nr, nc := r+dr, c+dc
	if nr < 0 || nr >= rows || nc < 0 || nc >= cols {
		return false
	}
	return state[nr*cols+nc].Get(d.Opposite())
}
