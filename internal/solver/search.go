package solver

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nerrad567/prelogate-core/internal/device"
	"github.com/nerrad567/prelogate-core/internal/puzzle"
)

// cancelCheckInterval is how many candidates a worker evaluates between
// context checks.
const cancelCheckInterval = 1024

// Solution is a fully assigned grid that satisfies every truth-table row.
type Solution struct {
	rows, cols int
	devices    []device.Device
}

// Rows returns the grid height.
func (s Solution) Rows() int { return s.rows }

// Cols returns the grid width.
func (s Solution) Cols() int { return s.cols }

// At returns the device placed at c.
func (s Solution) At(c puzzle.Coordinate) device.Device {
	return s.devices[c.Row*s.cols+c.Col]
}

// Lines renders one tab-separated line per grid row. Terminal cells show
// the terminal's symbol instead of their wall.
func (s Solution) Lines(p *puzzle.Problem) []string {
	lines := make([]string, s.rows)
	cells := make([]string, s.cols)
	for r := 0; r < s.rows; r++ {
		for c := 0; c < s.cols; c++ {
			pos := puzzle.Coordinate{Row: r, Col: c}
			if t, ok := p.TerminalAt(pos); ok {
				cells[c] = string(t.Symbol)
				continue
			}
			cells[c] = s.At(pos).String()
		}
		lines[r] = strings.Join(cells, "\t")
	}
	return lines
}

func (s Solution) String() string {
	var b strings.Builder
	for i, d := range s.devices {
		if i > 0 {
			if i%s.cols == 0 {
				b.WriteByte('\n')
			} else {
				b.WriteByte('\t')
			}
		}
		b.WriteString(d.String())
	}
	return b.String()
}

func (s Solution) less(o Solution) bool {
	for i := range s.devices {
		a, b := s.devices[i], o.devices[i]
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		if a.Rotation != b.Rotation {
			return a.Rotation < b.Rotation
		}
	}
	return false
}

// Stats summarises one search.
type Stats struct {
	Candidates uint64
	Solutions  int
	Partitions int
	Elapsed    time.Duration
}

// CandidatesPerSecond returns the evaluation throughput.
func (s Stats) CandidatesPerSecond() float64 {
	if s.Elapsed <= 0 {
		return 0
	}
	return float64(s.Candidates) / s.Elapsed.Seconds()
}

// job is one partition with its first row fixed.
type job struct {
	partition []int
	first     combo
}

// Search evaluates every candidate grid and returns the solutions in a
// deterministic order.
func (e *Engine) Search(ctx context.Context) ([]Solution, Stats, error) {
	var out []Solution
	stats, err := e.SearchFunc(ctx, func(s Solution) error {
		out = append(out, s)
		return nil
	})
	if err != nil {
		return nil, stats, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].less(out[j]) })
	return out, stats, nil
}

// SearchFunc evaluates every candidate grid on the worker pool and calls
// visit for each solution as it is found, from a single goroutine and in
// no particular order. A non-nil error from visit stops the search and is
// returned. Cancelling ctx stops the search with ctx's error.
func (e *Engine) SearchFunc(ctx context.Context, visit func(Solution) error) (Stats, error) {
	start := time.Now()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	found := make(chan Solution, e.workers)
	var candidates atomic.Uint64
	var searchErr error

	go func() {
		defer close(found)
	dispatch:
		for _, p := range e.partitions {
			for _, first := range e.table[0].bucket(p[0]) {
				if gctx.Err() != nil {
					break dispatch
				}
				j := job{partition: p, first: first}
				g.Go(func() error {
					return e.runJob(gctx, j, found, &candidates)
				})
			}
		}
		searchErr = g.Wait()
	}()

	var visitErr error
	stats := Stats{Partitions: len(e.partitions)}
	for s := range found {
		if visitErr != nil {
			continue
		}
		stats.Solutions++
		if err := visit(s); err != nil {
			visitErr = err
			cancel()
		}
	}

	stats.Candidates = candidates.Load()
	stats.Elapsed = time.Since(start)

	if visitErr != nil {
		return stats, visitErr
	}
	if searchErr == nil {
		searchErr = ctx.Err()
	}
	if searchErr != nil {
		return stats, fmt.Errorf("search: %w", searchErr)
	}

	e.logger.Info("search completed",
		"problem", e.problem.Name(),
		"budget", e.budget,
		"candidates", stats.Candidates,
		"solutions", stats.Solutions,
		"elapsed", stats.Elapsed,
	)
	return stats, nil
}

// runJob expands the remaining rows of j with an odometer over bucket
// indices and evaluates each grid.
func (e *Engine) runJob(ctx context.Context, j job, found chan<- Solution, candidates *atomic.Uint64) error {
	sim := e.newSimulator()
	copy(sim.grid, j.first)

	buckets := make([][]combo, e.rows)
	for r := 1; r < e.rows; r++ {
		buckets[r] = e.table[r].bucket(j.partition[r])
		if len(buckets[r]) == 0 {
			return nil
		}
	}

	digits := make([]int, e.rows)
	for r := 1; r < e.rows; r++ {
		copy(sim.grid[r*e.cols:], buckets[r][0])
	}

	var n uint64
	defer func() { candidates.Add(n) }()
	for {
		n++
		if n%cancelCheckInterval == 0 && ctx.Err() != nil {
			return ctx.Err()
		}
		if sim.evaluate() {
			select {
			case found <- e.solution(sim.grid):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		r := e.rows - 1
		for ; r >= 1; r-- {
			digits[r]++
			if digits[r] < len(buckets[r]) {
				copy(sim.grid[r*e.cols:], buckets[r][digits[r]])
				break
			}
			digits[r] = 0
			copy(sim.grid[r*e.cols:], buckets[r][0])
		}
		if r < 1 {
			return nil
		}
	}
}

func (e *Engine) solution(grid []device.ID) Solution {
	devs := make([]device.Device, len(grid))
	for i, id := range grid {
		devs[i] = e.reg.Device(id)
	}
	return Solution{rows: e.rows, cols: e.cols, devices: devs}
}
