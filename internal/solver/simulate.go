package solver

import (
	"github.com/nerrad567/prelogate-core/internal/device"
	"github.com/nerrad567/prelogate-core/internal/signal"
)

// QuiescenceTicks bounds the synchronous updates per truth-table row. A
// grid still changing after this many steps is treated as oscillating.
const QuiescenceTicks = 100

// simulator evaluates candidate grids. It owns its buffers, so each worker
// needs its own.
type simulator struct {
	reg        *device.Registry
	rows, cols int
	emitters   []boundTerminal
	receivers  []boundTerminal
	truthRows  int

	grid      []device.ID
	cur, next []signal.State
}

func (e *Engine) newSimulator() *simulator {
	n := e.rows * e.cols
	return &simulator{
		reg:       e.reg,
		rows:      e.rows,
		cols:      e.cols,
		emitters:  e.emitters,
		receivers: e.receivers,
		truthRows: e.problem.TruthRows(),
		grid:      make([]device.ID, n),
		cur:       make([]signal.State, n),
		next:      make([]signal.State, n),
	}
}

// evaluate reports whether the loaded grid satisfies every truth-table
// row. It stops at the first failing row.
func (s *simulator) evaluate() bool {
	for row := 0; row < s.truthRows; row++ {
		if _, ok := s.settle(row); !ok {
			return false
		}
		for _, rc := range s.receivers {
			if s.input(rc.idx, rc.Facing) != rc.Values[row] {
				return false
			}
		}
	}
	return true
}

// settle runs one truth-table row from a dark grid until two consecutive
// states match. It returns the number of steps taken and whether the grid
// quiesced within QuiescenceTicks.
func (s *simulator) settle(row int) (int, bool) {
	clear(s.cur)
	s.enforce(s.cur, row)
	for ticks := 1; ; ticks++ {
		s.step()
		s.enforce(s.next, row)
		if equalStates(s.cur, s.next) {
			s.cur, s.next = s.next, s.cur
			return ticks, true
		}
		if ticks >= QuiescenceTicks {
			return ticks, false
		}
		s.cur, s.next = s.next, s.cur
	}
}

// step computes next from cur.
func (s *simulator) step() {
	for idx, id := range s.grid {
		var in signal.State
		for _, d := range signal.Directions() {
			if s.input(idx, d) {
				in = in.With(d)
			}
		}
		s.next[idx] = s.reg.Operate(id, in)
	}
}

// enforce overrides each emitter's facing bit with the row's value.
func (s *simulator) enforce(state []signal.State, row int) {
	for _, em := range s.emitters {
		state[em.idx] = state[em.idx].Set(em.Facing, em.Values[row])
	}
}

// input reports the bit the cell at idx receives from direction d.
func (s *simulator) input(idx int, d signal.Direction) bool {
	return facing(s.cur, s.rows, s.cols, idx/s.cols, idx%s.cols, d)
}

func equalStates(a, b []signal.State) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
