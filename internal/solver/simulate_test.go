package solver

import (
	"testing"

	"github.com/nerrad567/prelogate-core/internal/device"
	"github.com/nerrad567/prelogate-core/internal/puzzle"
	"github.com/nerrad567/prelogate-core/internal/signal"
)

// fixedEngine builds an engine over a grid with exactly one device per cell.
func fixedEngine(t *testing.T, grid [][]device.Device, terms []puzzle.Terminal) *Engine {
	t.Helper()
	cells := make([][][]device.Device, len(grid))
	budget := 0
	for r, row := range grid {
		cells[r] = make([][]device.Device, len(row))
		for c, d := range row {
			cells[r][c] = []device.Device{d}
			if !d.Kind.IsTrivial() {
				budget++
			}
		}
	}
	p, err := puzzle.New(t.Name(), cells, terms)
	if err != nil {
		t.Fatalf("puzzle.New() error = %v", err)
	}
	e, err := New(p, device.NewRegistry(), budget, Options{Disabled: AllRules})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return e
}

func loadedSimulator(e *Engine) *simulator {
	sim := e.newSimulator()
	for i, set := range e.cells {
		sim.grid[i] = set[0]
	}
	return sim
}

func rot(k device.Kind, r int) device.Device {
	return device.MustRotate(device.New(k), r)
}

func TestSettle_Oscillator(t *testing.T) {
	// The emitter feeds an Xor whose output loops back through three
	// mirrors into its other input, so the ring inverts itself forever.
	wall := device.New(device.Wall)
	grid := [][]device.Device{
		{rot(device.Mirror, 1), rot(device.Mirror, 2), wall},
		{rot(device.Mirror, 0), rot(device.Xor, 0), wall},
	}
	terms := []puzzle.Terminal{{
		Symbol: 'E', Role: puzzle.Emitter,
		Pos:    puzzle.Coordinate{Row: 1, Col: 2},
		Facing: signal.Left, Values: []bool{true},
	}}
	e := fixedEngine(t, grid, terms)
	sim := loadedSimulator(e)

	ticks, ok := sim.settle(0)
	if ok {
		t.Fatalf("settle() quiesced after %d ticks, want oscillation", ticks)
	}
	if ticks != QuiescenceTicks {
		t.Errorf("settle() gave up after %d ticks, want %d", ticks, QuiescenceTicks)
	}
	if sim.evaluate() {
		t.Error("evaluate() accepted an oscillating grid")
	}
	if e.CountTrials() != 1 {
		t.Errorf("CountTrials() = %d, want 1", e.CountTrials())
	}
}

func TestSettle_StraightBeam(t *testing.T) {
	wall := device.New(device.Wall)
	grid := [][]device.Device{{wall, device.New(device.Empty), wall}}
	terms := []puzzle.Terminal{
		{Symbol: 'E', Role: puzzle.Emitter, Pos: puzzle.Coordinate{Col: 0}, Facing: signal.Right, Values: []bool{true, false}},
		{Symbol: 'R', Role: puzzle.Receiver, Pos: puzzle.Coordinate{Col: 2}, Facing: signal.Left, Values: []bool{true, false}},
	}
	e := fixedEngine(t, grid, terms)
	sim := loadedSimulator(e)

	ticks, ok := sim.settle(0)
	if !ok || ticks != 2 {
		t.Errorf("settle(0) = (%d, %v), want (2, true)", ticks, ok)
	}
	if !sim.input(2, signal.Left) {
		t.Error("receiver sees no beam after the lit row")
	}

	ticks, ok = sim.settle(1)
	if !ok || ticks != 1 {
		t.Errorf("settle(1) = (%d, %v), want (1, true)", ticks, ok)
	}
	if sim.input(2, signal.Left) {
		t.Error("receiver sees a beam after the dark row")
	}
	if !sim.evaluate() {
		t.Error("evaluate() rejected a matching grid")
	}
}

func TestFacing_OffGridIsDark(t *testing.T) {
	all := signal.Of(signal.Up, signal.Right, signal.Down, signal.Left)
	state := []signal.State{all, all, all, all}

	// 2x2 grid, top-left cell.
	if facing(state, 2, 2, 0, 0, signal.Up) {
		t.Error("facing() above the grid = true, want false")
	}
	if facing(state, 2, 2, 0, 0, signal.Left) {
		t.Error("facing() left of the grid = true, want false")
	}
	if !facing(state, 2, 2, 0, 0, signal.Right) {
		t.Error("facing() from a lit right neighbour = false, want true")
	}

	state[1] = state[1].Clear(signal.Left)
	if facing(state, 2, 2, 0, 0, signal.Right) {
		t.Error("facing() reads the wrong bit of the right neighbour")
	}
}
