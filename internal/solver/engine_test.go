package solver

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/nerrad567/prelogate-core/internal/device"
	"github.com/nerrad567/prelogate-core/internal/puzzle"
	"github.com/nerrad567/prelogate-core/internal/signal"
)

// ─── Fixtures ───────────────────────────────────────────────────────────────

const straightThrough = `
E emitter right
R receiver left
. empty

E.R

ER
11
`

const straightBlocked = `
E emitter right
R receiver left
. empty

E.R

ER
10
`

// pickOne has exactly three solutions at budget 1: the emitter's beam runs
// through an Empty cell into a device at (1,2) that turns it down into the
// receiver.
const pickOne = `
# wall
E emitter right
R receiver up
x empty mirror and or xor

####
Exx#
##R#

ER
11
00
`

func mustParse(t *testing.T, src string) *puzzle.Problem {
	t.Helper()
	p, err := puzzle.Parse(strings.NewReader(src), t.Name(), device.NewRegistry())
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return p
}

func newEngine(t *testing.T, src string, budget int, opts Options) *Engine {
	t.Helper()
	e, err := New(mustParse(t, src), device.NewRegistry(), budget, opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return e
}

func solutionNames(sols []Solution) []string {
	out := make([]string, len(sols))
	for i, s := range sols {
		out[i] = s.String()
	}
	return out
}

// ─── Construction ───────────────────────────────────────────────────────────

func TestNew_NegativeBudget(t *testing.T) {
	_, err := New(mustParse(t, straightThrough), device.NewRegistry(), -1, Options{})
	if !errors.Is(err, ErrNegativeBudget) {
		t.Errorf("New() error = %v, want ErrNegativeBudget", err)
	}
}

func TestNew_BudgetAboveCellCount(t *testing.T) {
	for _, budget := range []int{4, 1 << 40, math.MaxInt} {
		e := newEngine(t, pickOne, budget, Options{})
		if e.Budget() != budget {
			t.Errorf("Budget() = %d, want %d", e.Budget(), budget)
		}
		if e.Partitions() != 0 {
			t.Errorf("budget %d: Partitions() = %d, want 0", budget, e.Partitions())
		}
		if got := e.CountTrials(); got != 0 {
			t.Errorf("budget %d: CountTrials() = %d, want 0", budget, got)
		}
		sols, stats, err := e.Search(context.Background())
		if err != nil {
			t.Fatalf("budget %d: Search() error = %v", budget, err)
		}
		if len(sols) != 0 || stats.Candidates != 0 {
			t.Errorf("budget %d: Search() = %d solutions over %d candidates, want none",
				budget, len(sols), stats.Candidates)
		}
	}
}

func TestNew_NilArguments(t *testing.T) {
	if _, err := New(nil, device.NewRegistry(), 0, Options{}); !errors.Is(err, ErrNilProblem) {
		t.Errorf("New(nil problem) error = %v, want ErrNilProblem", err)
	}
	if _, err := New(mustParse(t, straightThrough), nil, 0, Options{}); !errors.Is(err, ErrNilRegistry) {
		t.Errorf("New(nil registry) error = %v, want ErrNilRegistry", err)
	}
}

func TestNew_UnregisteredDevice(t *testing.T) {
	// Splitter has two canonical variants, so r2 is not registered.
	grid := [][][]device.Device{{
		{device.New(device.Wall)},
		{{Kind: device.Splitter, Rotation: 2}},
	}}
	terms := []puzzle.Terminal{{
		Symbol: 'E', Role: puzzle.Emitter, Facing: signal.Right, Values: []bool{true},
	}}
	p, err := puzzle.New("bad", grid, terms)
	if err != nil {
		t.Fatalf("puzzle.New() error = %v", err)
	}

	_, err = New(p, device.NewRegistry(), 1, Options{})
	if !errors.Is(err, device.ErrUnknownDevice) {
		t.Errorf("New() error = %v, want ErrUnknownDevice", err)
	}
}

func TestNew_DefaultWorkers(t *testing.T) {
	e := newEngine(t, straightThrough, 0, Options{})
	if e.Workers() < 1 {
		t.Errorf("Workers() = %d, want >= 1", e.Workers())
	}
	if e.Rules() != AllRules {
		t.Errorf("Rules() = %v, want %v", e.Rules(), AllRules)
	}

	e = newEngine(t, straightThrough, 0, Options{Workers: 3, Disabled: RuleRows})
	if e.Workers() != 3 {
		t.Errorf("Workers() = %d, want 3", e.Workers())
	}
	if e.Rules().Has(RuleRows) {
		t.Errorf("Rules() = %v, rows should be disabled", e.Rules())
	}
}

// ─── Search ─────────────────────────────────────────────────────────────────

func TestSearch_StraightThrough(t *testing.T) {
	e := newEngine(t, straightThrough, 0, Options{})

	sols, stats, err := e.Search(context.Background())
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(sols) != 1 {
		t.Fatalf("Search() found %d solutions, want 1", len(sols))
	}
	if stats.Solutions != 1 {
		t.Errorf("Stats.Solutions = %d, want 1", stats.Solutions)
	}

	got := sols[0].Lines(e.Problem())
	if len(got) != 1 || got[0] != "E\tEMPTY\tR" {
		t.Errorf("Lines() = %q, want [\"E\\tEMPTY\\tR\"]", got)
	}
}

func TestSearch_StraightBlocked(t *testing.T) {
	e := newEngine(t, straightBlocked, 0, Options{})

	sols, _, err := e.Search(context.Background())
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(sols) != 0 {
		t.Errorf("Search() found %d solutions, want 0: %v", len(sols), solutionNames(sols))
	}
}

func TestSearch_PickOne(t *testing.T) {
	want := []string{"MIRRORr2", "ORr2", "XORr2"}

	for _, tc := range []struct {
		name     string
		disabled Rules
	}{
		{"all rules", 0},
		{"no rules", AllRules},
		{"rows only", RuleWalls | RuleEmitters | RuleReceivers},
	} {
		t.Run(tc.name, func(t *testing.T) {
			e := newEngine(t, pickOne, 1, Options{Disabled: tc.disabled, Workers: 2})

			sols, _, err := e.Search(context.Background())
			if err != nil {
				t.Fatalf("Search() error = %v", err)
			}
			if len(sols) != len(want) {
				t.Fatalf("Search() found %d solutions, want %d: %v", len(sols), len(want), solutionNames(sols))
			}
			for i, s := range sols {
				if d := s.At(puzzle.Coordinate{Row: 1, Col: 1}); d != device.New(device.Empty) {
					t.Errorf("solution %d: (1,1) = %v, want EMPTY", i, d)
				}
				if d := s.At(puzzle.Coordinate{Row: 1, Col: 2}).String(); d != want[i] {
					t.Errorf("solution %d: (1,2) = %s, want %s", i, d, want[i])
				}
			}
		})
	}
}

func TestPruning_ReducesTrials(t *testing.T) {
	pruned := newEngine(t, pickOne, 1, Options{})
	full := newEngine(t, pickOne, 1, Options{Disabled: AllRules})

	if pruned.CountTrials() >= full.CountTrials() {
		t.Errorf("CountTrials() pruned = %d, unpruned = %d, want pruned < unpruned",
			pruned.CountTrials(), full.CountTrials())
	}
	st := pruned.PruneStats()
	if st.Walls+st.Emitters+st.Receivers == 0 {
		t.Errorf("PruneStats() = %+v, want some cell removals", st)
	}
}

func TestCountTrials_MatchesSearch(t *testing.T) {
	for _, budget := range []int{0, 1, 2} {
		for _, disabled := range []Rules{0, AllRules} {
			e := newEngine(t, pickOne, budget, Options{Disabled: disabled})

			_, stats, err := e.Search(context.Background())
			if err != nil {
				t.Fatalf("Search() error = %v", err)
			}
			if got := e.CountTrials(); got != stats.Candidates {
				t.Errorf("budget %d rules %v: CountTrials() = %d, evaluated %d",
					budget, e.Rules(), got, stats.Candidates)
			}
		}
	}
}

func TestCountTrials_SharedRows(t *testing.T) {
	// The two middle rows share one materialization but both count.
	const src = `
E emitter right
R receiver left
x empty mirror

E...
.xx.
.xx.
...R

ER
1 0
`
	e := newEngine(t, src, 1, Options{Disabled: AllRules})
	if e.PruneStats().DistinctRows != 3 {
		t.Errorf("DistinctRows = %d, want 3", e.PruneStats().DistinctRows)
	}

	// One mirror among four x cells, each with four variants.
	if got := e.CountTrials(); got != 16 {
		t.Errorf("CountTrials() = %d, want 16", got)
	}
}

func TestSearchFunc_VisitErrorStops(t *testing.T) {
	e := newEngine(t, pickOne, 1, Options{Workers: 1})
	errStop := errors.New("stop")

	calls := 0
	_, err := e.SearchFunc(context.Background(), func(Solution) error {
		calls++
		return errStop
	})
	if !errors.Is(err, errStop) {
		t.Errorf("SearchFunc() error = %v, want errStop", err)
	}
	if calls != 1 {
		t.Errorf("visit called %d times, want 1", calls)
	}
}

func TestSearch_Cancelled(t *testing.T) {
	e := newEngine(t, pickOne, 1, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := e.Search(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Search() error = %v, want context.Canceled", err)
	}
}

func TestSearch_Repeatable(t *testing.T) {
	e := newEngine(t, pickOne, 1, Options{Workers: 4})

	first, _, err := e.Search(context.Background())
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	second, _, err := e.Search(context.Background())
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	a, b := solutionNames(first), solutionNames(second)
	if strings.Join(a, "|") != strings.Join(b, "|") {
		t.Errorf("Search() not repeatable:\n%v\n%v", a, b)
	}
}

func TestStats_CandidatesPerSecond(t *testing.T) {
	if got := (Stats{Candidates: 10}).CandidatesPerSecond(); got != 0 {
		t.Errorf("CandidatesPerSecond() with no elapsed time = %v, want 0", got)
	}
}
