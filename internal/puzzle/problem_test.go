package puzzle

import (
	"errors"
	"testing"

	"github.com/nerrad567/prelogate-core/internal/device"
	"github.com/nerrad567/prelogate-core/internal/signal"
)

func lineGrid() [][][]device.Device {
	wall := []device.Device{device.New(device.Wall)}
	empty := []device.Device{device.New(device.Empty), device.New(device.Empty)}
	return [][][]device.Device{{wall, empty, wall}}
}

func TestNew_Valid(t *testing.T) {
	terms := []Terminal{
		{Symbol: 'E', Role: Emitter, Pos: Coordinate{0, 0}, Facing: signal.Right, Values: []bool{true}},
		{Symbol: 'R', Role: Receiver, Pos: Coordinate{0, 2}, Facing: signal.Left, Values: []bool{true}},
	}
	p, err := New("line", lineGrid(), terms)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if got := len(p.Options(Coordinate{0, 1})); got != 1 {
		t.Errorf("duplicate options kept: len = %d, want 1", got)
	}

	// The problem owns its copy of the terminal values.
	terms[0].Values[0] = false
	if !p.Terminals()[0].Values[0] {
		t.Error("New() did not copy terminal values")
	}

	if p.Terminals()[1].Target() != (Coordinate{0, 1}) {
		t.Errorf("Target() = %v, want (0,1)", p.Terminals()[1].Target())
	}
}

func TestNew_Errors(t *testing.T) {
	ok := func() []Terminal {
		return []Terminal{
			{Symbol: 'E', Role: Emitter, Pos: Coordinate{0, 0}, Facing: signal.Right, Values: []bool{true, false}},
			{Symbol: 'R', Role: Receiver, Pos: Coordinate{0, 2}, Facing: signal.Left, Values: []bool{true, false}},
		}
	}

	tests := []struct {
		name  string
		grid  [][][]device.Device
		terms func() []Terminal
		want  error
	}{
		{"empty grid", nil, ok, ErrEmptyGrid},
		{"empty cell", [][][]device.Device{{nil}}, ok, ErrEmptyCell},
		{"no terminals", lineGrid(), func() []Terminal { return nil }, ErrNoTerminals},
		{"inconsistent lengths", lineGrid(), func() []Terminal {
			ts := ok()
			ts[1].Values = []bool{true}
			return ts
		}, ErrInconsistentTruthTable},
		{"terminal off grid", lineGrid(), func() []Terminal {
			ts := ok()
			ts[1].Pos = Coordinate{0, 3}
			return ts
		}, ErrInvalidTerminal},
		{"shared cell", lineGrid(), func() []Terminal {
			ts := ok()
			ts[1].Pos = ts[0].Pos
			return ts
		}, ErrInvalidTerminal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.name, tt.grid, tt.terms())
			if !errors.Is(err, tt.want) {
				t.Errorf("New() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDigest(t *testing.T) {
	terms := []Terminal{
		{Symbol: 'E', Role: Emitter, Pos: Coordinate{0, 0}, Facing: signal.Right, Values: []bool{true}},
		{Symbol: 'R', Role: Receiver, Pos: Coordinate{0, 2}, Facing: signal.Left, Values: []bool{true}},
	}
	a, _ := New("a", lineGrid(), terms)
	b, _ := New("b", lineGrid(), terms)
	if a.Digest() != b.Digest() {
		t.Error("Digest() differs for identical problems")
	}

	terms[1].Values = []bool{false}
	c, _ := New("c", lineGrid(), terms)
	if a.Digest() == c.Digest() {
		t.Error("Digest() equal for different truth tables")
	}
}
