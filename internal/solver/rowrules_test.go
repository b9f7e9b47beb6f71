package solver

import (
	"testing"

	"github.com/nerrad567/prelogate-core/internal/device"
)

func TestDiscardRow(t *testing.T) {
	reg := device.NewRegistry()
	e := &Engine{reg: reg}

	var (
		empty   = device.New(device.Empty)
		wall    = device.New(device.Wall)
		mirror  = device.New(device.Mirror)
		split   = device.New(device.Splitter)
		diffuse = device.New(device.Diffuser)
		andR    = rot(device.And, 1) // output right
		orL     = rot(device.Or, 3)  // output left
		xorUp   = device.New(device.Xor)
		ifH     = rot(device.If, 1)
	)

	tests := []struct {
		name string
		row  []device.Device
		want bool
	}{
		{"gates facing", []device.Device{andR, orL}, true},
		{"gates facing across empty", []device.Device{andR, empty, empty, orL}, true},
		{"gates facing across horizontal if", []device.Device{andR, ifH, orL}, true},
		{"mirror between gates", []device.Device{andR, mirror, orL}, false},
		{"gates not opposite", []device.Device{andR, xorUp}, false},
		{"lone gate", []device.Device{wall, andR, wall}, false},
		{"splitter between walls", []device.Device{wall, split, wall}, true},
		{"diffuser between walls across empty", []device.Device{wall, empty, diffuse, empty, wall}, true},
		{"splitter at row edge", []device.Device{split, wall}, false},
		{"splitter fed from left", []device.Device{empty, andR, split, wall}, false},
		{"splitter read from right", []device.Device{wall, split, orL}, false},
		{"plain row", []device.Device{wall, empty, mirror, wall}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := make(combo, len(tt.row))
			for i, d := range tt.row {
				row[i] = reg.MustID(d)
			}
			if got := e.discardRow(row); got != tt.want {
				t.Errorf("discardRow(%v) = %v, want %v", tt.row, got, tt.want)
			}
		})
	}
}

func TestAdvance(t *testing.T) {
	sets := [][]device.ID{{1, 2}, {3}, {4, 5, 6}}
	digits := make([]int, len(sets))

	n := 1
	for advance(digits, sets) {
		n++
	}
	if n != 6 {
		t.Errorf("advance() visited %d combinations, want 6", n)
	}
	for i, d := range digits {
		if d != 0 {
			t.Errorf("digits[%d] = %d after wrap, want 0", i, d)
		}
	}
}
