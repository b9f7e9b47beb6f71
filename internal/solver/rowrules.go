package solver

import (
	"github.com/nerrad567/prelogate-core/internal/device"
	"github.com/nerrad567/prelogate-core/internal/signal"
)

// discardRow reports whether a full row assignment is infeasible on its own.
func (e *Engine) discardRow(row combo) bool {
	return e.gatesFaceEachOther(row) || e.uselessSplitter(row)
}

// gatesFaceEachOther finds two gates with only Empty cells (or a
// horizontal If) between them whose outputs point at each other.
func (e *Engine) gatesFaceEachOther(row combo) bool {
	for i, first := range row {
		if !e.reg.IsGate(first) {
			continue
		}
		for _, second := range row[i+1:] {
			if e.reg.Kind(second) == device.Empty || e.reg.IsHorizontalIf(second) {
				continue
			}
			if !e.reg.IsGate(second) {
				break
			}
			if e.reg.VariableOutputs(first) == e.reg.VariableOutputs(second).Opposite() {
				return true
			}
			break
		}
	}
	return false
}

// uselessSplitter finds a Splitter or Diffuser whose nearest non-Empty
// neighbours on both sides neither feed it nor read from it.
func (e *Engine) uselessSplitter(row combo) bool {
	for i, id := range row {
		if !e.reg.IsSplitter(id) {
			continue
		}
		l := i - 1
		for l >= 0 && e.reg.Kind(row[l]) == device.Empty {
			l--
		}
		r := i + 1
		for r < len(row) && e.reg.Kind(row[r]) == device.Empty {
			r++
		}
		if l < 0 || r >= len(row) {
			continue
		}
		if !e.touches(row[l], signal.Right) && !e.touches(row[r], signal.Left) {
			return true
		}
	}
	return false
}

// touches reports whether id has an input or output on side d.
func (e *Engine) touches(id device.ID, d signal.Direction) bool {
	return e.reg.InfluentialInputs(id).Get(d) || e.reg.VariableOutputs(id).Get(d)
}
