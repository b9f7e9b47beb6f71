package solver

import (
	"github.com/nerrad567/prelogate-core/internal/device"
	"github.com/nerrad567/prelogate-core/internal/puzzle"
	"github.com/nerrad567/prelogate-core/internal/signal"
)

// pruneCells applies the enabled cell rules in order: walls, emitters,
// receivers. Each rule only removes devices that cannot appear in any
// solution.
func (e *Engine) pruneCells() {
	if e.rules.Has(RuleWalls) {
		e.stats.Walls = e.pruneOutputsFacingWalls()
	}
	if e.rules.Has(RuleEmitters) {
		e.stats.Emitters = e.pruneNoInputFromEmitter()
	}
	if e.rules.Has(RuleReceivers) {
		e.stats.Receivers = e.pruneNoOutputToReceiver()
	}
}

// isOnly reports whether cell holds exactly the one device of kind k.
func (e *Engine) isOnly(idx int, k device.Kind) bool {
	set := e.cells[idx]
	return len(set) == 1 && e.reg.Kind(set[0]) == k
}

func (e *Engine) hasKind(idx int, k device.Kind) bool {
	for _, id := range e.cells[idx] {
		if e.reg.Kind(id) == k {
			return true
		}
	}
	return false
}

// skipEmpty walks from c in direction d past cells that can only be Empty.
// It returns the first cell that is off-grid or admits something else.
func (e *Engine) skipEmpty(c puzzle.Coordinate, d signal.Direction) puzzle.Coordinate {
	for e.problem.InBounds(c) && e.isOnly(e.index(c), device.Empty) {
		c = c.Step(d)
	}
	return c
}

// pruneOutputsFacingWalls removes devices whose outputs can only end in a
// wall. Emitter cells count as walls for gates, whose inputs and outputs
// are disjoint, but not for the devices a beam can pass through.
func (e *Engine) pruneOutputsFacingWalls() int {
	removed := 0
	for idx := range e.cells {
		if e.hasKind(idx, device.Wall) {
			continue
		}
		pos := puzzle.Coordinate{Row: idx / e.cols, Col: idx % e.cols}

		var drop []device.ID
		for _, id := range e.cells[idx] {
			if e.outputsBlocked(pos, id) {
				drop = append(drop, id)
			}
		}
		removed += e.remove(idx, drop)
	}
	return removed
}

func (e *Engine) outputsBlocked(pos puzzle.Coordinate, id device.ID) bool {
	inputs := e.reg.InfluentialInputs(id)
	outputs := e.reg.VariableOutputs(id)
	passThrough := inputs.Overlaps(outputs)

	var walled []signal.Direction
	for _, d := range outputs.Directions() {
		if e.facesWall(pos, d, passThrough) {
			walled = append(walled, d)
		}
	}

	if !passThrough {
		return len(walled) > 0
	}
	switch e.reg.Kind(id) {
	case device.Mirror, device.If:
		return len(walled) >= 1
	case device.Splitter, device.Diffuser:
		return len(walled) >= 3 ||
			(len(walled) == 2 && walled[0].Opposite() != walled[1])
	}
	// Empty has nothing to lose: removing it would change the budget.
	return false
}

// facesWall reports whether the beam leaving pos in direction d hits a
// fixed wall. Off-grid counts as a wall; receivers never do.
func (e *Engine) facesWall(pos puzzle.Coordinate, d signal.Direction, passThrough bool) bool {
	n := e.skipEmpty(pos.Step(d), d)
	if !e.problem.InBounds(n) {
		return true
	}
	if !e.isOnly(e.index(n), device.Wall) {
		return false
	}
	t, ok := e.problem.TerminalAt(n)
	if !ok {
		return true
	}
	if t.IsReceiver() {
		return false
	}
	return !passThrough
}

// pruneNoInputFromEmitter removes devices in front of an emitter that
// ignore its beam, for emitters that must drive some receiver on their own.
func (e *Engine) pruneNoInputFromEmitter() int {
	removed := 0
	for _, em := range e.emitters {
		if !e.mustFlow(em) {
			continue
		}
		n := e.skipEmpty(em.Pos.Step(em.Facing), em.Facing)
		if !e.problem.InBounds(n) {
			continue
		}
		if _, ok := e.problem.TerminalAt(n); ok {
			continue
		}
		from := em.Facing.Opposite()
		idx := e.index(n)

		var drop []device.ID
		for _, id := range e.cells[idx] {
			if !e.reg.InfluentialInputs(id).Get(from) {
				drop = append(drop, id)
			}
		}
		if len(drop) > 0 {
			e.logger.Debug("pruned devices deaf to emitter",
				"emitter", string(em.Symbol), "cell", n.String(), "removed", len(drop))
		}
		removed += e.remove(idx, drop)
	}
	return removed
}

// mustFlow reports whether some truth-table row has em as the only true
// emitter while at least one receiver is true.
func (e *Engine) mustFlow(em boundTerminal) bool {
	for row, v := range em.Values {
		if !v {
			continue
		}
		alone := true
		for _, other := range e.emitters {
			if other.idx != em.idx && other.Values[row] {
				alone = false
				break
			}
		}
		if !alone {
			continue
		}
		for _, rc := range e.receivers {
			if rc.Values[row] {
				return true
			}
		}
	}
	return false
}

// pruneNoOutputToReceiver removes devices next to a receiver that can never
// send a signal towards it, for receivers that are true in some row.
func (e *Engine) pruneNoOutputToReceiver() int {
	removed := 0
	for _, rc := range e.receivers {
		if !rc.AnyTrue() {
			continue
		}
		n := rc.Target()
		if !e.problem.InBounds(n) {
			continue
		}
		if _, ok := e.problem.TerminalAt(n); ok {
			continue
		}
		toward := rc.Facing.Opposite()
		idx := e.index(n)

		var drop []device.ID
		for _, id := range e.cells[idx] {
			if !e.reg.VariableOutputs(id).Get(toward) {
				drop = append(drop, id)
			}
		}
		if len(drop) > 0 {
			e.logger.Debug("pruned devices silent to receiver",
				"receiver", string(rc.Symbol), "cell", n.String(), "removed", len(drop))
		}
		removed += e.remove(idx, drop)
	}
	return removed
}

// remove deletes drop from the cell's set, preserving order.
func (e *Engine) remove(idx int, drop []device.ID) int {
	if len(drop) == 0 {
		return 0
	}
	gone := make(map[device.ID]bool, len(drop))
	for _, id := range drop {
		gone[id] = true
	}
	kept := e.cells[idx][:0:0]
	for _, id := range e.cells[idx] {
		if !gone[id] {
			kept = append(kept, id)
		}
	}
	e.cells[idx] = kept
	return len(drop)
}
