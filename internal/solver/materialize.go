package solver

import (
	"strings"

	"github.com/nerrad567/prelogate-core/internal/device"
)

// combo is one full-row device assignment.
type combo []device.ID

// rowTable buckets every surviving assignment of one row by the number of
// non-trivial devices it uses. Buckets above the budget are never built.
type rowTable struct {
	buckets [][]combo // index: device count, 0..min(budget, cols)
}

// bucket returns the assignments using exactly k devices.
func (t *rowTable) bucket(k int) []combo {
	if k < 0 || k >= len(t.buckets) {
		return nil
	}
	return t.buckets[k]
}

// keys returns the device counts with at least one assignment, ascending.
func (t *rowTable) keys() []int {
	var ks []int
	for k, b := range t.buckets {
		if len(b) > 0 {
			ks = append(ks, k)
		}
	}
	return ks
}

// materializeRows builds a rowTable for every grid row. Rows whose cell
// sets are identical share one table.
func (e *Engine) materializeRows() {
	shared := make(map[string]*rowTable)
	e.table = make([]*rowTable, e.rows)

	for r := 0; r < e.rows; r++ {
		sets := e.cells[r*e.cols : (r+1)*e.cols]
		key := rowKey(sets)
		t, ok := shared[key]
		if !ok {
			t = e.materialize(sets)
			shared[key] = t
			e.stats.DistinctRows++
		}
		e.table[r] = t
	}
}

// rowKey encodes a row of sorted cell sets. IDs fit in a byte.
func rowKey(sets [][]device.ID) string {
	var b strings.Builder
	for _, set := range sets {
		for _, id := range set {
			b.WriteByte(byte(id))
		}
		b.WriteByte(0xFF)
	}
	return b.String()
}

// materialize enumerates the cartesian product of sets with an odometer,
// the last cell turning fastest.
func (e *Engine) materialize(sets [][]device.ID) *rowTable {
	// A row never holds more devices than it has cells.
	t := &rowTable{buckets: make([][]combo, min(e.budget, len(sets))+1)}
	for _, set := range sets {
		if len(set) == 0 {
			return t
		}
	}

	digits := make([]int, len(sets))
	for {
		e.stats.RowCombinations++
		row := make(combo, len(sets))
		n := 0
		for i, set := range sets {
			row[i] = set[digits[i]]
			if e.reg.Nontrivial(row[i]) {
				n++
			}
		}

		switch {
		case e.rules.Has(RuleRows) && e.discardRow(row):
			e.stats.RowsDiscarded++
		case n > e.budget:
			e.stats.OverBudget++
		default:
			t.buckets[n] = append(t.buckets[n], row)
		}

		if !advance(digits, sets) {
			return t
		}
	}
}

// advance steps the odometer and reports false once it wraps.
func advance(digits []int, sets [][]device.ID) bool {
	for i := len(digits) - 1; i >= 0; i-- {
		digits[i]++
		if digits[i] < len(sets[i]) {
			return true
		}
		digits[i] = 0
	}
	return false
}
