package puzzle

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/nerrad567/prelogate-core/internal/device"
)

// Problem is a rectangular grid of admissible device sets plus the
// terminals that drive and check it. A Problem is immutable once built.
type Problem struct {
	name      string
	rows      int
	cols      int
	cells     [][]device.Device // row-major, len rows*cols
	terminals []Terminal
	byPos     map[Coordinate]int
}

// New validates the grid and terminals and builds a Problem.
//
// grid[r][c] lists the devices admissible at (r, c). Duplicate entries are
// dropped, keeping the first occurrence. Terminal cells must already hold
// their wall placeholder. Every terminal must carry the same, non-zero
// number of truth-table values.
func New(name string, grid [][][]device.Device, terminals []Terminal) (*Problem, error) {
	if len(grid) == 0 || len(grid[0]) == 0 {
		return nil, ErrEmptyGrid
	}

	p := &Problem{
		name:  name,
		rows:  len(grid),
		cols:  len(grid[0]),
		byPos: make(map[Coordinate]int, len(terminals)),
	}

	p.cells = make([][]device.Device, 0, p.rows*p.cols)
	for r, row := range grid {
		if len(row) != p.cols {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrRaggedGrid, r, len(row), p.cols)
		}
		for c, options := range row {
			set := dedupe(options)
			if len(set) == 0 {
				return nil, fmt.Errorf("%w: %s", ErrEmptyCell, Coordinate{r, c})
			}
			p.cells = append(p.cells, set)
		}
	}

	if err := p.setTerminals(terminals); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Problem) setTerminals(terminals []Terminal) error {
	if len(terminals) == 0 {
		return ErrNoTerminals
	}

	n := len(terminals[0].Values)
	if n == 0 {
		return fmt.Errorf("%w: terminal %c has no values", ErrInconsistentTruthTable, terminals[0].Symbol)
	}

	p.terminals = make([]Terminal, len(terminals))
	for i, t := range terminals {
		if len(t.Values) != n {
			return fmt.Errorf("%w: terminal %c has %d values, want %d",
				ErrInconsistentTruthTable, t.Symbol, len(t.Values), n)
		}
		if !p.InBounds(t.Pos) {
			return fmt.Errorf("%w: %c at %s is outside the grid", ErrInvalidTerminal, t.Symbol, t.Pos)
		}
		if j, dup := p.byPos[t.Pos]; dup {
			return fmt.Errorf("%w: %c and %c share %s", ErrInvalidTerminal, terminals[j].Symbol, t.Symbol, t.Pos)
		}
		p.byPos[t.Pos] = i

		t.Values = append([]bool(nil), t.Values...)
		p.terminals[i] = t
	}
	return nil
}

func dedupe(options []device.Device) []device.Device {
	out := make([]device.Device, 0, len(options))
	seen := make(map[device.Device]bool, len(options))
	for _, d := range options {
		if seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	return out
}

// Name returns the problem's display name.
func (p *Problem) Name() string {
	return p.name
}

// Rows returns the grid height.
func (p *Problem) Rows() int {
	return p.rows
}

// Cols returns the grid width.
func (p *Problem) Cols() int {
	return p.cols
}

// InBounds reports whether c lies on the grid.
func (p *Problem) InBounds(c Coordinate) bool {
	return c.Row >= 0 && c.Row < p.rows && c.Col >= 0 && c.Col < p.cols
}

// Options returns the admissible devices at c. The slice must not be
// modified.
func (p *Problem) Options(c Coordinate) []device.Device {
	return p.cells[c.Row*p.cols+c.Col]
}

// Terminals returns a copy of the terminal list.
func (p *Problem) Terminals() []Terminal {
	return append([]Terminal(nil), p.terminals...)
}

// TerminalAt returns the terminal occupying c, if any.
func (p *Problem) TerminalAt(c Coordinate) (Terminal, bool) {
	i, ok := p.byPos[c]
	if !ok {
		return Terminal{}, false
	}
	return p.terminals[i], true
}

// TruthRows returns the number of truth-table rows.
func (p *Problem) TruthRows() int {
	return len(p.terminals[0].Values)
}

// Digest returns a stable content hash of the grid and terminals, used to
// recognise repeated runs of the same problem.
func (p *Problem) Digest() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%dx%d\n", p.rows, p.cols)
	for i, set := range p.cells {
		names := make([]string, len(set))
		for j, d := range set {
			names[j] = d.String()
		}
		sort.Strings(names)
		fmt.Fprintf(&b, "%d:%s\n", i, strings.Join(names, ","))
	}
	for _, t := range p.terminals {
		fmt.Fprintf(&b, "%c:%s:%s:%s:", t.Symbol, t.Role, t.Pos, t.Facing)
		for _, v := range t.Values {
			if v {
				b.WriteByte('1')
			} else {
				b.WriteByte('0')
			}
		}
		b.WriteByte('\n')
	}
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
