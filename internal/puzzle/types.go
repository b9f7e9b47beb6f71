package puzzle

import (
	"fmt"

	"github.com/nerrad567/prelogate-core/internal/signal"
)

// Coordinate is a grid position. Rows grow downwards, columns rightwards.
type Coordinate struct {
	Row int
	Col int
}

// Step returns the neighbouring coordinate in direction d.
func (c Coordinate) Step(d signal.Direction) Coordinate {
	dr, dc := d.Delta()
	return Coordinate{Row: c.Row + dr, Col: c.Col + dc}
}

// Less orders coordinates row-major.
func (c Coordinate) Less(o Coordinate) bool {
	if c.Row != o.Row {
		return c.Row < o.Row
	}
	return c.Col < o.Col
}

func (c Coordinate) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}

// Role distinguishes signal sources from signal sinks.
type Role uint8

// Terminal roles.
const (
	Emitter Role = iota
	Receiver
)

func (r Role) String() string {
	if r == Emitter {
		return "emitter"
	}
	return "receiver"
}

// Terminal is a fixed grid location that drives (emitter) or checks
// (receiver) one column of the truth table. The terminal's own cell holds
// a wall; the terminal looks at the neighbouring cell in its Facing
// direction.
type Terminal struct {
	Symbol rune
	Role   Role
	Pos    Coordinate
	Facing signal.Direction

	// Values holds one entry per truth-table row.
	Values []bool
}

// IsEmitter reports whether the terminal drives a signal.
func (t Terminal) IsEmitter() bool {
	return t.Role == Emitter
}

// IsReceiver reports whether the terminal checks a signal.
func (t Terminal) IsReceiver() bool {
	return t.Role == Receiver
}

// Target is the coordinate the terminal faces.
func (t Terminal) Target() Coordinate {
	return t.Pos.Step(t.Facing)
}

// AnyTrue reports whether the terminal is true in at least one row.
func (t Terminal) AnyTrue() bool {
	for _, v := range t.Values {
		if v {
			return true
		}
	}
	return false
}

func (t Terminal) String() string {
	return fmt.Sprintf("%c %s %s at %s", t.Symbol, t.Role, t.Facing, t.Pos)
}
