package signal

import (
	"errors"
	"strings"
)

// ErrInvalidDirection is returned when a direction name is not recognised.
var ErrInvalidDirection = errors.New("signal: invalid direction")

// State records, for each direction, whether a beam is present at that
// side of a cell. Bit i corresponds to Direction(i).
//
// State is also used as a set of directions when describing which sides of
// a device matter.
type State uint8

// stateMask keeps the four meaningful bits.
const stateMask State = 0x0F

// NumStates is the number of distinct State values.
const NumStates = 16

// Empty is the state with no beams present.
const Empty State = 0

// Make builds a State from per-direction flags.
func Make(up, right, down, left bool) State {
	var s State
	s = s.Set(Up, up)
	s = s.Set(Right, right)
	s = s.Set(Down, down)
	s = s.Set(Left, left)
	return s
}

// Of returns the State with exactly the given directions set.
func Of(dirs ...Direction) State {
	var s State
	for _, d := range dirs {
		s = s.With(d)
	}
	return s
}

// All returns every State value in ascending numeric order.
func All() [NumStates]State {
	var all [NumStates]State
	for i := range all {
		all[i] = State(i)
	}
	return all
}

// Get reports whether the beam in direction d is present.
func (s State) Get(d Direction) bool {
	return s&(1<<d) != 0
}

// Set returns s with the bit for d set to v.
func (s State) Set(d Direction, v bool) State {
	if v {
		return s.With(d)
	}
	return s.Clear(d)
}

// With returns s with the bit for d set.
func (s State) With(d Direction) State {
	return (s | 1<<d) & stateMask
}

// Clear returns s with the bit for d cleared.
func (s State) Clear(d Direction) State {
	return s &^ (1 << d) & stateMask
}

// RotateRight moves every bit clockwise by n quarter turns: the value at
// direction d ends up at d.RotateRight(n).
func (s State) RotateRight(n int) State {
	k := uint(mod4(n))
	s &= stateMask
	return (s<<k | s>>(numDirections-k)) & stateMask
}

// RotateLeft is the inverse of RotateRight.
func (s State) RotateLeft(n int) State {
	return s.RotateRight(-n)
}

// Opposite returns the set of directions opposite to those in s.
func (s State) Opposite() State {
	return s.RotateRight(2)
}

// Directions lists the set directions in clockwise order from Up.
func (s State) Directions() []Direction {
	var dirs []Direction
	for _, d := range Directions() {
		if s.Get(d) {
			dirs = append(dirs, d)
		}
	}
	return dirs
}

// Count returns the number of set directions.
func (s State) Count() int {
	n := 0
	for _, d := range Directions() {
		if s.Get(d) {
			n++
		}
	}
	return n
}

// IsEmpty reports whether no direction is set.
func (s State) IsEmpty() bool {
	return s&stateMask == 0
}

// Overlaps reports whether s and o share at least one direction.
func (s State) Overlaps(o State) bool {
	return s&o&stateMask != 0
}

// String renders the state as the initials of the set directions, or "-".
func (s State) String() string {
	if s.IsEmpty() {
		return "-"
	}
	var b strings.Builder
	for _, d := range s.Directions() {
		b.WriteByte(strings.ToUpper(d.String())[0])
	}
	return b.String()
}
