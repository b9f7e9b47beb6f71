package signal

import (
	"fmt"
	"strings"
)

// Direction is one of the four compass directions on the grid.
// The numeric value doubles as the bit index inside a State.
type Direction uint8

// Compass directions in clockwise order.
const (
	Up Direction = iota
	Right
	Down
	Left
)

// numDirections is the size of the compass.
const numDirections = 4

// Directions returns the four directions in clockwise order starting at Up.
func Directions() [numDirections]Direction {
	return [numDirections]Direction{Up, Right, Down, Left}
}

// RotateRight turns the direction clockwise by n quarter turns.
func (d Direction) RotateRight(n int) Direction {
	return Direction((int(d) + mod4(n)) % numDirections)
}

// RotateLeft turns the direction counter-clockwise by n quarter turns.
func (d Direction) RotateLeft(n int) Direction {
	return d.RotateRight(-n)
}

// Opposite returns the direction pointing the other way.
func (d Direction) Opposite() Direction {
	return d.RotateRight(2)
}

// Delta returns the row and column offsets of one step in this direction.
// Rows grow downwards.
func (d Direction) Delta() (dRow, dCol int) {
	switch d {
	case Up:
		return -1, 0
	case Right:
		return 0, 1
	case Down:
		return 1, 0
	default:
		return 0, -1
	}
}

// String returns the lower-case direction name.
func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Right:
		return "right"
	case Down:
		return "down"
	case Left:
		return "left"
	default:
		return fmt.Sprintf("direction(%d)", uint8(d))
	}
}

// ParseDirection converts a direction name (case-insensitive) to a Direction.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up":
		return Up, nil
	case "right":
		return Right, nil
	case "down":
		return Down, nil
	case "left":
		return Left, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidDirection, s)
	}
}

func mod4(n int) int {
	n %= numDirections
	if n < 0 {
		n += numDirections
	}
	return n
}
