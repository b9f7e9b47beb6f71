package device

import (
	"fmt"

	"github.com/nerrad567/prelogate-core/internal/signal"
)

// Device is a base kind placed at a rotation offset.
//
// Devices are plain comparable values with no mutable state, so they can be
// used as map keys and shared freely between goroutines. Rotation 0 is the
// kind's own frame; 1..3 are clockwise quarter turns.
type Device struct {
	Kind     Kind
	Rotation uint8
}

// New returns the unrotated device of the given kind.
func New(k Kind) Device {
	return Device{Kind: k}
}

// IsRotated reports whether d carries a non-zero rotation.
func (d Device) IsRotated() bool {
	return d.Rotation != 0
}

// Base returns the unrotated device of the same kind.
func (d Device) Base() Device {
	return Device{Kind: d.Kind}
}

// Operate maps the beams arriving at each side of the cell to the beams
// leaving each side. A rotated device evaluates its base in the base's own
// frame and rotates the result back.
func (d Device) Operate(in signal.State) signal.State {
	if d.Rotation == 0 {
		return transfer(d.Kind, in)
	}
	r := int(d.Rotation)
	return transfer(d.Kind, in.RotateLeft(r)).RotateRight(r)
}

// String renders the device as KIND or KINDr<n> for rotated variants.
func (d Device) String() string {
	if d.Rotation == 0 {
		return d.Kind.String()
	}
	return fmt.Sprintf("%sr%d", d.Kind, d.Rotation)
}

// transfer is the unrotated transfer function of each kind.
func transfer(k Kind, in signal.State) signal.State {
	u := in.Get(signal.Up)
	r := in.Get(signal.Right)
	d := in.Get(signal.Down)
	l := in.Get(signal.Left)

	switch k {
	case Empty:
		return signal.Make(d, l, u, r)
	case Wall:
		return signal.Empty
	case Mirror:
		return signal.Make(r, u, false, false)
	case Splitter:
		return signal.Make(d || r, l || u, u || l, r || d)
	case Diffuser:
		return signal.Make(r || d || l, u || d || l, u || r || l, u || r || d)
	case And:
		return signal.Make(r && l, false, false, false)
	case Or:
		return signal.Make(r || l, false, false, false)
	case Xor:
		return signal.Make(r != l, false, false, false)
	case If:
		active := l || r
		return signal.Make(active && u, false, active && d, false)
	default:
		panic(fmt.Sprintf("device: transfer of unknown kind %d", uint8(k)))
	}
}

// InfluentialInputs returns the directions whose isolated flip changes the
// output for at least one input state.
func InfluentialInputs(d Device) signal.State {
	var set signal.State
	for _, dir := range signal.Directions() {
		for _, in := range signal.All() {
			if d.Operate(in.With(dir)) != d.Operate(in.Clear(dir)) {
				set = set.With(dir)
				break
			}
		}
	}
	return set
}

// VariableOutputs returns the directions whose output bit is not constant
// across all 16 input states.
func VariableOutputs(d Device) signal.State {
	var seenTrue, seenFalse signal.State
	for _, in := range signal.All() {
		out := d.Operate(in)
		seenTrue |= out
		seenFalse |= ^out
	}
	return seenTrue & seenFalse & signal.Of(signal.Up, signal.Right, signal.Down, signal.Left)
}
