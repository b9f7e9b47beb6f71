package device

import (
	"fmt"

	"github.com/nerrad567/prelogate-core/internal/signal"
)

// maxRotation is the largest quarter-turn offset a device can carry.
const maxRotation = 3

// TruthTable is the output of a device for each of the 16 input states,
// indexed by the input value.
type TruthTable [signal.NumStates]signal.State

// Table computes the full truth table of d.
func Table(d Device) TruthTable {
	var t TruthTable
	for _, in := range signal.All() {
		t[in] = d.Operate(in)
	}
	return t
}

// Rotate places an unrotated device at offset r (1..3).
func Rotate(base Device, r int) (Device, error) {
	if base.IsRotated() {
		return Device{}, fmt.Errorf("%w: %v", ErrAlreadyRotated, base)
	}
	if r < 1 || r > maxRotation {
		return Device{}, fmt.Errorf("%w: %d", ErrInvalidRotation, r)
	}
	return Device{Kind: base.Kind, Rotation: uint8(r)}, nil
}

// MustRotate is like Rotate but panics on a contract violation.
func MustRotate(base Device, r int) Device {
	d, err := Rotate(base, r)
	if err != nil {
		panic(err)
	}
	return d
}

// Variants returns the behaviourally distinct rotations of kind k, identity
// first. Two rotations are the same variant when their truth tables match.
func Variants(k Kind) []Device {
	base := New(k)
	variants := []Device{base}
	seen := []TruthTable{Table(base)}

	for r := 1; r <= maxRotation; r++ {
		d := MustRotate(base, r)
		t := Table(d)
		if containsTable(seen, t) {
			continue
		}
		variants = append(variants, d)
		seen = append(seen, t)
	}
	return variants
}

func containsTable(tables []TruthTable, t TruthTable) bool {
	for _, s := range tables {
		if s == t {
			return true
		}
	}
	return false
}
