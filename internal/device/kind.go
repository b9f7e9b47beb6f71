package device

import (
	"fmt"
	"strings"
)

// Kind identifies one of the base device types that can occupy a grid cell.
type Kind uint8

// Base device kinds.
const (
	Empty Kind = iota
	Wall
	Mirror
	Splitter
	Diffuser
	And
	Or
	Xor
	If

	numKinds = int(If) + 1
)

var kindNames = [numKinds]string{
	Empty:    "EMPTY",
	Wall:     "WALL",
	Mirror:   "MIRROR",
	Splitter: "SPLITTER",
	Diffuser: "DIFFUSER",
	And:      "AND",
	Or:       "OR",
	Xor:      "XOR",
	If:       "IF",
}

// Kinds returns every base kind in declaration order.
func Kinds() []Kind {
	kinds := make([]Kind, numKinds)
	for i := range kinds {
		kinds[i] = Kind(i)
	}
	return kinds
}

// ParseKind converts a kind name (case-insensitive) to a Kind.
func ParseKind(s string) (Kind, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for i, n := range kindNames {
		if n == name {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// String returns the upper-case kind name.
func (k Kind) String() string {
	if int(k) < numKinds {
		return kindNames[k]
	}
	return fmt.Sprintf("KIND(%d)", uint8(k))
}

// IsGate reports whether k is a two-input boolean gate.
func (k Kind) IsGate() bool {
	return k == And || k == Or || k == Xor
}

// IsTrivial reports whether k does not count against the device budget.
func (k Kind) IsTrivial() bool {
	return k == Empty || k == Wall
}
