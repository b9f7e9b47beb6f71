package puzzle

import "errors"

// Domain errors for the puzzle package.
//
// These errors can be checked using errors.Is():
//
//	if errors.Is(err, puzzle.ErrInconsistentTruthTable) {
//	    // terminal value sequences differ in length
//	}
var (
	// ErrEmptyGrid is returned when a problem has no cells.
	ErrEmptyGrid = errors.New("puzzle: empty grid")

	// ErrRaggedGrid is returned when grid rows differ in length.
	ErrRaggedGrid = errors.New("puzzle: grid is not rectangular")

	// ErrEmptyCell is returned when a cell admits no device at all.
	ErrEmptyCell = errors.New("puzzle: cell admits no device")

	// ErrNoTerminals is returned when a problem has no emitters or receivers.
	ErrNoTerminals = errors.New("puzzle: no terminals")

	// ErrInvalidTerminal is returned for terminals outside the grid or
	// sharing a cell with another terminal.
	ErrInvalidTerminal = errors.New("puzzle: invalid terminal")

	// ErrInconsistentTruthTable is returned when terminal value sequences
	// differ in length or are empty.
	ErrInconsistentTruthTable = errors.New("puzzle: inconsistent truth table")

	// ErrSyntax is returned for malformed problem text.
	ErrSyntax = errors.New("puzzle: syntax error")

	// ErrUnknownSymbol is returned when the grid uses a symbol with no
	// legend entry.
	ErrUnknownSymbol = errors.New("puzzle: unknown symbol")

	// ErrFileTooLarge is returned when a problem file exceeds MaxFileSize.
	ErrFileTooLarge = errors.New("puzzle: file too large")
)
