// Package puzzle defines the grid problems handed to the solver and reads
// them from their text format.
//
// A Problem is a rectangular grid in which each cell lists the devices that
// may be placed there, plus a set of terminals. Emitters drive one column of
// the truth table into the grid; receivers check another column. Terminal
// cells hold a wall.
//
// # Text Format
//
//	; comment
//	A emitter right
//	B receiver left
//	. empty
//	x empty mirror splitter
//
//	A.xB
//
//	AB
//	11
//	00
//
// Legend, grid and truth table are separated by blank lines. Device names
// expand to every behaviourally distinct rotation of that kind.
package puzzle
