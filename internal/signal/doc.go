// Package signal provides the compass directions and the 4-bit beam state
// exchanged between neighbouring grid cells.
//
// A State holds one bit per direction (Up, Right, Down, Left). All 16
// values are plain integers, so equality is a value comparison and the
// full input space of a device can be sampled with All.
//
// # Usage
//
//	in := signal.Of(signal.Left)
//	out := in.RotateRight(1) // beam now arrives from Up
//	if out.Get(signal.Up) {
//	    ...
//	}
package signal
