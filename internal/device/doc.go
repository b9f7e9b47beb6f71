// Package device models the pieces that can occupy a puzzle grid cell.
//
// Every device is a pure transfer function from the beams arriving at a
// cell's four sides to the beams leaving them. Nine base kinds exist; each
// may be placed at one of four quarter-turn rotations, and rotations with
// identical behaviour are collapsed into a single canonical variant.
//
// # Key Types
//
//   - Kind: the base device type (Empty, Wall, Mirror, Splitter, ...)
//   - Device: a Kind at a rotation offset, comparable by value
//   - TruthTable: the 16-entry input to output table of a device
//   - Registry: stable small IDs for every canonical variant, with cached
//     truth tables and derived direction sets
//
// # Usage
//
//	reg := device.NewRegistry()
//	for _, d := range reg.Variants(device.Mirror) {
//	    id := reg.MustID(d)
//	    out := reg.Operate(id, signal.Of(signal.Right))
//	    ...
//	}
//
// # Thread Safety
//
// Devices are immutable values. A Registry is fully built by NewRegistry
// and only read afterwards, so one instance can be shared by every search
// worker.
package device
