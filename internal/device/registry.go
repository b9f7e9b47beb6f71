package device

import (
	"fmt"

	"github.com/nerrad567/prelogate-core/internal/signal"
)

// ID is the compact identifier of a canonical device variant.
// Candidate grids are stored as ID sequences.
type ID uint8

// MaxVariants is the capacity of a Registry.
const MaxVariants = 32

// entry caches everything derived from one canonical variant.
type entry struct {
	device   Device
	table    TruthTable
	inputs   signal.State
	outputs  signal.State
	nontriv  bool
	isGate   bool
	horizIf  bool
	splitter bool
}

// Registry assigns stable IDs to every canonical variant of every kind and
// caches their truth tables and derived direction sets.
//
// A Registry is built once with NewRegistry and never mutated afterwards,
// so it is safe for concurrent read-only use.
type Registry struct {
	entries  []entry
	ids      map[Device]ID
	variants [numKinds][]ID
}

// NewRegistry canonicalises every kind and assigns IDs in kind order,
// identity rotation first. It panics if the variants do not fit in
// MaxVariants.
func NewRegistry() *Registry {
	r := &Registry{
		ids: make(map[Device]ID),
	}

	for _, k := range Kinds() {
		for _, d := range Variants(k) {
			if len(r.entries) >= MaxVariants {
				panic(fmt.Sprintf("device: registry capacity %d exceeded", MaxVariants))
			}
			id := ID(len(r.entries))
			r.entries = append(r.entries, newEntry(d))
			r.ids[d] = id
			r.variants[k] = append(r.variants[k], id)
		}
	}
	return r
}

func newEntry(d Device) entry {
	outputs := VariableOutputs(d)
	return entry{
		device:   d,
		table:    Table(d),
		inputs:   InfluentialInputs(d),
		outputs:  outputs,
		nontriv:  !d.Kind.IsTrivial(),
		isGate:   d.Kind.IsGate(),
		horizIf:  d.Kind == If && outputs.Get(signal.Left),
		splitter: d.Kind == Splitter || d.Kind == Diffuser,
	}
}

// ID returns the identifier of d.
func (r *Registry) ID(d Device) (ID, error) {
	id, ok := r.ids[d]
	if !ok {
		return 0, fmt.Errorf("%w: %v", ErrUnknownDevice, d)
	}
	return id, nil
}

// MustID is like ID but panics for unregistered devices.
func (r *Registry) MustID(d Device) ID {
	id, err := r.ID(d)
	if err != nil {
		panic(err)
	}
	return id
}

// Device returns the variant registered under id.
func (r *Registry) Device(id ID) Device {
	return r.entries[id].device
}

// Variants returns the canonical variants of k, identity first.
func (r *Registry) Variants(k Kind) []Device {
	ids := r.variants[k]
	out := make([]Device, len(ids))
	for i, id := range ids {
		out[i] = r.entries[id].device
	}
	return out
}

// Operate evaluates the cached truth table of id.
func (r *Registry) Operate(id ID, in signal.State) signal.State {
	return r.entries[id].table[in]
}

// InfluentialInputs returns the cached influential input directions of id.
func (r *Registry) InfluentialInputs(id ID) signal.State {
	return r.entries[id].inputs
}

// VariableOutputs returns the cached variable output directions of id.
func (r *Registry) VariableOutputs(id ID) signal.State {
	return r.entries[id].outputs
}

// Kind returns the base kind of id.
func (r *Registry) Kind(id ID) Kind {
	return r.entries[id].device.Kind
}

// Nontrivial reports whether id counts against the device budget.
func (r *Registry) Nontrivial(id ID) bool {
	return r.entries[id].nontriv
}

// IsGate reports whether id is an And, Or or Xor variant.
func (r *Registry) IsGate(id ID) bool {
	return r.entries[id].isGate
}

// IsHorizontalIf reports whether id is an If variant whose outputs leave
// through the left and right sides.
func (r *Registry) IsHorizontalIf(id ID) bool {
	return r.entries[id].horizIf
}

// IsSplitter reports whether id is a Splitter or Diffuser variant.
func (r *Registry) IsSplitter(id ID) bool {
	return r.entries[id].splitter
}
