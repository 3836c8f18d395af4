// Package addr provides the engine's address model: content-stable source
// identifiers, runtime scope discriminators, ports, and the deterministic
// NodeAddress sort key used wherever ordered iteration matters (tick
// processing, snapshot emission, test observability).
package addr

import (
	"fmt"
)

// SourceId is a content-stable identifier for an AST construct: a structural
// hash plus a parse-order tiebreaker. It survives reformatting of the
// surrounding source.
type SourceId struct {
	StableId   uint64
	ParseOrder uint32
}

// RootSource is the SourceId used for the synthetic root scope and for
// engine-internal nodes that have no corresponding AST construct.
var RootSource = SourceId{StableId: 0, ParseOrder: 0}

func (s SourceId) String() string {
	return fmt.Sprintf("src(%#x:%d)", s.StableId, s.ParseOrder)
}

// Less orders two SourceIds by (StableId, ParseOrder).
func (s SourceId) Less(o SourceId) bool {
	if s.StableId != o.StableId {
		return s.StableId < o.StableId
	}
	return s.ParseOrder < o.ParseOrder
}

// ScopeId is a runtime discriminator for dynamic instantiations: list items,
// WHILE arm activations, and function call sites. Two distinct list items
// share a SourceId but have different ScopeIds.
type ScopeId uint64

// RootScope is the fixed constant root scope every compiled program starts
// in.
const RootScope ScopeId = 0

// DeriveScope derives a child ScopeId from a parent scope and an
// instantiation key (an item key, a WHILE arm index, or a function call
// site SourceId) via a deterministic hash-and-multiply. Deterministic across
// runs given the same seed-independent inputs: DeriveScope never uses
// process-random state, only the fixed FNV-style mix below, so the same
// (parent, key) pair always yields the same ScopeId across ticks, snapshot
// restores, and processes.
func DeriveScope(parent ScopeId, key uint64) ScopeId {
	const prime = 1099511628211
	h := uint64(parent) ^ 1469598103934665603 // FNV offset basis
	h = (h ^ key) * prime
	h ^= h >> 33
	h *= 0xff51afd7ed558ccd
	h ^= h >> 33
	if h == uint64(RootScope) {
		// Avoid colliding with the reserved root constant; vanishingly rare,
		// but the invariant "only the root scope has ScopeId 0" must hold
		// exactly.
		h = 1
	}
	return ScopeId(h)
}

// Port identifies which named input/output slot of a node a route or inbox
// entry addresses.
type Port struct {
	// Kind discriminates between the default output, a numbered input (for
	// multi-input combiners), and a field tag (for field extraction on
	// routers).
	Kind PortKind
	// Index is meaningful when Kind == PortInput: the combiner input
	// number, 0-based.
	Index uint32
	// Field is meaningful when Kind == PortField: the interned field id
	// being extracted or updated.
	Field uint32
}

// PortKind discriminates the three port shapes described in spec.md §4.1.
type PortKind uint8

const (
	// PortDefault is a node's sole default output (or, for sinks, its sole
	// input).
	PortDefault PortKind = iota
	// PortInput addresses one numbered input slot of a multi-input
	// combiner.
	PortInput
	// PortField addresses a field tag, used by routers that distribute
	// field extractions.
	PortField
)

func (p Port) String() string {
	switch p.Kind {
	case PortInput:
		return fmt.Sprintf("in[%d]", p.Index)
	case PortField:
		return fmt.Sprintf("field[%d]", p.Field)
	default:
		return "default"
	}
}

// Less orders two ports by (Kind, Index, Field), giving a total order
// suitable for use as a tiebreaker in NodeAddress comparisons.
func (p Port) Less(o Port) bool {
	if p.Kind != o.Kind {
		return p.Kind < o.Kind
	}
	if p.Index != o.Index {
		return p.Index < o.Index
	}
	return p.Field < o.Field
}

// Domain discriminates independent execution domains sharing one arena
// instance. The engine core defines a single reactive domain; the field
// exists so a future hardware-lowering pass (out of scope, spec.md §1) can
// share the address space without ambiguity.
type Domain uint8

// DomainReactive is the only domain this core ever assigns.
const DomainReactive Domain = 0

// NodeAddress is (domain, source_id, scope_id, port): the deterministic
// sort key for tick ordering, snapshot emission order, and test
// observability (spec.md §4.1).
type NodeAddress struct {
	Domain   Domain
	Source   SourceId
	Scope    ScopeId
	NodePort Port
}

func (a NodeAddress) String() string {
	return fmt.Sprintf("%d/%s/%d/%s", a.Domain, a.Source, a.Scope, a.NodePort)
}

// Less implements the comparison order
// (domain, source_id.stable_id, source_id.parse_order, scope_id, port) used
// wherever deterministic iteration is required (spec.md §4.1).
func (a NodeAddress) Less(o NodeAddress) bool {
	if a.Domain != o.Domain {
		return a.Domain < o.Domain
	}
	if a.Source != o.Source {
		return a.Source.Less(o.Source)
	}
	if a.Scope != o.Scope {
		return a.Scope < o.Scope
	}
	return a.NodePort.Less(o.NodePort)
}

// Compare returns -1, 0, or 1 following the Less order, for use with
// sort.Slice-adjacent helpers that want a three-way comparator.
func Compare(a, b NodeAddress) int {
	switch {
	case a.Less(b):
		return -1
	case b.Less(a):
		return 1
	default:
		return 0
	}
}
