package engine

import (
	"github.com/BoonLang/boon-sub004/internal/addr"
	"github.com/BoonLang/boon-sub004/internal/arena"
	"github.com/BoonLang/boon-sub004/internal/message"
)

// Kind is the tagged enumeration discriminating the engine's node kinds
// (spec.md §4.6). Dispatch is a switch on Kind — no virtual tables, per
// spec.md's Design Notes ("Node kinds are a tagged enumeration with inline
// state; dispatch is a match on the tag").
type Kind uint8

const (
	KindProducer Kind = iota
	KindWire
	KindRouter
	KindCombinerLatest
	KindRegisterHold
	KindTransformerThen
	KindPatternMuxWhen
	KindSwitchedWireWhile
	KindBusList
	KindTextTemplate
	KindElementState
	KindIOPad
	KindEffect
)

func (k Kind) String() string {
	switch k {
	case KindProducer:
		return "Producer"
	case KindWire:
		return "Wire"
	case KindRouter:
		return "Router"
	case KindCombinerLatest:
		return "Latest"
	case KindRegisterHold:
		return "Hold"
	case KindTransformerThen:
		return "Then"
	case KindPatternMuxWhen:
		return "When"
	case KindSwitchedWireWhile:
		return "While"
	case KindBusList:
		return "List"
	case KindTextTemplate:
		return "TextTemplate"
	case KindElementState:
		return "ElementState"
	case KindIOPad:
		return "IOPad"
	case KindEffect:
		return "Effect"
	default:
		return "Unknown"
	}
}

// hasDefaultOutput reports whether nodes of this kind have a subscribable
// default output port. Expressed as a predicate on the kind rather than a
// capability interface, per spec.md's Design Notes ("Polymorphic
// capability sets... are expressed as predicates on the kind").
func (k Kind) hasDefaultOutput() bool {
	switch k {
	case KindRouter, KindEffect:
		return false
	default:
		return true
	}
}

// node is the arena extension stored for every live reactive node: a
// common header (kind, address, owning scope) plus kind-specific state.
// This is the Go shape of spec.md's "ReactiveNode (arena entry)": the
// "fixed header" is the struct fields below, the "optional boxed
// extension" is the State field, allocated by each node constructor.
type node struct {
	kind    Kind
	address addr.NodeAddress
	// owner is the ScopeId this node's slot belongs to; scope finalization
	// frees every node whose owner matches the finalizing scope.
	owner addr.ScopeId
	// version is the monotonic counter bumped each time this node's
	// emitted value changes, used for version-based dedup (spec.md Design
	// Notes).
	version uint64
	// lastValue and hasValue cache the most recent payload this node's
	// transition emitted. The common header carries this (rather than each
	// kind's own state) so any node kind can read a sibling's "current
	// value" uniformly — WHEN/WHILE arm bodies and THEN's gated forward all
	// need exactly this.
	lastValue message.Payload
	hasValue  bool
	// state is the kind-specific payload; each node_*.go file defines and
	// type-asserts its own concrete type here.
	state any
}

// currentValue returns the node's most recently emitted payload, if any.
func currentValue(n *node) (message.Payload, bool) {
	if n == nil || !n.hasValue {
		return message.Payload{}, false
	}
	return n.lastValue, true
}

// transition is the function signature every node kind implements: given
// the engine state, the slot being woken, and the port that was dirtied,
// read the node's inbox entry, update internal state, and return the
// output payload to deliver to subscribers (ok=false means "no
// emission", e.g. a WHEN arm that didn't match, or an idempotent Producer
// re-wake).
type transition func(l *Loop, slot arena.SlotId, n *node, port addr.Port) (out message.Payload, ok bool)

// transitions dispatches by Kind. A package-level table keeps the switch
// in one place instead of scattering it across call sites.
var transitions = map[Kind]transition{
	KindProducer:          producerTransition,
	KindWire:              wireTransition,
	KindRouter:            routerTransition,
	KindCombinerLatest:    latestTransition,
	KindRegisterHold:      holdTransition,
	KindTransformerThen:   thenTransition,
	KindPatternMuxWhen:    whenTransition,
	KindSwitchedWireWhile: whileTransition,
	KindBusList:           busTransition,
	KindTextTemplate:      textTemplateTransition,
	KindElementState:      elementStateTransition,
	KindIOPad:             ioPadTransition,
	KindEffect:            effectTransition,
}
