package engine

import (
	"github.com/BoonLang/boon-sub004/internal/addr"
	"github.com/BoonLang/boon-sub004/internal/arena"
	"github.com/BoonLang/boon-sub004/internal/message"
)

// ArmBuilder lazily constructs one WHILE arm's body subgraph on first
// match, returning its root slot (spec.md §4.6 SwitchedWire row: "lazily
// constructs new arm's scope"). Supplied by the compiler as a closure over
// its own compile context, so engine need not depend on the compiler or
// ast packages (SPEC_FULL.md package layering) — this is the same
// dependency-inversion shape as the teacher injecting a connection
// constructor into its pool rather than importing the caller's types.
type ArmBuilder func(l *Loop, scope addr.ScopeId, subject message.Payload) arena.SlotId

// WhileArmSpec is one compiled-but-not-yet-instantiated WHILE arm,
// supplied by the compiler.
type WhileArmSpec struct {
	Pattern Pattern
	Build   ArmBuilder
}

// switchedWireState holds the active arm index, its derived scope, its
// body's current output, and an activation counter so re-entering a
// previously active arm gets a fresh ScopeId (spec.md §4.7 "WHILE arm
// subgraphs": "scope discriminator includes activation counter").
type switchedWireState struct {
	scopeBase  addr.ScopeId
	arms       []WhileArmSpec
	activation uint64

	activeIdx   int
	activeScope addr.ScopeId
	activeBody  arena.SlotId
	lastBody    message.Payload
	hasBody     bool
}

var whileBodyPort = addr.Port{Kind: addr.PortInput, Index: 0}

// NewSwitchedWire allocates a WHILE node. scopeBase is the WHILE
// expression's own ScopeId, used as the DeriveScope parent for each arm
// activation.
func NewSwitchedWire(l *Loop, address addr.NodeAddress, owner addr.ScopeId, scopeBase addr.ScopeId, arms []WhileArmSpec) arena.SlotId {
	return newNode(l, address, owner, KindSwitchedWireWhile, &switchedWireState{
		scopeBase: scopeBase,
		arms:      arms,
		activeIdx: -1,
	})
}

// whileTransition implements spec.md §4.6 SwitchedWire row: on a subject
// change, find the first matching arm; if it differs from the currently
// active arm, queue the old arm's scope for finalization and lazily
// construct the new arm's subgraph. The body-update port simply forwards
// the active arm's latest continuous output.
func whileTransition(l *Loop, slot arena.SlotId, n *node, port addr.Port) (message.Payload, bool) {
	st := n.state.(*switchedWireState)

	if port == whileBodyPort {
		scalar, has, _ := l.inbox.Take(message.Target{Slot: slot, Port: port})
		if !has {
			return message.Payload{}, false
		}
		st.lastBody = scalar
		st.hasBody = true
		return scalar, true
	}

	subject, has, _ := l.inbox.Take(message.Target{Slot: slot, Port: port})
	if !has {
		return message.Payload{}, false
	}

	matchIdx := -1
	for i := range st.arms {
		if st.arms[i].Pattern.Match(subject) {
			matchIdx = i
			break
		}
	}

	if matchIdx == st.activeIdx {
		if st.hasBody {
			return st.lastBody, true
		}
		return message.Payload{}, false
	}

	if st.activeIdx >= 0 {
		l.EnqueueFinalize(st.activeScope)
	}

	st.activeIdx = matchIdx
	st.hasBody = false
	if matchIdx < 0 {
		st.activeScope = addr.ScopeId(0)
		st.activeBody = arena.NilSlot
		return message.Payload{}, false
	}

	st.activation++
	key := uint64(matchIdx)<<32 | st.activation
	newScope := addr.DeriveScope(st.scopeBase, key)
	st.activeScope = newScope
	st.activeBody = st.arms[matchIdx].Build(l, newScope, subject)
	if !st.activeBody.Invalid() {
		l.routes.AddRoute(st.activeBody, slot, whileBodyPort)
	}
	return message.Payload{}, false
}
