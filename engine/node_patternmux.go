package engine

import (
	"github.com/BoonLang/boon-sub004/internal/addr"
	"github.com/BoonLang/boon-sub004/internal/arena"
	"github.com/BoonLang/boon-sub004/internal/message"
)

// WhenArm is one compiled arm of a WHEN expression, supplied by the
// compiler: its pattern, the slot a BindingPattern's name resolves to
// (NilSlot otherwise), and the arm body's root slot (NilSlot if the arm's
// body is exactly its bound subject, e.g. a bare-name arm).
type WhenArm struct {
	Pattern  Pattern
	BindSlot arena.SlotId
	BodySlot arena.SlotId

	lastBody message.Payload
	hasBody  bool
}

// patternMuxState holds a WHEN's compiled arms (spec.md §4.6 PatternMux
// row: "State: arm patterns, arm subgraph outputs").
type patternMuxState struct {
	arms []WhenArm
}

// NewPatternMux allocates a WHEN node with the given arms, in source
// order (spec.md §4.6 "WHEN pattern matching": "patterns are tested in
// source order"). Each arm whose body is already compiled is wired so its
// output feeds back on PortInput{Index: i}.
func NewPatternMux(l *Loop, address addr.NodeAddress, owner addr.ScopeId, arms []WhenArm) arena.SlotId {
	slot := newNode(l, address, owner, KindPatternMuxWhen, &patternMuxState{arms: arms})
	for i, arm := range arms {
		if !arm.BodySlot.Invalid() {
			l.routes.AddRoute(arm.BodySlot, slot, addr.Port{Kind: addr.PortInput, Index: uint32(i)})
		}
	}
	return slot
}

// whenTransition implements spec.md §4.6 PatternMux row: on the subject
// (default port), test arms in order and emit the first match's body
// output; unmatched values produce no emission ("filter semantics").
// Per-arm body-update channels (PortInput) just refresh the cached output
// for the next subject match.
func whenTransition(l *Loop, slot arena.SlotId, n *node, port addr.Port) (message.Payload, bool) {
	st := n.state.(*patternMuxState)

	if port.Kind == addr.PortInput {
		idx := int(port.Index)
		scalar, has, _ := l.inbox.Take(message.Target{Slot: slot, Port: port})
		if has && idx >= 0 && idx < len(st.arms) {
			st.arms[idx].lastBody = scalar
			st.arms[idx].hasBody = true
		}
		return message.Payload{}, false
	}

	subject, has, _ := l.inbox.Take(message.Target{Slot: slot, Port: port})
	if !has {
		return message.Payload{}, false
	}
	if subject.IsFlushed() {
		return subject, true
	}

	for i := range st.arms {
		arm := &st.arms[i]
		if !arm.Pattern.Match(subject) {
			continue
		}
		if arm.Pattern.Kind == PatternBinding && !arm.BindSlot.Invalid() {
			l.Enqueue(arm.BindSlot, addr.Port{Kind: addr.PortDefault}, subject)
		}
		if arm.hasBody {
			return arm.lastBody, true
		}
		// The arm's body has not produced an output yet (common for the
		// simple "bare name" body of a binding arm, whose value IS the
		// bound subject): forward the subject itself as a reasonable
		// first emission; the body's own wiring refines it on its next
		// wakeup within the same tick.
		return subject, true
	}
	return message.Payload{}, false
}
