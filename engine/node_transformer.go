package engine

import (
	"github.com/BoonLang/boon-sub004/internal/addr"
	"github.com/BoonLang/boon-sub004/internal/arena"
	"github.com/BoonLang/boon-sub004/internal/message"
)

// bodyUpdatePort is the input port carrying a compiled body subgraph's
// current output into the THEN node that gates forwarding it. Keeping this as a second numbered input (rather than a
// separate node kind per gate) matches spec.md's per-kind "reads: trigger
// input" framing while letting the body's own propagation feed the gate
// through the ordinary routing table.
var bodyUpdatePort = addr.Port{Kind: addr.PortInput, Index: 1}
var triggerPort = addr.Port{Kind: addr.PortInput, Index: 0}

// thenState holds a THEN transformer's body reference and the body's most
// recently observed output (spec.md §4.6 Transformer row: "State: body
// subgraph reference").
type thenState struct {
	body     arena.SlotId
	lastBody message.Payload
	hasBody  bool
}

// NewThen allocates a THEN node wired to trigger and to body's output.
func NewThen(l *Loop, address addr.NodeAddress, owner addr.ScopeId, trigger, body arena.SlotId) arena.SlotId {
	slot := newNode(l, address, owner, KindTransformerThen, &thenState{body: body})
	l.routes.AddRoute(trigger, slot, triggerPort)
	l.routes.AddRoute(body, slot, bodyUpdatePort)
	return slot
}

// thenTransition emits the body's current output whenever the trigger
// fires; if the body has never produced a value (the compiled body
// evaluated to SKIP on this activation), no emission occurs (spec.md §4.6
// Transformer row: "or nothing if body evaluates to SKIP").
func thenTransition(l *Loop, slot arena.SlotId, n *node, port addr.Port) (message.Payload, bool) {
	st := n.state.(*thenState)
	if port == bodyUpdatePort {
		scalar, has, _ := l.inbox.Take(message.Target{Slot: slot, Port: port})
		if has {
			st.lastBody = scalar
			st.hasBody = true
		}
		return message.Payload{}, false
	}
	_, has, _ := l.inbox.Take(message.Target{Slot: slot, Port: port})
	if !has || !st.hasBody {
		return message.Payload{}, false
	}
	if st.lastBody.IsFlushed() {
		return st.lastBody, true
	}
	return st.lastBody, true
}
