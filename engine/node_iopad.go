package engine

import (
	"github.com/BoonLang/boon-sub004/internal/addr"
	"github.com/BoonLang/boon-sub004/internal/arena"
	"github.com/BoonLang/boon-sub004/internal/message"
)

// ioPadState holds an IOPad's per-event-kind subscriber lists. Unlike most
// node kinds, IOPad fans out differently per source port (press vs. change
// vs. ...), which the routing table (keyed only by source slot) cannot
// express on its own — so IOPad keeps its own small dispatch table, the
// same way Router keeps its own field→slot map rather than forcing the
// shared table to learn a new addressing mode (spec.md §4.6 IOPad row:
// "State: bound element id, event channels").
type ioPadState struct {
	channels map[addr.Port][]arena.SlotId
}

// NewIOPad allocates an IOPad node.
func NewIOPad(l *Loop, address addr.NodeAddress, owner addr.ScopeId) arena.SlotId {
	return newNode(l, address, owner, KindIOPad, &ioPadState{channels: make(map[addr.Port][]arena.SlotId)})
}

// SubscribeIOPadEvent wires target to receive pad's events on channel
// (e.g. addr.Port{Kind: PortField, Field: uint32(host.PressEvent)}).
func (l *Loop) SubscribeIOPadEvent(pad arena.SlotId, channel addr.Port, target arena.SlotId) {
	n := l.Node(pad)
	if n == nil {
		return
	}
	st := n.state.(*ioPadState)
	st.channels[channel] = append(st.channels[channel], target)
}

// DeliverHostEvent is the entry point a host adapter's deliver_dom_event
// call resolves to (spec.md §6): it marks pad dirty on the given channel
// with payload already converted to the engine's Payload shape.
func (l *Loop) DeliverHostEvent(pad arena.SlotId, channel addr.Port, payload message.Payload) {
	l.Enqueue(pad, channel, payload)
}

// ioPadTransition forwards a host event to every subscriber registered on
// its specific channel (spec.md §4.6 IOPad row: "emits: payloads on typed
// event ports").
func ioPadTransition(l *Loop, slot arena.SlotId, n *node, port addr.Port) (message.Payload, bool) {
	st := n.state.(*ioPadState)
	scalar, has, _ := l.inbox.Take(message.Target{Slot: slot, Port: port})
	if !has {
		return message.Payload{}, false
	}
	for _, target := range st.channels[port] {
		l.Enqueue(target, addr.Port{Kind: addr.PortDefault}, scalar)
	}
	return message.Payload{}, false
}
