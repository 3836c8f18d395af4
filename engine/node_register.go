package engine

import (
	"github.com/BoonLang/boon-sub004/internal/addr"
	"github.com/BoonLang/boon-sub004/internal/arena"
	"github.com/BoonLang/boon-sub004/internal/message"
)

// registerState holds a HOLD register's committed value. Invariant
// (spec.md §3): this value is never of shape Flushed(_) — errors propagate
// to subscribers without corrupting stored state.
type registerState struct {
	value   message.Payload
	hasInit bool
}

// NewRegister allocates a HOLD node seeded with init. The body subgraph's
// output is wired by the compiler to feed this node's default input port;
// the register's own current value is separately exposed (by the compiler
// wiring a Wire subscribed to this node's output) to the body, breaking
// the cycle via the two-slot split described in spec.md's Design Notes.
func NewRegister(l *Loop, address addr.NodeAddress, owner addr.ScopeId, init message.Payload) arena.SlotId {
	slot := newNode(l, address, owner, KindRegisterHold, &registerState{value: init, hasInit: true})
	l.wake(slot, addr.Port{Kind: addr.PortDefault})
	return slot
}

// holdTransition forwards the body's new value to subscribers; if the
// incoming payload is Flushed, it is forwarded but not committed
// (spec.md §4.6 Register row, §3 invariant, §8 boundary scenario 6).
func holdTransition(l *Loop, slot arena.SlotId, n *node, port addr.Port) (message.Payload, bool) {
	st := n.state.(*registerState)
	scalar, has, _ := l.inbox.Take(message.Target{Slot: slot, Port: port})
	if !has {
		if st.hasInit {
			st.hasInit = false // initial seeding emission only happens once
			return st.value, true
		}
		return message.Payload{}, false
	}
	if scalar.IsFlushed() {
		return scalar, true
	}
	st.value = scalar
	return scalar, true
}
