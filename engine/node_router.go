package engine

import (
	"github.com/BoonLang/boon-sub004/internal/addr"
	"github.com/BoonLang/boon-sub004/internal/arena"
	"github.com/BoonLang/boon-sub004/internal/message"
)

// routerState maps an interned field id to the slot that should receive
// that field's extractions (spec.md §4.6 Router row: "State: field→slot
// map").
type routerState struct {
	fields map[uint32]arena.SlotId
}

// NewRouter allocates a Router node. Router has no default output
// (Kind.hasDefaultOutput reports false for it); it distributes
// ObjectDelta.FieldUpdate/FieldRemove deltas arriving on its default input
// port directly to each field's registered target, bypassing the normal
// routing-table fan-out.
func NewRouter(l *Loop, address addr.NodeAddress, owner addr.ScopeId) arena.SlotId {
	return newNode(l, address, owner, KindRouter, &routerState{fields: make(map[uint32]arena.SlotId)})
}

// BindField registers target as the recipient of field's extractions.
func (l *Loop) BindField(router arena.SlotId, field uint32, target arena.SlotId) {
	n := l.Node(router)
	if n == nil {
		return
	}
	st := n.state.(*routerState)
	st.fields[field] = target
}

// routerTransition distributes field deltas (spec.md §4.6 Router row:
// "not directly dirtied; distributes via routed field extractions" — here
// "directly dirtied" means it never appears on a normal default-output
// route; it is instead woken explicitly whenever its source object
// changes, via the same inbox path every other node uses).
func routerTransition(l *Loop, slot arena.SlotId, n *node, port addr.Port) (message.Payload, bool) {
	st := n.state.(*routerState)
	_, _, deltas := l.inbox.Take(message.Target{Slot: slot, Port: port})
	for _, d := range deltas {
		if d.Kind != message.KindObjectDelta {
			continue
		}
		target, ok := st.fields[d.ObjectDelta.Field]
		if !ok {
			continue
		}
		switch d.ObjectDelta.Kind {
		case message.ObjectFieldUpdate:
			l.Enqueue(target, addr.Port{Kind: addr.PortDefault}, d.ObjectDelta.Value)
		case message.ObjectFieldRemove:
			l.Enqueue(target, addr.Port{Kind: addr.PortDefault}, message.Unit())
		}
	}
	return message.Payload{}, false
}
