package engine

import (
	"github.com/BoonLang/boon-sub004/internal/addr"
	"github.com/BoonLang/boon-sub004/internal/arena"
	"github.com/BoonLang/boon-sub004/internal/message"
)

// elementStateState holds an ElementState node's paired field values
// (hovered, focused, text, checked — spec.md §4.6 ElementState row),
// keyed by interned field id so the set is open to whatever fields a given
// element kind exposes, rather than four hardcoded struct fields.
type elementStateState struct {
	fields map[uint32]message.Payload
}

// NewElementState allocates an ElementState node. Host events are
// delivered on addr.Port{Kind: PortField, Field: <interned field id>}.
func NewElementState(l *Loop, address addr.NodeAddress, owner addr.ScopeId) arena.SlotId {
	return newNode(l, address, owner, KindElementState, &elementStateState{fields: make(map[uint32]message.Payload)})
}

// elementStateTransition stores the incoming host event payload under its
// field and emits the corresponding field update (spec.md §4.6
// ElementState row: "On wakeup reads: host event payloads"; "emits:
// boolean/text updates on default output").
func elementStateTransition(l *Loop, slot arena.SlotId, n *node, port addr.Port) (message.Payload, bool) {
	if port.Kind != addr.PortField {
		return message.Payload{}, false
	}
	st := n.state.(*elementStateState)
	scalar, has, _ := l.inbox.Take(message.Target{Slot: slot, Port: port})
	if !has {
		return message.Payload{}, false
	}
	st.fields[port.Field] = scalar
	return message.ObjectDeltaPayload(message.FieldUpdate(port.Field, scalar)), true
}
