package engine

import (
	"github.com/BoonLang/boon-sub004/internal/addr"
	"github.com/BoonLang/boon-sub004/internal/arena"
	"github.com/BoonLang/boon-sub004/internal/message"
)

// producerState holds a Producer's cached constant value (spec.md §4.6
// Producer row: "State: cached value").
type producerState struct {
	value message.Payload
}

// NewProducer compiles a constant value expression into a Producer node and
// schedules its initial emission so subscribers wired afterwards (within
// the same propagation pass) observe the value without a special-cased
// "read constants directly" path.
func NewProducer(l *Loop, address addr.NodeAddress, owner addr.ScopeId, value message.Payload) arena.SlotId {
	slot := newNode(l, address, owner, KindProducer, &producerState{value: value})
	l.Enqueue(slot, addr.Port{Kind: addr.PortDefault}, message.Unit())
	return slot
}

// NewProducerSelfReferential allocates a Producer whose constant value is
// built from its own slot, e.g. a compiled record/tagged-object literal's
// ObjectHandle/TaggedObject, which identifies the literal by its own
// producer slot rather than a separately allocated one.
func NewProducerSelfReferential(l *Loop, address addr.NodeAddress, owner addr.ScopeId, build func(self arena.SlotId) message.Payload) arena.SlotId {
	slot := newNode(l, address, owner, KindProducer, &producerState{})
	l.Node(slot).state.(*producerState).value = build(slot)
	l.Enqueue(slot, addr.Port{Kind: addr.PortDefault}, message.Unit())
	return slot
}

// producerTransition ignores its inbox contents entirely (spec.md: "On
// wakeup reads: nothing (idempotent)") and always re-emits the cached
// value; version-based dedup at the delivery layer suppresses redundant
// propagation to subscribers that already observed it.
func producerTransition(l *Loop, slot arena.SlotId, n *node, port addr.Port) (message.Payload, bool) {
	st := n.state.(*producerState)
	l.inbox.Take(message.Target{Slot: slot, Port: port})
	return st.value, true
}
