package engine

import (
	"github.com/BoonLang/boon-sub004/internal/addr"
	"github.com/BoonLang/boon-sub004/internal/arena"
	"github.com/BoonLang/boon-sub004/internal/message"
)

// effectState holds an Effect node's kind tag and last_execution_tick
// bookkeeping (spec.md §4.6 Effect row; §3 "Effect nodes... idempotent
// with respect to last_execution_tick to avoid duplicate side effects on
// snapshot restore").
type effectState struct {
	kind              string
	lastExecutionTick uint64
	hasRun            bool
}

// NewEffect allocates an Effect node of the given host effect kind (e.g.
// "log", a router-navigation identifier), wired to trigger.
func NewEffect(l *Loop, address addr.NodeAddress, owner addr.ScopeId, kind string, trigger arena.SlotId) arena.SlotId {
	slot := newNode(l, address, owner, KindEffect, &effectState{kind: kind})
	l.routes.AddRoute(trigger, slot, addr.Port{Kind: addr.PortDefault})
	return slot
}

// effectTransition enqueues a NodeEffect to the tick's effect queue
// (spec.md §4.6 Effect row: "emits: enqueues NodeEffect to tick's effect
// queue"). Effect has no default output (Kind.hasDefaultOutput reports
// false), so it never itself feeds further propagation; host delivery
// happens at step 6, after quiescence.
func effectTransition(l *Loop, slot arena.SlotId, n *node, port addr.Port) (message.Payload, bool) {
	scalar, has, _ := l.inbox.Take(message.Target{Slot: slot, Port: port})
	if !has {
		return message.Payload{}, false
	}
	// A Flushed trigger still enqueues: the terminal consumer (the host, via
	// EffectExecute) is responsible for reporting the error (spec.md §7
	// "Runtime errors... Terminal consumers... report the inner payload via
	// the host adapter").
	l.EnqueueEffect(slot, scalar)
	return message.Payload{}, false
}
