package engine

import (
	"github.com/BoonLang/boon-sub004/internal/addr"
	"github.com/BoonLang/boon-sub004/internal/arena"
	"github.com/BoonLang/boon-sub004/internal/message"
)

// Combine is a pure function over a Combiner's full current input array,
// applied once every input has been seen and on every update thereafter.
// Compiled builtin function calls (compiler package: "+", "==", "and", ...)
// construct a Combiner with Combine set instead of nil, generalizing
// spec.md §4.6's "last-arriving value (scalar merge)" beyond plain
// last-writer-wins — the same Combiner state shape (per-input last-value
// array, seen bitmask) serves both, so this stays the same node kind
// rather than adding a fourteenth one.
type Combine func(values []message.Payload) message.Payload

// latestState holds a LATEST combiner's per-input last-value array and a
// seen bitmask (spec.md §4.6 Combiner row).
type latestState struct {
	values  []message.Payload
	seen    []bool
	allSeen bool
	combine Combine
}

// NewLatest allocates a LATEST combiner over width inputs (ports
// PortInput[0..width)). Its output is the last-arriving value, unmodified
// (spec.md §9 Open Question 1's resolution).
func NewLatest(l *Loop, address addr.NodeAddress, owner addr.ScopeId, width int) arena.SlotId {
	return newNode(l, address, owner, KindCombinerLatest, &latestState{
		values: make([]message.Payload, width),
		seen:   make([]bool, width),
	})
}

// NewLatestDerived allocates a Combiner whose output is combine applied to
// every current input, instead of the bare last-arriving value. Used by the
// compiler to lower builtin function calls (arithmetic, comparison,
// boolean) without a dedicated node kind.
func NewLatestDerived(l *Loop, address addr.NodeAddress, owner addr.ScopeId, width int, combine Combine) arena.SlotId {
	return newNode(l, address, owner, KindCombinerLatest, &latestState{
		values:  make([]message.Payload, width),
		seen:    make([]bool, width),
		combine: combine,
	})
}

// latestTransition resolves Open Question 1 (spec.md §9): when two
// payloads address the same (slot, port) within one tick, the inbox's
// last-writer-wins semantics already picks the final one before the
// combiner ever sees it, so a Combiner never observes "both" updates for a
// single port in a single wakeup — it just sees the final value, which is
// the behavior spec.md's own text names as its default. Once every input
// has been seen at least once, every subsequent update immediately
// re-emits (spec.md: "emits once all inputs seen, then on any subsequent
// input").
func latestTransition(l *Loop, slot arena.SlotId, n *node, port addr.Port) (message.Payload, bool) {
	st := n.state.(*latestState)
	scalar, has, _ := l.inbox.Take(message.Target{Slot: slot, Port: port})
	if !has {
		return message.Payload{}, false
	}
	if scalar.IsFlushed() {
		// Flushed propagates immediately regardless of "all seen" gating
		// (spec.md §4.6 Combiner row: "Flushed propagated immediately").
		return scalar, true
	}
	idx := int(port.Index)
	if idx < 0 || idx >= len(st.values) {
		return message.Payload{}, false
	}
	st.values[idx] = scalar
	st.seen[idx] = true

	if !st.allSeen {
		for _, s := range st.seen {
			if !s {
				return message.Payload{}, false
			}
		}
		st.allSeen = true
	}
	if st.combine != nil {
		return st.combine(st.values), true
	}
	return scalar, true
}
