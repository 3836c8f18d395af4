package engine

import (
	"github.com/BoonLang/boon-sub004/internal/arena"
	"github.com/BoonLang/boon-sub004/internal/message"
)

// EngineSnapshot is the exported, gob-encodable capture of a Loop's
// restorable state (spec.md §4.8): the current tick, both intern tables,
// every live node's observable state, and the pending timer queue.
//
// It deliberately does not capture the routing table or any node's
// derived-only state (PatternMux/SwitchedWire arm caches, Combiner
// seen-bitmask, ...): package snapshot's Restore instead recompiles the
// same program against a fresh Loop (rebuilding every compile-time route
// and the literal-list/List-map/List-remove eager instantiations
// identically, since compilation is deterministic — spec.md §3), overlays
// this capture's true source-of-truth state (Register contents, Bus
// contents, ElementState fields, Effect last_execution_tick, the intern
// tables, tick, and timers), and then runs a passive tick so every
// downstream node re-derives its cached output exactly as it originally
// converged (spec.md §4.8: "re-runs a passive tick... to reach
// quiescence"). This is what "rebinds routes" means in practice here: a
// fresh compile rebinds them, not snapshot data.
type EngineSnapshot struct {
	Version int
	Tick    uint64
	Fields  []string
	Tags    []string
	Nodes   []NodeSnapshot
	Timers  []TimerSnapshot
}

// NodeSnapshot captures one live node's address-identified restorable
// state. Only kinds with true accumulated state (not purely re-derivable
// by replay) populate one of the kind-specific pointer fields.
type NodeSnapshot struct {
	Slot      arena.SlotId
	Kind      Kind
	LastValue message.Payload
	HasValue  bool

	Register *RegisterSnapshot
	Bus      *BusSnapshot
	Element  *ElementSnapshot
	Effect   *EffectSnapshot
}

// RegisterSnapshot is a HOLD node's committed value (spec.md §4.6 Register
// row).
type RegisterSnapshot struct {
	Value   message.Payload
	HasInit bool
}

// BusSnapshot is a LIST node's ordered item map and allocation counter
// (spec.md §4.6 Bus row).
type BusSnapshot struct {
	Site     message.AllocSite
	Counter  uint64
	Order    []message.ItemKey
	Values   map[message.ItemKey]message.Payload
	Observed bool
}

// ElementSnapshot is an ElementState node's accumulated host-event fields
// (spec.md §4.6 ElementState row).
type ElementSnapshot struct {
	Fields map[uint32]message.Payload
}

// EffectSnapshot is an Effect node's last_execution_tick bookkeeping
// (spec.md §3, §4.8: suppresses duplicate side effects on restore).
type EffectSnapshot struct {
	LastExecutionTick uint64
	HasRun            bool
}

// TimerSnapshot is one pending timer, with its deadline rebased to a
// relative offset from the tick it was captured at (spec.md §4.8: "timer
// heap... with deadlines rebased to a relative offset from tick").
type TimerSnapshot struct {
	RelativeDeadline uint64
	Slot             arena.SlotId
}

// ExportSnapshot walks every live node in deterministic slot order and
// captures the data package snapshot needs to restore this Loop's
// progress onto a freshly recompiled, identically-structured graph.
func (l *Loop) ExportSnapshot() *EngineSnapshot {
	snap := &EngineSnapshot{
		Tick:   l.tick,
		Fields: l.arena.FieldNames(),
		Tags:   l.arena.TagNames(),
	}

	var slots []arena.SlotId
	l.arena.Each(func(s arena.SlotId, ext any) {
		if _, ok := ext.(*node); ok {
			slots = append(slots, s)
		}
	})
	for _, s := range slots {
		n := l.Node(s)
		ns := NodeSnapshot{Slot: s, Kind: n.kind, LastValue: n.lastValue, HasValue: n.hasValue}
		switch st := n.state.(type) {
		case *registerState:
			ns.Register = &RegisterSnapshot{Value: st.value, HasInit: st.hasInit}
		case *busState:
			ns.Bus = &BusSnapshot{
				Site:     st.site,
				Counter:  st.counter,
				Order:    append([]message.ItemKey(nil), st.order...),
				Values:   copyPayloadMap(st.values),
				Observed: st.observed,
			}
		case *elementStateState:
			ns.Element = &ElementSnapshot{Fields: copyPayloadFieldMap(st.fields)}
		case *effectState:
			ns.Effect = &EffectSnapshot{LastExecutionTick: st.lastExecutionTick, HasRun: st.hasRun}
		}
		snap.Nodes = append(snap.Nodes, ns)
	}

	for _, t := range l.timers {
		rel := uint64(0)
		if t.deadline > l.tick {
			rel = t.deadline - l.tick
		}
		snap.Timers = append(snap.Timers, TimerSnapshot{RelativeDeadline: rel, Slot: t.slot})
	}

	return snap
}

// RestoreSnapshot overlays snap onto l, which must already hold a freshly
// compiled instance of the same program (same SlotId allocation order,
// since compilation is deterministic). It restores the intern tables, the
// tick counter, each node's accumulated state, and the timer heap, but
// enqueues nothing and runs no tick itself — package snapshot's Restore
// runs the passive quiescence tick afterward.
func (l *Loop) RestoreSnapshot(snap *EngineSnapshot) {
	l.arena.RestoreFieldNames(snap.Fields)
	l.arena.RestoreTagNames(snap.Tags)
	l.tick = snap.Tick
	l.logRestore(snap.Tick)

	for _, ns := range snap.Nodes {
		n := l.Node(ns.Slot)
		if n == nil || n.kind != ns.Kind {
			continue // program changed shape since the snapshot; best-effort overlay
		}
		n.lastValue = ns.LastValue
		n.hasValue = ns.HasValue
		switch {
		case ns.Register != nil:
			if st, ok := n.state.(*registerState); ok {
				st.value, st.hasInit = ns.Register.Value, ns.Register.HasInit
			}
		case ns.Bus != nil:
			if st, ok := n.state.(*busState); ok {
				st.site = ns.Bus.Site
				st.counter = ns.Bus.Counter
				st.order = append([]message.ItemKey(nil), ns.Bus.Order...)
				st.values = copyPayloadMap(ns.Bus.Values)
				st.observed = ns.Bus.Observed
			}
		case ns.Element != nil:
			if st, ok := n.state.(*elementStateState); ok {
				st.fields = copyPayloadFieldMap(ns.Element.Fields)
			}
		case ns.Effect != nil:
			if st, ok := n.state.(*effectState); ok {
				st.lastExecutionTick, st.hasRun = ns.Effect.LastExecutionTick, ns.Effect.HasRun
			}
		}
	}

	l.timers = nil
	l.timerSeq = 0
	for _, ts := range snap.Timers {
		l.ScheduleTimer(l.tick+ts.RelativeDeadline, ts.Slot)
	}
}

func copyPayloadMap(m map[message.ItemKey]message.Payload) map[message.ItemKey]message.Payload {
	out := make(map[message.ItemKey]message.Payload, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copyPayloadFieldMap(m map[uint32]message.Payload) map[uint32]message.Payload {
	out := make(map[uint32]message.Payload, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
