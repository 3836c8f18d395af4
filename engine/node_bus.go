package engine

import (
	"github.com/BoonLang/boon-sub004/internal/addr"
	"github.com/BoonLang/boon-sub004/internal/arena"
	"github.com/BoonLang/boon-sub004/internal/message"
)

// busState holds a Bus (List) node's ordered item map and allocation site
// (spec.md §4.6 Bus row: "State: ordered (ItemKey, SlotId) map, AllocSite").
// Values are tracked directly (rather than SlotIds); a per-item subgraph
// compiled by a List/map or List/remove site (compiler/list.go) feeds its
// output back into this bus through the sinks below.
//
// sinks holds one entry per PortInput index bound via BindItemValueSink or
// BindItemPredicateSink, letting a List/map or List/remove site wire a
// per-item instantiated subgraph's live output straight into this bus
// through the ordinary routing table, the same way TextTemplate wires its
// interpolation deps.
type busState struct {
	site     message.AllocSite
	counter  uint64
	order    []message.ItemKey
	values   map[message.ItemKey]message.Payload
	observed bool
	sinks    []itemSink
	// hooks fire for every item inserted into this bus after being bound
	// via BindListInsertHook, letting a List/map or List/remove site
	// extend its compile-time per-item instantiation to items the source
	// receives afterwards.
	hooks []insertHook
}

// insertHook is registered on a Bus node (the *source* of a List/map or
// List/remove site) and invoked with every item it subsequently inserts,
// whether via a direct ListInsert call or a forwarded DeltaInsert from an
// upstream chained site.
type insertHook func(l *Loop, key message.ItemKey, index int, value message.Payload)

type itemSinkKind uint8

const (
	sinkValue itemSinkKind = iota
	sinkPredicate
)

type itemSink struct {
	key  message.ItemKey
	kind itemSinkKind
}

// NewBus allocates an empty Bus node rooted at an allocation site derived
// from the list construct's own SourceId.
func NewBus(l *Loop, address addr.NodeAddress, owner addr.ScopeId) arena.SlotId {
	return newNode(l, address, owner, KindBusList, &busState{
		site:   message.AllocSite{Source: address.Source.StableId},
		values: make(map[message.ItemKey]message.Payload),
	})
}

// ListItems returns a snapshot of bus's current item keys, in order. The
// compiler uses this to enumerate a literal list's items at compile time
// when lowering a chained List/map or List/remove site.
func (l *Loop) ListItems(bus arena.SlotId) []message.ItemKey {
	st := l.Node(bus).state.(*busState)
	out := make([]message.ItemKey, len(st.order))
	copy(out, st.order)
	return out
}

// ListItemValue returns key's current value in bus, if present.
func (l *Loop) ListItemValue(bus arena.SlotId, key message.ItemKey) (message.Payload, bool) {
	st := l.Node(bus).state.(*busState)
	v, ok := st.values[key]
	return v, ok
}

// NextItemKey reserves and returns the next ItemKey for bus's allocation
// site, without yet inserting anything (spec.md §3: "Items are keyed by
// ItemKey = (AllocSite, monotonic counter)").
func (l *Loop) NextItemKey(bus arena.SlotId) message.ItemKey {
	st := l.Node(bus).state.(*busState)
	key := message.ItemKey{Site: st.site, Counter: st.counter}
	st.counter++
	return key
}

// ListInsert inserts value at index under a freshly reserved key and
// broadcasts the Insert delta.
func (l *Loop) ListInsert(bus arena.SlotId, index int, value message.Payload) message.ItemKey {
	key := l.NextItemKey(bus)
	l.listApplyInsert(bus, key, index, value)
	l.emitListDelta(bus, message.Insert(key, index, value))
	l.fireInsertHooks(bus, key, index, value)
	return key
}

// BindListInsertHook registers fn to run for every item bus inserts from
// this call onward (spec.md §4.6 "LIST/map external-dependency capture").
func (l *Loop) BindListInsertHook(bus arena.SlotId, fn func(l *Loop, key message.ItemKey, index int, value message.Payload)) {
	st := l.Node(bus).state.(*busState)
	st.hooks = append(st.hooks, insertHook(fn))
}

func (l *Loop) fireInsertHooks(bus arena.SlotId, key message.ItemKey, index int, value message.Payload) {
	st := l.Node(bus).state.(*busState)
	for _, fn := range st.hooks {
		fn(l, key, index, value)
	}
}

// ListUpdate replaces key's value and broadcasts an Update delta.
func (l *Loop) ListUpdate(bus arena.SlotId, key message.ItemKey, value message.Payload) {
	st := l.Node(bus).state.(*busState)
	st.values[key] = value
	l.emitListDelta(bus, message.Update(key, value))
}

// ListRemoveItem drops key from the ordered map and broadcasts a Remove
// delta. Per spec.md's Lifecycles note, the caller is responsible for
// freeing any backing item subgraph only after the tick's finalization
// phase; Bus itself tracks no subgraph slots for scalar items.
func (l *Loop) ListRemoveItem(bus arena.SlotId, key message.ItemKey) {
	st := l.Node(bus).state.(*busState)
	for i, k := range st.order {
		if k == key {
			st.order = append(st.order[:i:i], st.order[i+1:]...)
			break
		}
	}
	delete(st.values, key)
	l.emitListDelta(bus, message.Remove(key))
}

// ListMoveItem reorders key from index from to index to and broadcasts a
// Move delta.
func (l *Loop) ListMoveItem(bus arena.SlotId, key message.ItemKey, from, to int) {
	st := l.Node(bus).state.(*busState)
	if from >= 0 && from < len(st.order) && st.order[from] == key {
		st.order = append(st.order[:from:from], st.order[from+1:]...)
		if to > len(st.order) {
			to = len(st.order)
		}
		st.order = append(st.order[:to], append([]message.ItemKey{key}, st.order[to:]...)...)
	}
	l.emitListDelta(bus, message.Move(key, from, to))
}

// ListReplaceAll overwrites bus's full ordered contents and broadcasts a
// Replace delta, e.g. for a bulk List/remove re-filter pass.
func (l *Loop) ListReplaceAll(bus arena.SlotId, items []message.ReplaceItem) {
	st := l.Node(bus).state.(*busState)
	st.order = st.order[:0]
	for k := range st.values {
		delete(st.values, k)
	}
	for _, it := range items {
		st.order = append(st.order, it.Key)
		st.values[it.Key] = it.Value
	}
	l.emitListDelta(bus, message.ReplaceAll(items))
}

func (l *Loop) listApplyInsert(bus arena.SlotId, key message.ItemKey, index int, value message.Payload) {
	st := l.Node(bus).state.(*busState)
	if index < 0 || index > len(st.order) {
		index = len(st.order)
	}
	st.order = append(st.order, message.ItemKey{})
	copy(st.order[index+1:], st.order[index:])
	st.order[index] = key
	st.values[key] = value
}

// BindItemValueSink reserves the next PortInput index on bus for key's
// live value: routing a per-item subgraph's output slot to the returned
// Port keeps that item's stored value current as the subgraph reacts to
// its own captured dependencies (spec.md §4.6 "LIST/map external-
// dependency capture").
func (l *Loop) BindItemValueSink(bus arena.SlotId, key message.ItemKey) addr.Port {
	st := l.Node(bus).state.(*busState)
	idx := uint32(len(st.sinks))
	st.sinks = append(st.sinks, itemSink{key: key, kind: sinkValue})
	return addr.Port{Kind: addr.PortInput, Index: idx}
}

// BindItemPredicateSink reserves the next PortInput index on bus for
// key's List/remove predicate: once the predicate's subgraph emits true,
// key is dropped and never reinserted by this sink (spec.md §4.6
// "LIST/remove chaining": "each site maintains its own removed-key set").
func (l *Loop) BindItemPredicateSink(bus arena.SlotId, key message.ItemKey) addr.Port {
	st := l.Node(bus).state.(*busState)
	idx := uint32(len(st.sinks))
	st.sinks = append(st.sinks, itemSink{key: key, kind: sinkPredicate})
	return addr.Port{Kind: addr.PortInput, Index: idx}
}

// emitListDelta delivers d to bus's subscribers, first emitting a
// ListHandle on the bus's very first observation (spec.md §4.6 Bus row:
// "emits: ListDelta on change; ListHandle on first observation").
func (l *Loop) emitListDelta(bus arena.SlotId, d message.ListDelta) {
	n := l.Node(bus)
	st := n.state.(*busState)
	if !st.observed {
		st.observed = true
		handle := message.ListHandlePayload(bus)
		n.lastValue, n.hasValue = handle, true
		l.deliver(bus, handle)
	}
	l.deliver(bus, message.ListDeltaPayload(d))
}

// busTransition handles deltas arriving on a Bus's default input port from
// an upstream source (chained List/map or List/remove sites): it applies
// the same bookkeeping as the direct ListInsert/... methods and forwards
// each delta, preserving arrival order.
func busTransition(l *Loop, slot arena.SlotId, n *node, port addr.Port) (message.Payload, bool) {
	st := n.state.(*busState)
	if port.Kind == addr.PortInput {
		return busItemSinkTransition(l, slot, st, port)
	}
	_, _, deltas := l.inbox.Take(message.Target{Slot: slot, Port: port})
	for _, d := range deltas {
		if d.Kind != message.KindListDelta {
			continue
		}
		ld := d.ListDelta
		switch ld.Kind {
		case message.DeltaInsert:
			l.listApplyInsert(slot, ld.Key, ld.Index, ld.Value)
		case message.DeltaUpdate:
			st.values[ld.Key] = ld.Value
		case message.DeltaRemove:
			for i, k := range st.order {
				if k == ld.Key {
					st.order = append(st.order[:i:i], st.order[i+1:]...)
					break
				}
			}
			delete(st.values, ld.Key)
		}
		l.emitListDelta(slot, ld)
		if ld.Kind == message.DeltaInsert {
			l.fireInsertHooks(slot, ld.Key, ld.Index, ld.Value)
		}
	}
	return message.Payload{}, false
}

// busItemSinkTransition handles a PortInput wake-up from an item's bound
// value or predicate subgraph (see BindItemValueSink/BindItemPredicateSink).
func busItemSinkTransition(l *Loop, slot arena.SlotId, st *busState, port addr.Port) (message.Payload, bool) {
	idx := int(port.Index)
	scalar, has, _ := l.inbox.Take(message.Target{Slot: slot, Port: port})
	if !has || idx < 0 || idx >= len(st.sinks) {
		return message.Payload{}, false
	}
	sink := st.sinks[idx]
	switch sink.kind {
	case sinkValue:
		if _, ok := st.values[sink.key]; ok {
			st.values[sink.key] = scalar
			l.emitListDelta(slot, message.Update(sink.key, scalar))
		}
	case sinkPredicate:
		if scalar.Kind == message.KindBoolean && scalar.Boolean {
			if _, present := st.values[sink.key]; present {
				for i, k := range st.order {
					if k == sink.key {
						st.order = append(st.order[:i:i], st.order[i+1:]...)
						break
					}
				}
				delete(st.values, sink.key)
				l.emitListDelta(slot, message.Remove(sink.key))
			}
		}
	}
	return message.Payload{}, false
}
