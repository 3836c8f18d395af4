// Package routing implements the routing table mapping a source slot to
// the dense vector of (target slot, target port) subscriptions that
// receive its emissions (spec.md §4.4).
package routing

import (
	"github.com/BoonLang/boon-sub004/internal/addr"
	"github.com/BoonLang/boon-sub004/internal/arena"
)

// Subscription is one (target slot, target port) entry in a source's
// subscriber vector.
type Subscription struct {
	Target arena.SlotId
	Port   addr.Port
}

// Table maps source slot to its subscribers. add_route appends (duplicates
// permitted; identical entries count as separate subscriptions and are
// removed pairwise), matching spec.md §4.4 exactly. Subscribers are
// iterated in insertion order so downstream fan-out is deterministic.
type Table struct {
	bySource map[arena.SlotId][]Subscription
	// byTarget is the inverse index, used only by RemoveSlot to purge a
	// slot's subscriptions-as-target without a full scan.
	byTarget map[arena.SlotId][]arena.SlotId
}

// New constructs an empty routing table.
func New() *Table {
	return &Table{
		bySource: make(map[arena.SlotId][]Subscription),
		byTarget: make(map[arena.SlotId][]arena.SlotId),
	}
}

// AddRoute appends a (target, port) subscription to source's subscriber
// vector.
func (t *Table) AddRoute(source, target arena.SlotId, port addr.Port) {
	t.bySource[source] = append(t.bySource[source], Subscription{Target: target, Port: port})
	t.byTarget[target] = append(t.byTarget[target], source)
}

// RemoveRoute removes exactly one matching (target, port) entry from
// source's subscriber vector, if present. Duplicates are removed pairwise:
// calling RemoveRoute once for a route added twice leaves one instance
// subscribed.
func (t *Table) RemoveRoute(source, target arena.SlotId, port addr.Port) {
	subs := t.bySource[source]
	for i, s := range subs {
		if s.Target == target && s.Port == port {
			t.bySource[source] = append(subs[:i:i], subs[i+1:]...)
			t.removeBackref(target, source)
			if len(t.bySource[source]) == 0 {
				delete(t.bySource, source)
			}
			return
		}
	}
}

func (t *Table) removeBackref(target, source arena.SlotId) {
	srcs := t.byTarget[target]
	for i, s := range srcs {
		if s == source {
			t.byTarget[target] = append(srcs[:i:i], srcs[i+1:]...)
			if len(t.byTarget[target]) == 0 {
				delete(t.byTarget, target)
			}
			return
		}
	}
}

// RemoveSlot purges slot as both source and target of every route touching
// it, used during scope finalization (spec.md §4.4, §4.5 step 5).
func (t *Table) RemoveSlot(slot arena.SlotId) {
	delete(t.bySource, slot)

	for _, source := range append([]arena.SlotId(nil), t.byTarget[slot]...) {
		subs := t.bySource[source]
		kept := subs[:0:0]
		for _, s := range subs {
			if s.Target != slot {
				kept = append(kept, s)
			}
		}
		if len(kept) == 0 {
			delete(t.bySource, source)
		} else {
			t.bySource[source] = kept
		}
	}
	delete(t.byTarget, slot)
}

// Subscribers returns source's current subscriber vector, in insertion
// order. The returned slice must not be mutated by the caller.
func (t *Table) Subscribers(source arena.SlotId) []Subscription {
	return t.bySource[source]
}

// HasRoute reports whether the exact (source, target, port) route exists
// at least once.
func (t *Table) HasRoute(source, target arena.SlotId, port addr.Port) bool {
	for _, s := range t.bySource[source] {
		if s.Target == target && s.Port == port {
			return true
		}
	}
	return false
}

// Len reports the number of distinct source slots with at least one
// subscription, for diagnostics.
func (t *Table) Len() int { return len(t.bySource) }
