package message

import (
	"github.com/BoonLang/boon-sub004/internal/addr"
	"github.com/BoonLang/boon-sub004/internal/arena"
)

// Target is the (slot, port) key an inbox entry is addressed to.
type Target struct {
	Slot arena.SlotId
	Port addr.Port
}

// entry holds one target's pending deliveries for the current tick: a
// single scalar payload (last-writer-wins) plus an ordered buffer of
// pending deltas (which accumulate rather than overwrite).
type entry struct {
	hasScalar bool
	scalar    Payload
	deltas    []Payload
}

// Inbox is the per-target mailbox for one tick's worth of deliveries
// (spec.md §4.3). A fresh Inbox should be used (or Reset) at the start of
// each tick's delivery phase; the event loop owns exactly one Inbox.
type Inbox struct {
	entries map[Target]*entry
}

// NewInbox constructs an empty Inbox.
func NewInbox() *Inbox {
	return &Inbox{entries: make(map[Target]*entry)}
}

// Deliver deposits payload at target. Non-delta payloads overwrite any
// previously pending scalar for the same target in this tick
// (last-writer-wins); delta payloads (KindListDelta/KindObjectDelta)
// instead append to the target's pending-delta buffer, preserving arrival
// order (spec.md §4.3).
func (ib *Inbox) Deliver(target Target, payload Payload) {
	e, ok := ib.entries[target]
	if !ok {
		e = &entry{}
		ib.entries[target] = e
	}
	if payload.Kind == KindListDelta || payload.Kind == KindObjectDelta {
		e.deltas = append(e.deltas, payload)
		return
	}
	e.hasScalar = true
	e.scalar = payload
}

// Take consumes and removes target's pending entry, returning the scalar
// payload (if any), the ordered delta buffer (if any), and whether any
// entry existed at all. After Take, the target has no pending entry until
// Deliver is called again.
func (ib *Inbox) Take(target Target) (scalar Payload, hasScalar bool, deltas []Payload) {
	e, ok := ib.entries[target]
	if !ok {
		return Payload{}, false, nil
	}
	delete(ib.entries, target)
	return e.scalar, e.hasScalar, e.deltas
}

// Peek reports whether target currently has a pending entry, without
// consuming it.
func (ib *Inbox) Peek(target Target) bool {
	_, ok := ib.entries[target]
	return ok
}

// Reset clears all pending entries, for reuse across ticks.
func (ib *Inbox) Reset() {
	clear(ib.entries)
}

// PurgeSlot drops any pending entries addressed to slot on any port,
// called during scope finalization so a freed slot's leftover mailbox
// contents cannot be observed by a reused SlotId next tick.
func (ib *Inbox) PurgeSlot(slot arena.SlotId) {
	for t := range ib.entries {
		if t.Slot == slot {
			delete(ib.entries, t)
		}
	}
}
