// Package arena implements the engine's slab of fixed-layout reactive node
// records, addressed by generational SlotIds, plus the two append-only
// intern tables for field and tag names (spec.md §4.2).
//
// All failures here are logic errors: the arena never exposes a recoverable
// error type. Misuse panics with the offending SlotId so the caller's stack
// trace pinpoints the bug, mirroring the teacher's arena-misuse contract
// ("In debug builds, misuse panics with the offending SlotId and address").
package arena

import (
	"fmt"

	"github.com/BoonLang/boon-sub004/internal/addr"
)

// SlotId is an arena index plus a generation counter. Freed slots are
// reused; the generation increments so stale SlotIds fail the validity
// check (spec.md §3).
type SlotId struct {
	Index      uint32
	Generation uint32
}

// Invalid reports whether the SlotId is the always-invalid zero value used
// as a sentinel for "no slot" (e.g. an unbound capture placeholder before
// instantiation).
func (s SlotId) Invalid() bool { return s.Generation == 0 && s.Index == 0 }

func (s SlotId) String() string { return fmt.Sprintf("slot(%d#%d)", s.Index, s.Generation) }

// NilSlot is the sentinel SlotId meaning "not yet bound".
var NilSlot = SlotId{}

// ValidityError is the logic-error panic value raised when a stale or
// out-of-range SlotId is dereferenced.
type ValidityError struct {
	Slot    SlotId
	Address addr.NodeAddress
	HasAddr bool
}

func (e *ValidityError) Error() string {
	if e.HasAddr {
		return fmt.Sprintf("arena: invalid slot %s at address %s", e.Slot, e.Address)
	}
	return fmt.Sprintf("arena: invalid slot %s", e.Slot)
}

// entry is one slab record: a fixed header plus a lazily-allocated
// extension, mirroring spec.md's "ReactiveNode (arena entry)" layout.
type entry struct {
	generation uint32
	occupied   bool
	addr       addr.NodeAddress
	hasAddr    bool
	// ext holds the node-kind-specific state. It is opaque to the arena:
	// Arena never interprets it, only stores and returns it. The owning
	// package (engine) defines its concrete type.
	ext any
}

// Arena is the slab allocator. The zero value is not ready to use; call New.
type Arena struct {
	entries  []entry
	freeList []uint32
	// fieldNames and tagNames are the two intern tables. Slot addresses
	// are not kept here; each entry stores its own (see AllocWithAddress).
	fieldNames *internTable
	tagNames   *internTable
}

// New constructs an empty Arena with both intern tables ready.
func New() *Arena {
	return &Arena{
		fieldNames: newInternTable(),
		tagNames:   newInternTable(),
	}
}

// Alloc reserves a slot, reusing a freed slot (bumping its generation) if
// one is available, or appending a fresh one otherwise. The slot's
// extension starts nil.
func (a *Arena) Alloc() SlotId {
	if n := len(a.freeList); n > 0 {
		idx := a.freeList[n-1]
		a.freeList = a.freeList[:n-1]
		e := &a.entries[idx]
		e.occupied = true
		e.ext = nil
		e.hasAddr = false
		return SlotId{Index: idx, Generation: e.generation}
	}
	idx := uint32(len(a.entries))
	a.entries = append(a.entries, entry{generation: 1, occupied: true})
	return SlotId{Index: idx, Generation: 1}
}

// AllocWithAddress reserves a slot and additionally records its
// NodeAddress in a side table, for later retrieval via Address.
func (a *Arena) AllocWithAddress(address addr.NodeAddress) SlotId {
	s := a.Alloc()
	e := &a.entries[s.Index]
	e.addr = address
	e.hasAddr = true
	return s
}

// Address returns the NodeAddress recorded for slot, if any.
func (a *Arena) Address(s SlotId) (addr.NodeAddress, bool) {
	if !a.valid(s) {
		return addr.NodeAddress{}, false
	}
	e := &a.entries[s.Index]
	return e.addr, e.hasAddr
}

// Free pushes slot onto the free list, bumping its generation so the
// SlotId can never be validly reused, and drops its extension and address.
// It is the caller's responsibility to remove routes touching slot before
// freeing it; the routing table's remove_slot is the canonical cleanup
// (spec.md §4.2).
func (a *Arena) Free(s SlotId) {
	if !a.valid(s) {
		panic(&ValidityError{Slot: s})
	}
	e := &a.entries[s.Index]
	e.occupied = false
	e.ext = nil
	e.hasAddr = false
	e.addr = addr.NodeAddress{}
	e.generation++
	if e.generation == 0 {
		// Wrap-around: skip generation 0, which is reserved to mean
		// "never allocated" so SlotId's zero value stays invalid.
		e.generation = 1
	}
	a.freeList = append(a.freeList, s.Index)
}

// Get returns the slot's extension value and whether the slot is valid.
func (a *Arena) Get(s SlotId) (any, bool) {
	if !a.valid(s) {
		return nil, false
	}
	return a.entries[s.Index].ext, true
}

// Set stores ext as the slot's extension value. Panics if the slot is not
// valid, since setting state on a freed or stale slot is always a bug.
func (a *Arena) Set(s SlotId, ext any) {
	if !a.valid(s) {
		panic(&ValidityError{Slot: s})
	}
	a.entries[s.Index].ext = ext
}

// Valid reports whether s currently addresses a live slot: same
// generation, in range, occupied.
func (a *Arena) Valid(s SlotId) bool { return a.valid(s) }

func (a *Arena) valid(s SlotId) bool {
	if int(s.Index) >= len(a.entries) {
		return false
	}
	e := &a.entries[s.Index]
	return e.occupied && e.generation == s.Generation
}

// InternField returns the dense id for name in the field-name table,
// allocating a new id on first use. Idempotent: same name maps to same id.
func (a *Arena) InternField(name string) uint32 { return a.fieldNames.intern(name) }

// InternTag returns the dense id for name in the tag-name table,
// allocating a new id on first use.
func (a *Arena) InternTag(name string) uint32 { return a.tagNames.intern(name) }

// FieldName resolves a previously interned field id back to its name.
func (a *Arena) FieldName(id uint32) (string, bool) { return a.fieldNames.lookup(id) }

// TagName resolves a previously interned tag id back to its name.
func (a *Arena) TagName(id uint32) (string, bool) { return a.tagNames.lookup(id) }

// FieldNames and TagNames expose the full table contents in id order, for
// snapshot serialization.
func (a *Arena) FieldNames() []string { return a.fieldNames.list() }
func (a *Arena) TagNames() []string   { return a.tagNames.list() }

// RestoreFieldNames and RestoreTagNames rebuild an intern table from a
// snapshot's saved name list, preserving ids exactly (spec.md §4.2: "ids are
// stable within a run; snapshots persist the tables so ids survive
// restore").
func (a *Arena) RestoreFieldNames(names []string) { a.fieldNames = restoreInternTable(names) }
func (a *Arena) RestoreTagNames(names []string)   { a.tagNames = restoreInternTable(names) }

// Stats reports ambient diagnostics (currently called only by tests): not part of
// the spec's contract, but the kind of observability hook the teacher's
// Loop exposes via Metrics().
type Stats struct {
	Live       int
	FreeListed int
	Capacity   int
}

// Stats returns a snapshot of the arena's current occupancy.
func (a *Arena) Stats() Stats {
	live := 0
	for i := range a.entries {
		if a.entries[i].occupied {
			live++
		}
	}
	return Stats{Live: live, FreeListed: len(a.freeList), Capacity: len(a.entries)}
}

// Each calls fn for every live slot, in ascending index order (not address
// order; callers needing address order must sort using internal/addr).
func (a *Arena) Each(fn func(s SlotId, ext any)) {
	for i := range a.entries {
		if a.entries[i].occupied {
			fn(SlotId{Index: uint32(i), Generation: a.entries[i].generation}, a.entries[i].ext)
		}
	}
}

// Len returns the number of entries ever allocated (including freed ones
// still occupying a slab index), i.e. the slab's current capacity.
func (a *Arena) Len() int { return len(a.entries) }
