package host

import "github.com/BoonLang/boon-sub004/internal/arena"

// LinkRegistry tracks live IOPad-to-host-element bindings. It is adapted
// from the teacher's registry.go (a ring-buffer-scavenged weak-pointer
// table of live promises): same "batch-scan a ring, compact when sparse"
// shape, applied to bridge bindings instead of promise ids. Since the
// arena is the sole owner of IOPad node state here (not the GC), entries
// store plain SlotIds rather than weak pointers.
type LinkRegistry struct {
	bindings map[arena.SlotId]ElementId
	ring     []arena.SlotId
	head     int
}

// NewLinkRegistry constructs an empty registry.
func NewLinkRegistry() *LinkRegistry {
	return &LinkRegistry{bindings: make(map[arena.SlotId]ElementId)}
}

// Bind records that pad is bound to element, appending to the scavenge
// ring.
func (r *LinkRegistry) Bind(pad arena.SlotId, element ElementId) {
	r.bindings[pad] = element
	r.ring = append(r.ring, pad)
}

// Unbind drops pad's binding immediately (called from LINK/Unbind or scope
// finalization), in addition to whatever the next Scavenge pass would have
// done.
func (r *LinkRegistry) Unbind(pad arena.SlotId) (ElementId, bool) {
	e, ok := r.bindings[pad]
	if ok {
		delete(r.bindings, pad)
	}
	return e, ok
}

// Element returns the element a pad is currently bound to, if any.
func (r *LinkRegistry) Element(pad arena.SlotId) (ElementId, bool) {
	e, ok := r.bindings[pad]
	return e, ok
}

// Scavenge walks up to batchSize entries of the ring starting from the
// current head, removing any whose arena slot has since been freed
// (checked via valid, typically arena.Arena.Valid). It is called once per
// tick, after scope finalization, so a stray binding for a freed IOPad
// cannot accumulate indefinitely even if the compiler forgot to emit an
// explicit LinkUnbind.
func (r *LinkRegistry) Scavenge(batchSize int, valid func(arena.SlotId) bool) {
	if batchSize <= 0 || len(r.ring) == 0 {
		return
	}
	start := r.head
	end := min(start+batchSize, len(r.ring))

	kept := r.ring[:0:0]
	kept = append(kept, r.ring[:start]...)
	for i := start; i < end; i++ {
		pad := r.ring[i]
		if pad.Invalid() {
			continue
		}
		if _, bound := r.bindings[pad]; bound && valid(pad) {
			kept = append(kept, pad)
		} else {
			delete(r.bindings, pad)
		}
	}
	kept = append(kept, r.ring[end:]...)
	r.ring = kept

	if end >= len(r.ring) {
		r.head = 0
	} else {
		r.head = end
	}
}

// Len reports the number of live bindings, for diagnostics.
func (r *LinkRegistry) Len() int { return len(r.bindings) }
