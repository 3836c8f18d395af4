package engine

import (
	"container/heap"

	"github.com/BoonLang/boon-sub004/internal/arena"
)

// timerItem is one pending timer: fire at Deadline (a logical tick number,
// not wall time — spec.md §4.5: "timer min-heap keyed by deadline tick"),
// waking Slot on its default output port with a Unit payload.
type timerItem struct {
	deadline uint64
	slot     arena.SlotId
	seq      uint64 // insertion order, breaks deadline ties deterministically
}

// timerHeap is a container/heap min-heap ordered by (deadline, seq),
// grounded 1:1 on the teacher's timerHeap in eventloop/loop.go, substituting
// a logical tick deadline for the teacher's wall-clock time.Time key.
type timerHeap []timerItem

func (h timerHeap) Len() int { return len(h) }
func (h timerHeap) Less(i, j int) bool {
	if h[i].deadline != h[j].deadline {
		return h[i].deadline < h[j].deadline
	}
	return h[i].seq < h[j].seq
}
func (h timerHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *timerHeap) Push(x any) { *h = append(*h, x.(timerItem)) }

func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// Peek returns the earliest-deadline item without removing it.
func (h timerHeap) Peek() (timerItem, bool) {
	if len(h) == 0 {
		return timerItem{}, false
	}
	return h[0], true
}

var _ heap.Interface = (*timerHeap)(nil)
