package message

import "github.com/BoonLang/boon-sub004/internal/arena"

// AllocSite is a program point that allocates list items: (SourceId of the
// allocation, generation). Combined with a monotonic counter, it forms an
// ItemKey that is globally unique and stable across a list's lifetime
// (spec.md §3).
type AllocSite struct {
	Source     uint64 // the allocating List/map site's SourceId.StableId
	Generation uint32
}

// ItemKey identifies a list item. Immutable once assigned: reordering
// changes an item's index but never its key (spec.md §3 invariant).
type ItemKey struct {
	Site    AllocSite
	Counter uint64
}

// DeltaKind discriminates ListDelta's variants.
type DeltaKind uint8

const (
	DeltaInsert DeltaKind = iota
	DeltaUpdate
	DeltaFieldUpdate
	DeltaRemove
	DeltaMove
	DeltaReplace
)

// ListDelta is one of Insert/Update/FieldUpdate/Remove/Move/Replace
// (spec.md §3).
type ListDelta struct {
	Kind DeltaKind

	Key   ItemKey
	Index int
	Value Payload

	Field uint32 // valid when Kind == DeltaFieldUpdate

	From, To int // valid when Kind == DeltaMove

	// Replace carries the full current item list: (key, index, value)
	// triples, in order.
	Replace []ReplaceItem
}

// ReplaceItem is one entry of a DeltaReplace's full-items payload.
type ReplaceItem struct {
	Key   ItemKey
	Index int
	Value Payload
}

// Insert builds a DeltaInsert variant.
func Insert(key ItemKey, index int, value Payload) ListDelta {
	return ListDelta{Kind: DeltaInsert, Key: key, Index: index, Value: value}
}

// Update builds a DeltaUpdate variant.
func Update(key ItemKey, value Payload) ListDelta {
	return ListDelta{Kind: DeltaUpdate, Key: key, Value: value}
}

// FieldUpdateDelta builds a DeltaFieldUpdate variant.
func FieldUpdateDelta(key ItemKey, field uint32, value Payload) ListDelta {
	return ListDelta{Kind: DeltaFieldUpdate, Key: key, Field: field, Value: value}
}

// Remove builds a DeltaRemove variant.
func Remove(key ItemKey) ListDelta {
	return ListDelta{Kind: DeltaRemove, Key: key}
}

// Move builds a DeltaMove variant.
func Move(key ItemKey, from, to int) ListDelta {
	return ListDelta{Kind: DeltaMove, Key: key, From: from, To: to}
}

// Replace builds a DeltaReplace variant carrying the full item list.
func ReplaceAll(items []ReplaceItem) ListDelta {
	return ListDelta{Kind: DeltaReplace, Replace: items}
}

// ObjectDeltaKind discriminates ObjectDelta's variants.
type ObjectDeltaKind uint8

const (
	ObjectFieldUpdate ObjectDeltaKind = iota
	ObjectFieldRemove
)

// ObjectDelta is one of FieldUpdate(field_id,value) or
// FieldRemove(field_id) (spec.md §3).
type ObjectDelta struct {
	Kind  ObjectDeltaKind
	Field uint32
	Value Payload
}

// FieldUpdate builds an ObjectFieldUpdate variant.
func FieldUpdate(field uint32, value Payload) ObjectDelta {
	return ObjectDelta{Kind: ObjectFieldUpdate, Field: field, Value: value}
}

// FieldRemove builds an ObjectFieldRemove variant.
func FieldRemove(field uint32) ObjectDelta {
	return ObjectDelta{Kind: ObjectFieldRemove, Field: field}
}

// ListDeltaPayload wraps a ListDelta as a Payload carrying KindListDelta.
func ListDeltaPayload(d ListDelta) Payload {
	return Payload{Kind: KindListDelta, ListDelta: d}
}

// ObjectDeltaPayload wraps an ObjectDelta as a Payload carrying
// KindObjectDelta.
func ObjectDeltaPayload(d ObjectDelta) Payload {
	return Payload{Kind: KindObjectDelta, ObjectDelta: d}
}

// ListHandlePayload wraps a list's backing slot as a Payload, for "first
// observation" emissions (spec.md §4.6 Bus row: "ListHandle on first
// observation").
func ListHandlePayload(slot arena.SlotId) Payload {
	return Payload{Kind: KindList, List: ListHandle{Slot: slot}}
}
