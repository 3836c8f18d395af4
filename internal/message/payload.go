// Package message implements the engine's typed payloads, object/list
// deltas, and per-target inboxes (spec.md §4.3).
package message

import (
	"fmt"

	"github.com/BoonLang/boon-sub004/internal/arena"
)

// Kind discriminates the sum-of-variants shape of Payload.
type Kind uint8

const (
	KindUnit Kind = iota
	KindNumber
	KindText
	KindBoolean
	KindTag
	KindList
	KindObject
	KindTaggedObject
	KindListDelta
	KindObjectDelta
	KindFlushed
)

func (k Kind) String() string {
	switch k {
	case KindUnit:
		return "unit"
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	case KindBoolean:
		return "boolean"
	case KindTag:
		return "tag"
	case KindList:
		return "list"
	case KindObject:
		return "object"
	case KindTaggedObject:
		return "tagged-object"
	case KindListDelta:
		return "list-delta"
	case KindObjectDelta:
		return "object-delta"
	case KindFlushed:
		return "flushed"
	default:
		return "unknown"
	}
}

// Text is an immutable shared string handle: payloads carrying text clone
// the pointer, not the bytes (spec.md §4.3: "text uses a shared immutable
// handle").
type Text struct {
	s string
}

// NewText wraps a Go string as an immutable handle.
func NewText(s string) *Text { return &Text{s: s} }

// String returns the wrapped value.
func (t *Text) String() string {
	if t == nil {
		return ""
	}
	return t.s
}

// GobEncode and GobDecode let a *Text round-trip through package snapshot's
// gob encoding despite its unexported field.
func (t *Text) GobEncode() ([]byte, error) {
	return []byte(t.s), nil
}

func (t *Text) GobDecode(data []byte) error {
	t.s = string(data)
	return nil
}

// ListHandle identifies a Bus (List) node's current materialized view by
// slot, for payloads that hand a list reference downstream without copying
// its contents.
type ListHandle struct {
	Slot arena.SlotId
}

// ObjectHandle identifies a record's field-extraction source by slot.
type ObjectHandle struct {
	Slot arena.SlotId
}

// TaggedObject carries a tag id (as interned by the arena's tag table) and
// the handle of its field object, e.g. Ok(value) or a user-defined variant.
type TaggedObject struct {
	Tag    uint32
	Fields ObjectHandle
}

// Payload is the sum of primitive values, aggregate handles, deltas, and
// the Flushed error wrapper described in spec.md §3.
//
// Version is never set by the engine and is ignored by Equal. The tick
// loop's dedup (spec.md Design Notes) compares payloads with Equal and
// keeps its monotonic version counter on the emitting node instead, which
// is what makes the tick loop's cycle detection sound without forbidding
// genuine fixpoint iteration.
type Payload struct {
	Kind    Kind
	Version uint64

	Number  float64
	Text    *Text
	Boolean bool
	Tag     uint32

	List         ListHandle
	Object       ObjectHandle
	TaggedObject TaggedObject

	ListDelta   ListDelta
	ObjectDelta ObjectDelta

	// Flushed holds the inner payload when Kind == KindFlushed. Using a
	// pointer keeps Payload's zero value cheap and avoids infinite
	// recursion in the struct layout.
	Flushed *Payload
}

// Unit is the canonical unit-value payload (emitted by, e.g., timer
// wakeups).
func Unit() Payload { return Payload{Kind: KindUnit} }

// Num constructs a number payload.
func Num(v float64) Payload { return Payload{Kind: KindNumber, Number: v} }

// Str constructs a text payload.
func Str(s string) Payload { return Payload{Kind: KindText, Text: NewText(s)} }

// Bool constructs a boolean payload.
func Bool(v bool) Payload { return Payload{Kind: KindBoolean, Boolean: v} }

// Flush wraps inner in a Flushed(inner) error payload (spec.md §4.6 FLUSH).
func Flush(inner Payload) Payload {
	cp := inner
	return Payload{Kind: KindFlushed, Flushed: &cp}
}

// IsFlushed reports whether p is a Flushed(_) error payload.
func (p Payload) IsFlushed() bool { return p.Kind == KindFlushed }

// Equal reports whether two payloads are semantically identical, ignoring
// Version. Used for version-based dedup: a node only needs to re-emit when
// either the version changed for a reason other than a no-op recompute, or
// the value itself differs.
func (p Payload) Equal(o Payload) bool {
	if p.Kind != o.Kind {
		return false
	}
	switch p.Kind {
	case KindUnit:
		return true
	case KindNumber:
		return p.Number == o.Number
	case KindText:
		return p.Text.String() == o.Text.String()
	case KindBoolean:
		return p.Boolean == o.Boolean
	case KindTag:
		return p.Tag == o.Tag
	case KindList:
		return p.List == o.List
	case KindObject:
		return p.Object == o.Object
	case KindTaggedObject:
		return p.TaggedObject.Tag == o.TaggedObject.Tag && p.TaggedObject.Fields == o.TaggedObject.Fields
	case KindFlushed:
		if p.Flushed == nil || o.Flushed == nil {
			return p.Flushed == o.Flushed
		}
		return p.Flushed.Equal(*o.Flushed)
	default:
		// Deltas are never deduplicated: they accumulate rather than
		// overwrite (spec.md §4.3), so equality here is irrelevant to the
		// dedup path and is reported conservatively as "different".
		return false
	}
}

func (p Payload) String() string {
	switch p.Kind {
	case KindUnit:
		return "()"
	case KindNumber:
		return fmt.Sprintf("%v", p.Number)
	case KindText:
		return fmt.Sprintf("%q", p.Text.String())
	case KindBoolean:
		return fmt.Sprintf("%v", p.Boolean)
	case KindFlushed:
		return fmt.Sprintf("Flushed(%s)", p.Flushed)
	default:
		return fmt.Sprintf("%s(...)", p.Kind)
	}
}
