// Package host defines the narrow boundary between the engine and its host
// adapter (DOM/canvas renderer, CLI I/O driver): the bridge events the
// engine emits, and the inputs the host supplies back (spec.md §6).
package host

import "github.com/BoonLang/boon-sub004/internal/arena"

// ElementId identifies a materialized UI element in the host's tree. The
// engine treats it as opaque data; only the host interprets it.
type ElementId uint64

// BridgeEventKind discriminates BridgeEvent's variants.
type BridgeEventKind uint8

const (
	ElementCreateEvent BridgeEventKind = iota
	ElementUpdateEvent
	ElementReorderEvent
	ElementDestroyEvent
	EffectExecuteEvent
	LinkBindEvent
	LinkUnbindEvent
)

// BridgeEvent is one outbound event the engine's effect queue delivers to
// the host adapter (spec.md §6).
type BridgeEvent struct {
	Kind BridgeEventKind

	Element    ElementId
	Kind_      string // element kind, valid for ElementCreateEvent
	Attributes map[string]any

	Field uint32 // interned field id, valid for ElementUpdateEvent
	Value any

	Parent   ElementId // valid for ElementReorderEvent
	NewOrder []ElementId

	EffectKind string // valid for EffectExecuteEvent
	Payload    any

	IOPad arena.SlotId // valid for LinkBindEvent/LinkUnbindEvent
}

// ElementCreate constructs an ElementCreateEvent.
func ElementCreate(id ElementId, kind string, attrs map[string]any) BridgeEvent {
	return BridgeEvent{Kind: ElementCreateEvent, Element: id, Kind_: kind, Attributes: attrs}
}

// ElementUpdate constructs an ElementUpdateEvent.
func ElementUpdate(id ElementId, field uint32, value any) BridgeEvent {
	return BridgeEvent{Kind: ElementUpdateEvent, Element: id, Field: field, Value: value}
}

// ElementReorder constructs an ElementReorderEvent.
func ElementReorder(parent ElementId, order []ElementId) BridgeEvent {
	return BridgeEvent{Kind: ElementReorderEvent, Parent: parent, NewOrder: order}
}

// ElementDestroy constructs an ElementDestroyEvent.
func ElementDestroy(id ElementId) BridgeEvent {
	return BridgeEvent{Kind: ElementDestroyEvent, Element: id}
}

// EffectExecute constructs an EffectExecuteEvent, e.g. a log call or a
// router navigation.
func EffectExecute(kind string, payload any) BridgeEvent {
	return BridgeEvent{Kind: EffectExecuteEvent, EffectKind: kind, Payload: payload}
}

// LinkBind constructs a LinkBindEvent, binding an IOPad node to a host
// element's event channels.
func LinkBind(element ElementId, pad arena.SlotId) BridgeEvent {
	return BridgeEvent{Kind: LinkBindEvent, Element: element, IOPad: pad}
}

// LinkUnbind constructs a LinkUnbindEvent.
func LinkUnbind(element ElementId, pad arena.SlotId) BridgeEvent {
	return BridgeEvent{Kind: LinkUnbindEvent, Element: element, IOPad: pad}
}

// DOMEventKind discriminates the host-supplied event channels an IOPad can
// receive on (press, change, etc).
type DOMEventKind uint8

const (
	PressEvent DOMEventKind = iota
	ChangeEvent
	HoverEvent
	FocusEvent
)

// InboundEvent is a host-originated event destined for a specific IOPad
// (spec.md §6 "deliver_dom_event").
type InboundEvent struct {
	Pad     arena.SlotId
	Kind    DOMEventKind
	Payload any
}

// Adapter is the host's half of the bridge: the narrow interfaces the
// engine needs to emit events and accept host-originated input. A real
// host (DOM/canvas renderer, CLI I/O driver) implements this; the engine
// never assumes anything about the host beyond this contract (spec.md §1,
// "out of scope").
type Adapter interface {
	// Apply delivers one bridge event, in the engine's effect-queue
	// insertion order. Apply must not block the caller indefinitely in a
	// way that corrupts tick semantics beyond spec.md §4.5's documented
	// "long-running host effects block the tick".
	Apply(event BridgeEvent)
}

// AdapterFunc adapts a plain function to the Adapter interface.
type AdapterFunc func(BridgeEvent)

func (f AdapterFunc) Apply(event BridgeEvent) { f(event) }

// RecordingAdapter is a trivial Adapter that appends every event it
// receives, used by tests and by the CLI's non-UI `run`/`eval` subcommands
// (which have no real element tree to drive).
type RecordingAdapter struct {
	Events []BridgeEvent
}

func (r *RecordingAdapter) Apply(event BridgeEvent) {
	r.Events = append(r.Events, event)
}
