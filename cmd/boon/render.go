package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/BoonLang/boon-sub004/compiler"
	"github.com/BoonLang/boon-sub004/engine"
	"github.com/BoonLang/boon-sub004/internal/arena"
	"github.com/BoonLang/boon-sub004/internal/message"
)

// renderPayload renders p as structured text: scalars print directly,
// lists and records recurse into their live contents via loop (the runtime
// Payload for an aggregate carries only a slot handle), and Flushed wraps
// its inner rendering (spec.md §3, §4.3).
func renderPayload(loop *engine.Loop, c *compiler.Compiler, p message.Payload) string {
	switch p.Kind {
	case message.KindUnit:
		return "()"
	case message.KindNumber:
		return strconv.FormatFloat(p.Number, 'g', -1, 64)
	case message.KindText:
		return strconv.Quote(p.Text.String())
	case message.KindBoolean:
		return strconv.FormatBool(p.Boolean)
	case message.KindTag:
		name, ok := loop.Arena().TagName(p.Tag)
		if !ok {
			name = fmt.Sprintf("tag#%d", p.Tag)
		}
		return name
	case message.KindList:
		return renderList(loop, c, p.List.Slot)
	case message.KindObject:
		return renderFields(loop, c, p.Object.Slot)
	case message.KindTaggedObject:
		name, ok := loop.Arena().TagName(p.TaggedObject.Tag)
		if !ok {
			name = fmt.Sprintf("tag#%d", p.TaggedObject.Tag)
		}
		return name + "(" + renderFields(loop, c, p.TaggedObject.Fields.Slot) + ")"
	case message.KindFlushed:
		if p.Flushed == nil {
			return "Flushed(())"
		}
		return "Flushed(" + renderPayload(loop, c, *p.Flushed) + ")"
	default:
		return p.String()
	}
}

// renderList renders every item currently held by the Bus at slot, in
// order, as a bracketed comma-separated list.
func renderList(loop *engine.Loop, c *compiler.Compiler, slot arena.SlotId) string {
	keys := loop.ListItems(slot)
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		v, ok := loop.ListItemValue(slot, key)
		if !ok {
			continue
		}
		parts = append(parts, renderPayload(loop, c, v))
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// renderFields renders slot's static field map (populated by the compiler
// for a Record/Tagged literal or a List/map item aliased onto one), with
// fields sorted by name for deterministic output; a slot the compiler
// never registered fields for (any other object-shaped node) renders as
// an opaque reference.
func renderFields(loop *engine.Loop, c *compiler.Compiler, slot arena.SlotId) string {
	fields, ok := c.Fields(slot)
	if !ok {
		return "{...}"
	}
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, name := range names {
		v, ok := loop.Value(fields[name])
		rendered := "<unset>"
		if ok {
			rendered = renderPayload(loop, c, v)
		}
		parts[i] = name + ": " + rendered
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
