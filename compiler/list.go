package compiler

import (
	"fmt"

	"github.com/BoonLang/boon-sub004/ast"
	"github.com/BoonLang/boon-sub004/engine"
	"github.com/BoonLang/boon-sub004/internal/addr"
	"github.com/BoonLang/boon-sub004/internal/arena"
	"github.com/BoonLang/boon-sub004/internal/message"
)

// compileLatest lowers a bare `LATEST { a, b, ... }` expression to a plain
// Combiner with no Combine override, i.e. last-arriving-value semantics
// (spec.md §9 Open Question 1's resolution).
func (c *Compiler) compileLatest(ctx Context, v ast.Latest) (arena.SlotId, error) {
	inputs := make([]arena.SlotId, len(v.Inputs))
	for i, in := range v.Inputs {
		slot, err := c.compileExpr(ctx, in)
		if err != nil {
			return arena.NilSlot, err
		}
		inputs[i] = slot
	}
	slot := engine.NewLatest(c.loop, c.address(v.Source.Id, ctx.scope, addr.Port{}), ctx.scope, len(inputs))
	for i, in := range inputs {
		c.loop.Routes().AddRoute(in, slot, addr.Port{Kind: addr.PortInput, Index: uint32(i)})
	}
	return slot, nil
}

// compileList lowers a LIST literal or a `source |> List/map { ... }`
// expression to a Bus, depending on which of Items/MapSource the parser
// populated.
func (c *Compiler) compileList(ctx Context, v ast.List) (arena.SlotId, error) {
	if v.MapSource != nil {
		return c.compileListMap(ctx, v)
	}

	bus := engine.NewBus(c.loop, c.address(v.Source.Id, ctx.scope, addr.Port{}), ctx.scope)
	for i, item := range v.Items {
		// Compiling the item expression establishes it in the graph (so a
		// nested FUNCTION call or Effect still runs), but only a
		// compile-time-constant item's value is known synchronously enough
		// to seed the Bus with; a non-literal item is inserted with a Unit
		// placeholder and does not live-update thereafter (see DESIGN.md's
		// "literal LIST items" note).
		if _, err := c.compileExpr(ctx, item); err != nil {
			return arena.NilSlot, err
		}
		payload, ok := constantPayload(item)
		if !ok {
			payload = message.Unit()
		}
		c.loop.ListInsert(bus, i, payload)
	}
	return bus, nil
}

// compileListMap lowers `source |> List/map { item: body }`. Each item
// currently present in source's Bus gets its own instantiation of
// Template.Body, recompiled under a scope derived from the list's own
// scope and the item's key: ItemName binds a snapshot Producer seeded with
// that item's current value, while every other name resolves through the
// ordinary enclosing Context, so a captured outer slot is shared (not
// copied) across every instantiation and keeps driving each instance's
// output as it changes (spec.md §4.6 "LIST/map external-dependency
// capture", boundary scenario 5).
func (c *Compiler) compileListMap(ctx Context, v ast.List) (arena.SlotId, error) {
	sourceSlot, err := c.compileExpr(ctx, v.MapSource)
	if err != nil {
		return arena.NilSlot, err
	}
	resultBus := engine.NewBus(c.loop, c.address(v.Source.Id, ctx.scope, addr.Port{}), ctx.scope)
	if v.Template == nil {
		return resultBus, nil
	}

	// expand instantiates one fresh copy of the template body for a single
	// source item and wires its live output into resultBus. It runs once
	// per item known at compile time below, and again — via the hook bound
	// afterwards — for every item source receives later, whether inserted
	// directly or forwarded from an upstream chained site, so a LIST/map
	// never stops tracking its source (spec.md §4.6 "LIST/map external-
	// dependency capture").
	expand := func(l *engine.Loop, key message.ItemKey, index int, value message.Payload) {
		bodySlot, err := c.instantiateListTemplate(ctx, v.Source.Id, value, v.Template)
		if err != nil {
			panic(fmt.Errorf("compiler: list/map template instantiation for an item inserted after compile: %w", err))
		}
		resultKey := l.ListInsert(resultBus, index, message.Unit())
		l.Routes().AddRoute(bodySlot, resultBus, l.BindItemValueSink(resultBus, resultKey))
	}

	for i, key := range c.loop.ListItems(sourceSlot) {
		itemValue, ok := c.loop.ListItemValue(sourceSlot, key)
		if !ok {
			continue
		}
		expand(c.loop, key, i, itemValue)
	}
	c.loop.BindListInsertHook(sourceSlot, expand)
	return resultBus, nil
}

// instantiateListTemplate compiles tmpl.Body once for a single item,
// binding ItemName to a fresh Producer seeded with value under a scope
// derived from base and the item's allocation counter.
func (c *Compiler) instantiateListTemplate(ctx Context, id addr.SourceId, value message.Payload, tmpl *ast.ListItemTemplate) (arena.SlotId, error) {
	itemScope := addr.DeriveScope(ctx.scope, c.sourceSeq+1)
	c.sourceSeq++
	itemSlot := engine.NewProducer(c.loop, c.address(c.internalSource(id), itemScope, addr.Port{}), itemScope, value)
	// If the item is a record/tagged value, alias the fresh item slot onto
	// the same static field map its original record producer registered
	// (compileRecord/compileTagged), so FieldAccess on the item binding
	// resolves statically instead of through the Router's ObjectDelta-only
	// fallback, which a one-shot snapshot Producer never emits.
	if fields, ok := c.fields[objectSlotOf(value)]; ok {
		c.fields[itemSlot] = fields
	}
	frame := map[string]arena.SlotId{tmpl.ItemName.Text: itemSlot}
	itemCtx := ctx.withScope(itemScope).withFrame(frame)
	return c.compileExpr(itemCtx, tmpl.Body)
}

// compileListRemove lowers `source |> List/remove { item: predicate }`.
// Like List/map, removal is evaluated per item known at compile time off a
// literal source; once a predicate instantiation emits true the item is
// dropped from the result bus for good (spec.md §4.6 "LIST/remove
// chaining": "each site maintains its own removed-key set").
func (c *Compiler) compileListRemove(ctx Context, v ast.ListRemove) (arena.SlotId, error) {
	sourceSlot, err := c.compileExpr(ctx, v.ListSource)
	if err != nil {
		return arena.NilSlot, err
	}
	resultBus := engine.NewBus(c.loop, c.address(v.Source.Id, ctx.scope, addr.Port{}), ctx.scope)
	if v.Predicate == nil {
		c.loop.Routes().AddRoute(sourceSlot, resultBus, addr.Port{Kind: addr.PortDefault})
		return resultBus, nil
	}

	// expand mirrors compileListMap's hook: one predicate instantiation per
	// source item, bound live so a later Remove fires off that item's own
	// subgraph rather than a one-shot compile-time evaluation.
	expand := func(l *engine.Loop, key message.ItemKey, index int, value message.Payload) {
		predSlot, err := c.instantiateListTemplate(ctx, v.Source.Id, value, v.Predicate)
		if err != nil {
			panic(fmt.Errorf("compiler: list/remove predicate instantiation for an item inserted after compile: %w", err))
		}
		resultKey := l.ListInsert(resultBus, index, value)
		l.Routes().AddRoute(predSlot, resultBus, l.BindItemPredicateSink(resultBus, resultKey))
	}

	for i, key := range c.loop.ListItems(sourceSlot) {
		itemValue, ok := c.loop.ListItemValue(sourceSlot, key)
		if !ok {
			continue
		}
		expand(c.loop, key, i, itemValue)
	}
	c.loop.BindListInsertHook(sourceSlot, expand)
	return resultBus, nil
}
