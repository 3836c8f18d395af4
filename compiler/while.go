package compiler

import (
	"github.com/BoonLang/boon-sub004/ast"
	"github.com/BoonLang/boon-sub004/engine"
	"github.com/BoonLang/boon-sub004/internal/addr"
	"github.com/BoonLang/boon-sub004/internal/arena"
	"github.com/BoonLang/boon-sub004/internal/message"
)

// sourceKey combines a SourceId into a single uint64 for use as a
// DeriveScope instantiation key.
func sourceKey(id addr.SourceId) uint64 {
	return id.StableId ^ uint64(id.ParseOrder)<<32
}

// objectSlotOf extracts the arena slot backing a runtime object/tagged
// value's fields, or NilSlot if value carries no such handle.
func objectSlotOf(value message.Payload) arena.SlotId {
	switch value.Kind {
	case message.KindObject:
		return value.Object.Slot
	case message.KindTaggedObject:
		return value.TaggedObject.Fields.Slot
	default:
		return arena.NilSlot
	}
}

// bindPatternFromValue is WHILE's runtime counterpart to bindPattern: a
// WHILE arm's pattern is matched against an already-materialized payload
// (not a live compile-time slot), so a top-level BindingPattern snapshots
// value into a fresh Producer rather than aliasing an existing slot. This
// snapshot does not track later updates to the mux's subject while the
// same arm stays active — the engine's SwitchedWire only rebuilds a body
// when the active arm itself changes (see DESIGN.md's WHILE entry).
func (c *Compiler) bindPatternFromValue(scope addr.ScopeId, id addr.SourceId, value message.Payload, p ast.Pattern, frame map[string]arena.SlotId) error {
	switch pat := p.(type) {
	case ast.WildcardPattern, ast.NumberPattern:
		return nil
	case ast.BindingPattern:
		frame[pat.Name.Text] = engine.NewProducer(c.loop, c.address(c.internalSource(id), scope, addr.Port{}), scope, value)
		return nil
	case ast.TagPattern:
		return c.bindFieldPatternsFromValue(scope, id, objectSlotOf(value), pat.Fields, frame)
	case ast.RecordPattern:
		return c.bindFieldPatternsFromValue(scope, id, objectSlotOf(value), pat.Fields, frame)
	default:
		return nil
	}
}

func (c *Compiler) bindFieldPatternsFromValue(scope addr.ScopeId, id addr.SourceId, handleSlot arena.SlotId, fields []ast.FieldPattern, frame map[string]arena.SlotId) error {
	ctx := rootContext(scope)
	for _, fp := range fields {
		fieldSlot, err := c.resolveField(ctx, id, handleSlot, fp.Name.Text)
		if err != nil {
			return err
		}
		if err := c.bindPattern(ctx, fieldSlot, id, fp.Pattern, frame); err != nil {
			return err
		}
	}
	return nil
}

// compileWhile lowers a WHILE expression into a SwitchedWire. Each arm's
// body is compiled lazily, on first activation, via an ArmBuilder closure
// capturing this Compiler and the arm's AST (spec.md §4.6 SwitchedWire
// row: "lazily constructs new arm's scope").
func (c *Compiler) compileWhile(ctx Context, v ast.While) (arena.SlotId, error) {
	subjectSlot, err := c.compileExpr(ctx, v.Subject)
	if err != nil {
		return arena.NilSlot, err
	}

	scopeBase := addr.DeriveScope(ctx.scope, sourceKey(v.Source.Id))
	armSpecs := make([]engine.WhileArmSpec, len(v.Arms))
	for i, a := range v.Arms {
		arm := a
		armSpecs[i] = engine.WhileArmSpec{
			Pattern: c.lowerPattern(arm.Pattern),
			Build: func(l *engine.Loop, scope addr.ScopeId, subject message.Payload) arena.SlotId {
				frame := make(map[string]arena.SlotId)
				if err := c.bindPatternFromValue(scope, v.Source.Id, subject, arm.Pattern, frame); err != nil {
					return arena.NilSlot
				}
				bodyCtx := ctx.withScope(scope).withFrame(frame).withGuard()
				bodySlot, err := c.compileExpr(bodyCtx, arm.Body)
				if err != nil {
					return arena.NilSlot
				}
				return bodySlot
			},
		}
	}

	whileSlot := engine.NewSwitchedWire(c.loop, c.address(v.Source.Id, ctx.scope, addr.Port{}), ctx.scope, scopeBase, armSpecs)
	c.loop.Routes().AddRoute(subjectSlot, whileSlot, addr.Port{Kind: addr.PortDefault})
	return whileSlot, nil
}
