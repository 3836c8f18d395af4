package compiler

import (
	"fmt"

	"github.com/BoonLang/boon-sub004/ast"
	"github.com/BoonLang/boon-sub004/engine"
	"github.com/BoonLang/boon-sub004/internal/addr"
	"github.com/BoonLang/boon-sub004/internal/arena"
	"github.com/BoonLang/boon-sub004/internal/message"
)

// compileRecordFields compiles each field's value expression in source
// order, building the name→slot map stored under the record/tagged
// literal's own producer slot (or slots, for Tagged) in Compiler.fields.
func (c *Compiler) compileRecordFields(ctx Context, fields []ast.RecordField) (map[string]arena.SlotId, error) {
	out := make(map[string]arena.SlotId, len(fields))
	for _, f := range fields {
		slot, err := c.compileExpr(ctx, f.Value)
		if err != nil {
			return nil, err
		}
		out[f.Name.Text] = slot
	}
	return out, nil
}

// compileRecord lowers a Record literal into a self-referential Producer
// whose ObjectHandle identifies the record by its own slot, with field
// slots tracked out-of-band in Compiler.fields rather than through any
// runtime Router (see DESIGN.md's FieldAccess entry).
func (c *Compiler) compileRecord(ctx Context, v ast.Record) (arena.SlotId, error) {
	fields, err := c.compileRecordFields(ctx, v.Fields)
	if err != nil {
		return arena.NilSlot, err
	}
	slot := engine.NewProducerSelfReferential(c.loop, c.address(v.Source.Id, ctx.scope, addr.Port{}), ctx.scope, func(self arena.SlotId) message.Payload {
		return message.Payload{Kind: message.KindObject, Object: message.ObjectHandle{Slot: self}}
	})
	c.fields[slot] = fields
	return slot, nil
}

// compileTagged lowers a Tagged literal. A bare tag with no payload fields
// is a plain Tag scalar; otherwise the payload fields compile exactly as a
// Record literal would, and the tag wraps a reference to that record's
// slot (so FieldAccess and WHEN destructuring resolve through the same
// static field map either way).
func (c *Compiler) compileTagged(ctx Context, v ast.Tagged) (arena.SlotId, error) {
	tagId := c.loop.Arena().InternTag(v.Tag.Text)
	if len(v.Fields) == 0 {
		slot := engine.NewProducer(c.loop, c.address(v.Source.Id, ctx.scope, addr.Port{}), ctx.scope, message.Payload{Kind: message.KindTag, Tag: tagId})
		return slot, nil
	}

	fields, err := c.compileRecordFields(ctx, v.Fields)
	if err != nil {
		return arena.NilSlot, err
	}
	recordSlot := engine.NewProducerSelfReferential(c.loop, c.address(c.internalSource(v.Source.Id), ctx.scope, addr.Port{}), ctx.scope, func(self arena.SlotId) message.Payload {
		return message.Payload{Kind: message.KindObject, Object: message.ObjectHandle{Slot: self}}
	})
	c.fields[recordSlot] = fields

	taggedSlot := engine.NewProducer(c.loop, c.address(v.Source.Id, ctx.scope, addr.Port{}), ctx.scope, message.Payload{
		Kind: message.KindTaggedObject,
		TaggedObject: message.TaggedObject{
			Tag:    tagId,
			Fields: message.ObjectHandle{Slot: recordSlot},
		},
	})
	c.fields[taggedSlot] = fields
	return taggedSlot, nil
}

// compileFieldAccess resolves Target's field statically against
// Compiler.fields when Target is a literal record/tagged object compiled
// in this same Compile call, falling back to the dynamic Router+Wire path
// (spec.md §4.7: "PASSED.a.b compiles to a chain of field-access wires")
// for anything else — a variable bound to a host-originated object, a
// HOLD register, or any other runtime-resolved reference.
func (c *Compiler) compileFieldAccess(ctx Context, v ast.FieldAccess) (arena.SlotId, error) {
	targetSlot, err := c.compileExpr(ctx, v.Target)
	if err != nil {
		return arena.NilSlot, err
	}
	slot, err := c.resolveField(ctx, v.Source.Id, targetSlot, v.Field.Text)
	if err != nil {
		return arena.NilSlot, err
	}
	return slot, nil
}

// resolveField looks up a static field map first, falling back to the
// dynamic fan-out path.
func (c *Compiler) resolveField(ctx Context, id addr.SourceId, targetSlot arena.SlotId, field string) (arena.SlotId, error) {
	if fields, ok := c.fields[targetSlot]; ok {
		slot, ok := fields[field]
		if !ok {
			return arena.NilSlot, &TypeMismatch{Source: id, Detail: fmt.Sprintf("no field %q on this record", field)}
		}
		return slot, nil
	}
	return c.fieldAccessSlot(ctx, id, targetSlot, field)
}

// fieldAccessSlot builds a Router bound to targetSlot's default output,
// distributing field's ObjectDelta extractions to a holder Wire. The
// holder is allocated with no routing-table source (Router delivers to it
// directly via Loop.Enqueue from within routerTransition), matching
// Router's documented "not directly dirtied... distributes via routed
// field extractions" behavior.
func (c *Compiler) fieldAccessSlot(ctx Context, id addr.SourceId, targetSlot arena.SlotId, field string) (arena.SlotId, error) {
	fieldId := c.loop.Arena().InternField(field)
	router := engine.NewRouter(c.loop, c.address(c.internalSource(id), ctx.scope, addr.Port{}), ctx.scope)
	c.loop.Routes().AddRoute(targetSlot, router, addr.Port{Kind: addr.PortDefault})
	holder := engine.NewWire(c.loop, c.address(c.internalSource(id), ctx.scope, addr.Port{}), ctx.scope, arena.NilSlot)
	c.loop.BindField(router, fieldId, holder)
	return holder, nil
}

// compileBlock compiles each binding in source order into a fresh child
// frame, then compiles Result against that frame (spec.md §4.7 "BLOCK
// compilation": "no new ScopeId" — only the scopeFrame chain grows).
func (c *Compiler) compileBlock(ctx Context, v ast.Block) (arena.SlotId, error) {
	frame := make(map[string]arena.SlotId, len(v.Bindings))
	bctx := ctx.withFrame(frame)
	for _, b := range v.Bindings {
		slot, err := c.compileExpr(bctx, b.Value)
		if err != nil {
			return arena.NilSlot, err
		}
		frame[b.Name.Text] = slot
	}
	return c.compileExpr(bctx, v.Result)
}

// compilePipe threads Left's compiled slot as the active PASS value while
// compiling Right (spec.md §4.7 "PASS/PASSED"). Constructs that already
// carry an explicit piped subject (THEN, HOLD, WHEN, WHILE, List/map,
// List/remove) never desugar through Pipe — the parser targets those AST
// fields directly — so Pipe's real job is narrower: piping into a bare
// FunctionCall whose body references PASSED.
func (c *Compiler) compilePipe(ctx Context, v ast.Pipe) (arena.SlotId, error) {
	leftSlot, err := c.compileExpr(ctx, v.Left)
	if err != nil {
		return arena.NilSlot, err
	}
	return c.compileExpr(ctx.withPass(leftSlot), v.Right)
}
