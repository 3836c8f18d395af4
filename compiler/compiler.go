// Package compiler implements evaluator_v2: it lowers a parsed Boon
// program (package ast) into a compiled graph of engine nodes, returning
// the root slot the CLI materializes (spec.md §4.7).
package compiler

import (
	"fmt"

	"github.com/BoonLang/boon-sub004/ast"
	"github.com/BoonLang/boon-sub004/engine"
	"github.com/BoonLang/boon-sub004/internal/addr"
	"github.com/BoonLang/boon-sub004/internal/arena"
	"github.com/BoonLang/boon-sub004/internal/message"
)

// Compiler holds the state shared across an entire Program compilation:
// the engine loop being populated, the FUNCTION table, and the
// compile-time field map that lets FieldAccess resolve record/tagged
// literals statically instead of through a runtime Router (see DESIGN.md).
type Compiler struct {
	loop      *engine.Loop
	functions functionTable
	fields    map[arena.SlotId]map[string]arena.SlotId
	sourceSeq uint64
}

// New constructs a Compiler that lowers programs into loop.
func New(loop *engine.Loop) *Compiler {
	return &Compiler{
		loop:      loop,
		functions: make(functionTable),
		fields:    make(map[arena.SlotId]map[string]arena.SlotId),
	}
}

// Compile lowers program into loop's arena and returns the root slot,
// chosen as the last top-level binding (spec.md §6 root-binding precedence
// is resolved by the CLI layer, which knows about --root/document/result;
// Compile itself just returns every top-level binding by name plus the
// last one's slot for convenience).
type Program struct {
	Root     arena.SlotId
	Bindings map[string]arena.SlotId
}

// Compile lowers an entire ast.Program: registers every FUNCTION by path,
// then compiles each top-level binding in source order, threading each
// into scope for subsequent bindings to reference (spec.md §4.7, §6).
func (c *Compiler) Compile(prog *ast.Program) (*Program, error) {
	for i := range prog.Functions {
		fn := &prog.Functions[i]
		c.functions[pathKey(fn.Path)] = fn
	}

	ctx := rootContext(addr.RootScope)
	bindings := make(map[string]arena.SlotId, len(prog.Bindings))
	var last arena.SlotId
	frame := make(map[string]arena.SlotId)
	ctx = ctx.withFrame(frame)
	for _, b := range prog.Bindings {
		slot, err := c.compileExpr(ctx, b.Value)
		if err != nil {
			return nil, err
		}
		frame[b.Name.Text] = slot
		bindings[b.Name.Text] = slot
		last = slot
	}
	return &Program{Root: last, Bindings: bindings}, nil
}

// Fields reports the static field-name-to-slot map a record or tagged
// literal registered at slot, if slot was compiled as one (compileRecord,
// compileTagged, or a List/map item instantiation aliased onto one). The
// field association lives only in the compiler's own bookkeeping — the
// runtime message.Payload for an object carries no field names — so
// anything outside this package that needs to render a record/tagged
// value's fields (e.g. the CLI) goes through this accessor.
func (c *Compiler) Fields(slot arena.SlotId) (map[string]arena.SlotId, bool) {
	fields, ok := c.fields[slot]
	return fields, ok
}

// address builds a NodeAddress for a compiled node rooted at an AST
// construct's SourceId.
func (c *Compiler) address(id addr.SourceId, scope addr.ScopeId, port addr.Port) addr.NodeAddress {
	return addr.NodeAddress{Domain: addr.DomainReactive, Source: id, Scope: scope, NodePort: port}
}

// internalSource derives a fresh SourceId for a node the compiler
// synthesizes without a matching AST construct (e.g. a field-access wire),
// keyed near base in sort order but guaranteed not to collide with any
// real parse-order value this compiler assigns during one Compile call.
func (c *Compiler) internalSource(base addr.SourceId) addr.SourceId {
	c.sourceSeq++
	return addr.SourceId{StableId: base.StableId, ParseOrder: base.ParseOrder + 1_000_000 + uint32(c.sourceSeq)}
}

// compileExpr dispatches on the concrete ast.Expression type and lowers it
// into one or more engine nodes, returning the slot whose current value
// is the expression's value.
func (c *Compiler) compileExpr(ctx Context, e ast.Expression) (arena.SlotId, error) {
	switch v := e.(type) {
	case ast.NumberLiteral:
		return c.compileConst(ctx, v.Source.Id, message.Num(v.Value)), nil
	case ast.TextLiteral:
		return c.compileConst(ctx, v.Source.Id, message.Str(v.Value)), nil
	case ast.BooleanLiteral:
		return c.compileConst(ctx, v.Source.Id, message.Bool(v.Value)), nil
	case ast.Variable:
		return c.compileVariable(ctx, v)
	case ast.FieldAccess:
		return c.compileFieldAccess(ctx, v)
	case ast.FunctionCall:
		return c.compileCall(ctx, v)
	case ast.Record:
		return c.compileRecord(ctx, v)
	case ast.Tagged:
		return c.compileTagged(ctx, v)
	case ast.Pipe:
		return c.compilePipe(ctx, v)
	case ast.When:
		return c.compileWhen(ctx, v)
	case ast.While:
		return c.compileWhile(ctx, v)
	case ast.Block:
		return c.compileBlock(ctx, v)
	case ast.List:
		return c.compileList(ctx, v)
	case ast.ListRemove:
		return c.compileListRemove(ctx, v)
	case ast.Latest:
		return c.compileLatest(ctx, v)
	case ast.Hold:
		return c.compileHold(ctx, v)
	case ast.Then:
		return c.compileThen(ctx, v)
	case ast.TextTemplate:
		return c.compileTextTemplate(ctx, v)
	case ast.PassedAlias:
		return c.compilePassedAlias(ctx, v)
	default:
		return arena.NilSlot, &TypeMismatch{Source: e.NodeSource(), Detail: fmt.Sprintf("unsupported expression %T", e)}
	}
}

// compileConst lowers a literal into a Producer.
func (c *Compiler) compileConst(ctx Context, id addr.SourceId, value message.Payload) arena.SlotId {
	return engine.NewProducer(c.loop, c.address(id, ctx.scope, addr.Port{}), ctx.scope, value)
}

// compileVariable resolves name through locals, then parameters, then
// module-level lookups (spec.md §4.7) — all three of which are folded
// into the single parent-chained scopeFrame (see context.go).
func (c *Compiler) compileVariable(ctx Context, v ast.Variable) (arena.SlotId, error) {
	slot, ok := ctx.lookup(v.Name.Text)
	if !ok {
		return arena.NilSlot, &UnknownVariable{Source: v.Source.Id, Name: v.Name.Text}
	}
	return slot, nil
}

// compilePassedAlias lowers PASSED / PASSED.a.b: the current PASS slot,
// optionally chained through ExtraParts as field-access wires (spec.md
// §4.7 "PASS/PASSED").
func (c *Compiler) compilePassedAlias(ctx Context, v ast.PassedAlias) (arena.SlotId, error) {
	slot, ok := ctx.currentPass()
	if !ok {
		return arena.NilSlot, &PassedNotAvailable{Source: v.Source.Id}
	}
	for _, part := range v.ExtraParts {
		next, err := c.fieldAccessSlot(ctx, v.Source.Id, slot, part.Text)
		if err != nil {
			return arena.NilSlot, err
		}
		slot = next
	}
	return slot, nil
}
