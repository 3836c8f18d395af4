package compiler

import (
	"github.com/BoonLang/boon-sub004/ast"
	"github.com/BoonLang/boon-sub004/engine"
	"github.com/BoonLang/boon-sub004/internal/addr"
	"github.com/BoonLang/boon-sub004/internal/arena"
)

// compileCall lowers a FunctionCall. Builtins (arithmetic, comparison,
// boolean operators) lower to a Combiner (engine.NewLatestDerived);
// user-defined FUNCTIONs inline their body at the call site under a
// derived ScopeId, guarded against non-terminating recursion.
//
// Argument.IsReferenced marks the parser's shorthand `f(x)` call syntax
// (meaning `f(x: x)`); since the parser always populates Argument.Value
// regardless of which syntax was used, the compiler compiles Value
// uniformly and never branches on IsReferenced.
func (c *Compiler) compileCall(ctx Context, v ast.FunctionCall) (arena.SlotId, error) {
	path := pathKey(v.Path)

	if b, ok := builtins[path]; ok {
		if len(v.Arguments) != b.arity {
			return arena.NilSlot, &WidthMismatch{Source: v.Source.Id, Expected: b.arity, Actual: len(v.Arguments)}
		}
		argSlots := make([]arena.SlotId, len(v.Arguments))
		for i, a := range v.Arguments {
			slot, err := c.compileExpr(ctx, a.Value)
			if err != nil {
				return arena.NilSlot, err
			}
			argSlots[i] = slot
		}
		combinerSlot := engine.NewLatestDerived(c.loop, c.address(v.Source.Id, ctx.scope, addr.Port{}), ctx.scope, b.arity, engine.Combine(b.combine))
		for i, argSlot := range argSlots {
			c.loop.Routes().AddRoute(argSlot, combinerSlot, addr.Port{Kind: addr.PortInput, Index: uint32(i)})
		}
		return combinerSlot, nil
	}

	fn, ok := c.functions[path]
	if !ok {
		return arena.NilSlot, &UnknownFunction{Source: v.Source.Id, Path: path}
	}

	callCtx, ok := ctx.withCall(path)
	if !ok {
		return arena.NilSlot, &NonTerminatingRecursion{Source: v.Source.Id, Path: path}
	}

	frame := make(map[string]arena.SlotId, len(fn.Params))
	for _, a := range v.Arguments {
		slot, err := c.compileExpr(ctx, a.Value)
		if err != nil {
			return arena.NilSlot, err
		}
		frame[a.Name.Text] = slot
	}
	for _, p := range fn.Params {
		if _, ok := frame[p.Text]; !ok {
			return arena.NilSlot, &TypeMismatch{Source: v.Source.Id, Detail: "missing argument " + p.Text}
		}
	}

	callScope := addr.DeriveScope(ctx.scope, sourceKey(v.Source.Id))
	bodyCtx := callCtx.withScope(callScope).withFrame(frame)
	return c.compileExpr(bodyCtx, fn.Body)
}
