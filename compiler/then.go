package compiler

import (
	"github.com/BoonLang/boon-sub004/ast"
	"github.com/BoonLang/boon-sub004/engine"
	"github.com/BoonLang/boon-sub004/internal/addr"
	"github.com/BoonLang/boon-sub004/internal/arena"
)

// compileThen lowers `trigger |> THEN { body }`. Body compiles under a
// guarded context: a THEN gate is itself a non-recursive arm for the
// purposes of the termination rule, since it only forwards once per
// trigger firing rather than looping (spec.md §4.6 Transformer row).
func (c *Compiler) compileThen(ctx Context, v ast.Then) (arena.SlotId, error) {
	triggerSlot, err := c.compileExpr(ctx, v.Trigger)
	if err != nil {
		return arena.NilSlot, err
	}
	bodySlot, err := c.compileExpr(ctx.withGuard(), v.Body)
	if err != nil {
		return arena.NilSlot, err
	}
	slot := engine.NewThen(c.loop, c.address(v.Source.Id, ctx.scope, addr.Port{}), ctx.scope, triggerSlot, bodySlot)
	return slot, nil
}
