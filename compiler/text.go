package compiler

import (
	"github.com/BoonLang/boon-sub004/ast"
	"github.com/BoonLang/boon-sub004/engine"
	"github.com/BoonLang/boon-sub004/internal/addr"
	"github.com/BoonLang/boon-sub004/internal/arena"
)

// compileTextTemplate lowers a TEXT { ... } expression into a
// TextTemplate node: literal fragments pass through unchanged, each
// interpolation compiles its Value expression and is assigned the next
// PortInput index (spec.md §4.7 "TEXT template compilation").
func (c *Compiler) compileTextTemplate(ctx Context, v ast.TextTemplate) (arena.SlotId, error) {
	parts := make([]engine.TextPart, len(v.Parts))
	var deps []arena.SlotId
	for i, p := range v.Parts {
		if !p.IsInterpolation {
			parts[i] = engine.TextPart{Literal: p.Text}
			continue
		}
		slot, err := c.compileExpr(ctx, p.Value)
		if err != nil {
			return arena.NilSlot, err
		}
		parts[i] = engine.TextPart{IsDep: true, DepIndex: len(deps)}
		deps = append(deps, slot)
	}
	slot := engine.NewTextTemplate(c.loop, c.address(v.Source.Id, ctx.scope, addr.Port{}), ctx.scope, parts, deps)
	return slot, nil
}
