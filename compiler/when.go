package compiler

import (
	"github.com/BoonLang/boon-sub004/ast"
	"github.com/BoonLang/boon-sub004/engine"
	"github.com/BoonLang/boon-sub004/internal/addr"
	"github.com/BoonLang/boon-sub004/internal/arena"
)

// compileWhen lowers a WHEN expression into a PatternMux. Every arm's
// destructured field names resolve to compile-time-known slots (bound via
// bindPattern against the already-compiled Subject slot) rather than any
// runtime binding node, so WhenArm.BindSlot is left unset here — the
// engine's own defensive re-forward for BindingPattern arms never fires,
// which is harmless (spec.md §4.6 PatternMux row).
func (c *Compiler) compileWhen(ctx Context, v ast.When) (arena.SlotId, error) {
	subjectSlot, err := c.compileExpr(ctx, v.Subject)
	if err != nil {
		return arena.NilSlot, err
	}

	arms := make([]engine.WhenArm, len(v.Arms))
	for i, a := range v.Arms {
		pattern := c.lowerPattern(a.Pattern)

		frame := make(map[string]arena.SlotId)
		if err := c.bindPattern(ctx, subjectSlot, v.Source.Id, a.Pattern, frame); err != nil {
			return arena.NilSlot, err
		}
		armCtx := ctx.withFrame(frame).withGuard()

		bodySlot, err := c.compileExpr(armCtx, a.Body)
		if err != nil {
			return arena.NilSlot, err
		}
		arms[i] = engine.WhenArm{Pattern: pattern, BindSlot: arena.NilSlot, BodySlot: bodySlot}
	}

	return engine.NewPatternMux(c.loop, c.address(v.Source.Id, ctx.scope, addr.Port{}), ctx.scope, arms), nil
}
