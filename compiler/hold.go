package compiler

import (
	"github.com/BoonLang/boon-sub004/ast"
	"github.com/BoonLang/boon-sub004/engine"
	"github.com/BoonLang/boon-sub004/internal/addr"
	"github.com/BoonLang/boon-sub004/internal/arena"
	"github.com/BoonLang/boon-sub004/internal/message"
)

// constantPayload reports the literal Payload a compile-time-constant
// expression evaluates to, for HOLD's Init (engine.NewRegister takes a
// concrete seed Payload, not a wired slot).
func constantPayload(e ast.Expression) (message.Payload, bool) {
	switch v := e.(type) {
	case ast.NumberLiteral:
		return message.Num(v.Value), true
	case ast.TextLiteral:
		return message.Str(v.Value), true
	case ast.BooleanLiteral:
		return message.Bool(v.Value), true
	default:
		return message.Payload{}, false
	}
}

// compileHold lowers `init |> HOLD name { body }` into the two-slot
// Register/Wire split described in the engine's Design Notes: a Register
// holds the committed value; a Wire forwards it both to Body (bound as
// Name) and to any downstream consumer of the Hold expression itself,
// breaking the cycle that Body's own output closes back into the
// Register's default input (spec.md §4.6 Register row).
func (c *Compiler) compileHold(ctx Context, v ast.Hold) (arena.SlotId, error) {
	seed, isConst := constantPayload(v.Init)
	if !isConst {
		seed = message.Unit()
	}
	registerSlot := engine.NewRegister(c.loop, c.address(v.Source.Id, ctx.scope, addr.Port{}), ctx.scope, seed)

	if !isConst {
		initSlot, err := c.compileExpr(ctx, v.Init)
		if err != nil {
			return arena.NilSlot, err
		}
		c.loop.Routes().AddRoute(initSlot, registerSlot, addr.Port{Kind: addr.PortDefault})
	}

	wireSlot := engine.NewWire(c.loop, c.address(c.internalSource(v.Source.Id), ctx.scope, addr.Port{}), ctx.scope, registerSlot)

	frame := map[string]arena.SlotId{v.Name.Text: wireSlot}
	bodyCtx := ctx.withFrame(frame)
	bodySlot, err := c.compileExpr(bodyCtx, v.Body)
	if err != nil {
		return arena.NilSlot, err
	}
	c.loop.Routes().AddRoute(bodySlot, registerSlot, addr.Port{Kind: addr.PortDefault})

	return wireSlot, nil
}
